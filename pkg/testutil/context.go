package testutil

import (
	"net/http"

	"mutafriches/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context.
// This simulates what the requestmeta middleware does for incoming requests.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	return req.WithContext(ctx)
}

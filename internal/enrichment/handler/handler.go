package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mutafriches/internal/enrichment/audit"
	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/enrichment/pipeline"
	"mutafriches/internal/parcel"
	dErrors "mutafriches/pkg/domain-errors"
	"mutafriches/pkg/platform/httputil"
	"mutafriches/pkg/requestcontext"
)

// Service defines the interface for enrichment operations.
type Service interface {
	Enrich(ctx context.Context, identifier string) (*pipeline.Result, error)
	Logs(ctx context.Context, identifier string, limit int) ([]audit.Log, error)
}

// Handler handles enrichment endpoints.
type Handler struct {
	logger *slog.Logger
	svc    Service
}

// New creates a new enrichment Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, svc: svc}
}

// Register registers the enrichment routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/v1/enrichments", h.handleEnrich)
	r.Get("/api/v1/enrichments/{identifier}/logs", h.handleLogs)
}

type enrichRequest struct {
	Identifier string `json:"identifier"`
}

// EnrichResponse is the body of a successful enrichment.
type EnrichResponse struct {
	Parcel     *parcel.Parcel    `json:"parcel"`
	Status     models.Status     `json:"status"`
	Provenance models.Provenance `json:"provenance"`
	DurationMs int64             `json:"durationMs"`
}

func (h *Handler) handleEnrich(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := httputil.DecodeJSON[enrichRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Identifier == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "identifier is required"))
		return
	}

	res, err := h.svc.Enrich(ctx, req.Identifier)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeMandatoryDataMissing) {
			h.logger.WarnContext(ctx, "enrichment missing mandatory data",
				"request_id", requestID,
				"identifier", req.Identifier,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "enrichment failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "enrichment failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, EnrichResponse{
		Parcel:     res.Parcel,
		Status:     res.Status,
		Provenance: res.Provenance,
		DurationMs: res.Duration.Milliseconds(),
	})
}

// LogsResponse lists past enrichment runs of one parcel, newest first.
type LogsResponse struct {
	Identifier string      `json:"identifier"`
	Logs       []audit.Log `json:"logs"`
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identifier := chi.URLParam(r, "identifier")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	logs, err := h.svc.Logs(ctx, identifier, limit)
	if err != nil {
		if code := dErrors.CodeOf(err); code != dErrors.CodeInternal {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to list enrichment logs",
			"request_id", requestcontext.RequestID(ctx),
			"identifier", identifier,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list enrichment logs"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LogsResponse{Identifier: identifier, Logs: logs})
}

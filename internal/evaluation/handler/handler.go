package handler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mutafriches/internal/evaluation"
	"mutafriches/internal/evaluation/export"
	"mutafriches/internal/evaluation/models"
	"mutafriches/internal/parcel"
	dErrors "mutafriches/pkg/domain-errors"
	"mutafriches/pkg/platform/httputil"
	"mutafriches/pkg/requestcontext"
)

// Service defines the interface for evaluation operations.
type Service interface {
	Evaluate(ctx context.Context, p parcel.Parcel, answers parcel.UserAnswers) (*models.Evaluation, error)
	EvaluateIdentifier(ctx context.Context, identifier string, answers parcel.UserAnswers) (*evaluation.IdentifierEvaluation, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Record, error)
}

// Handler handles evaluation endpoints.
type Handler struct {
	logger *slog.Logger
	svc    Service
}

// New creates a new evaluation Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, svc: svc}
}

// Register registers the evaluation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/evaluations", func(r chi.Router) {
		r.Post("/", h.handleEvaluate)
		r.Post("/by-identifier", h.handleEvaluateIdentifier)
		r.Get("/{id}", h.handleGet)
		r.Get("/{id}/export", h.handleExport)
	})
}

type evaluateRequest struct {
	Parcel  *parcel.Parcel     `json:"parcel"`
	Answers parcel.UserAnswers `json:"answers"`
}

type evaluateIdentifierRequest struct {
	Identifier string             `json:"identifier"`
	Answers    parcel.UserAnswers `json:"answers"`
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[evaluateRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Parcel == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "parcel is required"))
		return
	}

	res, err := h.svc.Evaluate(r.Context(), *req.Parcel, req.Answers)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "evaluation failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleEvaluateIdentifier(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[evaluateIdentifierRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Identifier == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "identifier is required"))
		return
	}

	res, err := h.svc.EvaluateIdentifier(r.Context(), req.Identifier, req.Answers)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "evaluation failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, rec); err != nil {
		h.writeServiceError(r.Context(), w, err, "export failed")
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(rec)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) loadRecord(w http.ResponseWriter, r *http.Request) (*models.Record, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid evaluation id"))
		return nil, false
	}
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to load evaluation")
		return nil, false
	}
	return rec, true
}

// writeServiceError passes coded errors through and hides everything else
// behind an internal error.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	code := dErrors.CodeOf(err)
	if code != dErrors.CodeInternal {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"code", code,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
}

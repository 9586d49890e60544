package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/papermatch/internal/adapters/auth"
	"github.com/okian/papermatch/internal/domain/model"
	"github.com/okian/papermatch/pkg/logger"
)

// FeedbackDependencies defines the interface for feedback operations.
type FeedbackDependencies interface {
	ApplyFeedback(ctx context.Context, userID, targetID string, kind model.Kind, text string) (model.FeedbackResult, error)
	FeedbackSummary(ctx context.Context, userID, targetID string, page model.Page) (model.Summary, error)
}

// FeedbackHandler handles feedback requests.
type FeedbackHandler struct {
	deps FeedbackDependencies
	log  logger.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(deps FeedbackDependencies, log logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{deps: deps, log: log}
}

// feedbackRequest mirrors the OpenAPI schema for POST /api/v2/feedback/{targetId}.
type feedbackRequest struct {
	Kind string `json:"kind" validate:"required,oneof=like dislike comment"`
	Text string `json:"text,omitempty"`
}

// HandlePost handles POST /api/v2/feedback/{targetId}.
func (h *FeedbackHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_feedback"

	targetID := chi.URLParam(r, "targetId")
	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", model.WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", model.Wrap(op, err))
		return
	}
	kind, err := model.ParseKind(req.Kind)
	if err != nil {
		writeDomainError(r.Context(), w, h.log, op, err)
		return
	}

	res, err := h.deps.ApplyFeedback(r.Context(), auth.UserFrom(r.Context()), targetID, kind, req.Text)
	if err != nil {
		writeDomainError(r.Context(), w, h.log, op, model.Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleGet handles GET /api/v2/feedback/{targetId}?page=P&limit=N.
func (h *FeedbackHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_feedback"

	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", model.WrapKind(op, ErrBadRequest, err))
		return
	}

	summary, err := h.deps.FeedbackSummary(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "targetId"), page)
	if err != nil {
		writeDomainError(r.Context(), w, h.log, op, model.Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// parsePage reads page and limit. Missing values are left zero for the
// service to default.
func parsePage(r *http.Request) (model.Page, error) {
	var p model.Page
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, errors.New("page must be a positive integer")
		}
		p.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, errors.New("limit must be a positive integer")
		}
		p.Limit = n
	}
	return p, nil
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/papermatch/internal/adapters/auth"
	"github.com/okian/papermatch/internal/domain/model"
	"github.com/okian/papermatch/pkg/logger"
)

// MatchesDependencies defines the interface for recording and reading matches.
type MatchesDependencies interface {
	RecordMatch(ctx context.Context, m model.Match) (model.Match, error)
	Match(ctx context.Context, id string) (model.RecordedMatch, error)
}

// MatchesHandler handles match submissions.
type MatchesHandler struct {
	deps MatchesDependencies
	log  logger.Logger
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchesDependencies, log logger.Logger) *MatchesHandler {
	return &MatchesHandler{deps: deps, log: log}
}

// matchRequest mirrors the OpenAPI schema for POST /api/v2/matches. An
// empty winner records a draw.
type matchRequest struct {
	ID      string `json:"id,omitempty" validate:"omitempty,max=128"`
	PaperA  string `json:"paperA" validate:"required,max=128"`
	PaperB  string `json:"paperB" validate:"required,max=128,nefield=PaperA"`
	Winner  string `json:"winner,omitempty"`
	RatingA int    `json:"ratingA" validate:"gte=0"`
	RatingB int    `json:"ratingB" validate:"gte=0"`
	Date    string `json:"date" validate:"required"`
	Venue   string `json:"venue,omitempty" validate:"max=256"`
}

func (m matchRequest) toMatch() (model.Match, error) {
	if m.Winner != "" && m.Winner != m.PaperA && m.Winner != m.PaperB {
		return model.Match{}, fmt.Errorf("%w: winner must be paperA, paperB or empty", ErrBadRequest)
	}
	date, err := parseDate(m.Date)
	if err != nil {
		return model.Match{}, err
	}
	return model.Match{
		ID:      m.ID,
		PaperA:  m.PaperA,
		PaperB:  m.PaperB,
		Winner:  m.Winner,
		RatingA: m.RatingA,
		RatingB: m.RatingB,
		Date:    date,
		Venue:   m.Venue,
	}, nil
}

// parseDate accepts RFC3339 timestamps and plain dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date; must be RFC3339 or YYYY-MM-DD", ErrBadRequest)
	}
	return t, nil
}

// HandlePost handles POST /api/v2/matches. Recording requires an identity.
func (h *MatchesHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_match"

	if auth.UserFrom(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", model.NewKind(op, ErrUnauthorized))
		return
	}

	var req matchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", model.WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", model.Wrap(op, err))
		return
	}
	m, err := req.toMatch()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", model.Wrap(op, err))
		return
	}

	recorded, err := h.deps.RecordMatch(r.Context(), m)
	if err != nil {
		writeDomainError(r.Context(), w, h.log, op, model.Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, recorded)
}

// HandleGet handles GET /api/v2/matches/{matchId}.
func (h *MatchesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_match"
	m, err := h.deps.Match(r.Context(), chi.URLParam(r, "matchId"))
	if err != nil {
		writeDomainError(r.Context(), w, h.log, op, model.Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/papermatch/internal/domain/model"
	"github.com/okian/papermatch/pkg/logger"
)

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, scope model.Scope, limit int) ([]model.LeaderboardEntry, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps         LeaderboardDependencies
	defaultLimit int
	maxLimit     int
	log          logger.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, defaultLimit, maxLimit int, log logger.Logger) *LeaderboardHandler {
	if defaultLimit < 1 || defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &LeaderboardHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		log:          log,
	}
}

// HandleGetLeaderboard handles GET /api/v2/leaderboard?category=C&subcategory=S&year=Y&limit=N requests
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	q := r.URL.Query()

	category := q.Get("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "bad_request", model.WrapKind(op, ErrBadRequest, errMissingCategory))
		return
	}

	year := 0
	if yearStr := q.Get("year"); yearStr != "" {
		var err error
		year, err = strconv.Atoi(yearStr)
		if err != nil || year < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", model.WrapKind(op, ErrBadRequest, errInvalidYear))
			return
		}
	}

	n := h.defaultLimit
	if limitStr := q.Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", model.NewKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", model.NewKind(op, ErrBadRequest))
		return
	}

	scope := model.Scope{Category: category, Subcategory: q.Get("subcategory"), Year: year}
	entries, err := h.deps.Leaderboard(r.Context(), scope, n)
	if err != nil {
		writeDomainError(r.Context(), w, h.log, op, model.Wrap(op, err))
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/papermatch/internal/domain/model"
	"github.com/okian/papermatch/pkg/logger"
)

// FeedbackService applies and summarizes per-user feedback on a target.
type FeedbackService interface {
	ApplyFeedback(ctx context.Context, userID, targetID string, kind model.Kind, text string) (model.FeedbackResult, error)
	FeedbackSummary(ctx context.Context, userID, targetID string, page model.Page) (model.Summary, error)
}

// PaperService exposes a paper's derived stats and raw result history.
type PaperService interface {
	PaperStats(ctx context.Context, paperID string) (model.PaperStats, error)
	PaperResults(ctx context.Context, paperID string) ([]model.MatchResult, error)
}

// MatchService records pairwise comparisons and reads them back.
type MatchService interface {
	RecordMatch(ctx context.Context, m model.Match) (model.Match, error)
	Match(ctx context.Context, id string) (model.RecordedMatch, error)
}

// LeaderboardService ranks papers within a category.
type LeaderboardService interface {
	Leaderboard(ctx context.Context, scope model.Scope, limit int) ([]model.LeaderboardEntry, error)
}

// UserService removes a user and everything they authored.
type UserService interface {
	DeleteUser(ctx context.Context, userID string) error
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	FeedbackService
	PaperService
	MatchService
	LeaderboardService
	UserService
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	feedbackHandler    *FeedbackHandler
	papersHandler      *PapersHandler
	matchesHandler     *MatchesHandler
	leaderboardHandler *LeaderboardHandler
	usersHandler       *UsersHandler

	verifier TokenVerifier
	limiter  *identityLimiter
	log      logger.Logger

	defaultLimit int
	maxLimit     int
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		log:          logger.Nop(),
		defaultLimit: defaultLeaderboardLimit,
		maxLimit:     maxLeaderboardLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.feedbackHandler = NewFeedbackHandler(deps, s.log)
	s.papersHandler = NewPapersHandler(deps, s.log)
	s.matchesHandler = NewMatchesHandler(deps, s.log)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.defaultLimit, s.maxLimit, s.log)
	s.usersHandler = NewUsersHandler(deps, s.log)
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api/v2", func(r chi.Router) {
		r.Use(Authenticate(s.verifier))

		r.With(rateLimit(s.limiter, "feedback")).
			Post("/feedback/{targetId}", MetricsMiddleware(s.feedbackHandler.HandlePost, "feedback_post"))
		r.Get("/feedback/{targetId}", MetricsMiddleware(s.feedbackHandler.HandleGet, "feedback_get"))

		r.Get("/papers/{paperId}/stats", MetricsMiddleware(s.papersHandler.HandleStats, "paper_stats"))
		r.Get("/papers/{paperId}/results", MetricsMiddleware(s.papersHandler.HandleResults, "paper_results"))

		r.With(rateLimit(s.limiter, "matches")).
			Post("/matches", MetricsMiddleware(s.matchesHandler.HandlePost, "matches"))
		r.Get("/matches/{matchId}", MetricsMiddleware(s.matchesHandler.HandleGet, "match_get"))

		r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))

		r.Delete("/users/me", MetricsMiddleware(s.usersHandler.HandleDeleteMe, "users_delete"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps err onto the status taxonomy. Internal errors are
// logged and replaced with a generic message.
func writeDomainError(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}

// statusFor returns the HTTP status and error code for err.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthorized), errors.Is(err, model.ErrAuth):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, model.ErrAggregation):
		return http.StatusUnprocessableEntity, "aggregation_error"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeJSON reads a single JSON object from r's body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

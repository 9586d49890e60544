package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/papermatch/internal/domain/model"
	"github.com/okian/papermatch/pkg/logger"
)

// PapersDependencies defines the interface for per-paper reads.
type PapersDependencies interface {
	PaperStats(ctx context.Context, paperID string) (model.PaperStats, error)
	PaperResults(ctx context.Context, paperID string) ([]model.MatchResult, error)
}

// PapersHandler handles paper stats and result history requests.
type PapersHandler struct {
	deps PapersDependencies
	log  logger.Logger
}

// NewPapersHandler creates a new papers handler.
func NewPapersHandler(deps PapersDependencies, log logger.Logger) *PapersHandler {
	return &PapersHandler{deps: deps, log: log}
}

// HandleStats handles GET /api/v2/papers/{paperId}/stats.
func (h *PapersHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_paper_stats"
	stats, err := h.deps.PaperStats(r.Context(), chi.URLParam(r, "paperId"))
	if err != nil {
		writeDomainError(r.Context(), w, h.log, op, model.Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleResults handles GET /api/v2/papers/{paperId}/results.
func (h *PapersHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_paper_results"
	results, err := h.deps.PaperResults(r.Context(), chi.URLParam(r, "paperId"))
	if err != nil {
		writeDomainError(r.Context(), w, h.log, op, model.Wrap(op, err))
		return
	}
	if results == nil {
		results = []model.MatchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// Package app provides the core business service that implements
// the dependencies required by the HTTP API and the admin CLI.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/papermatch/internal/adapters/cache"
	"github.com/okian/papermatch/internal/domain/aggregate"
	"github.com/okian/papermatch/internal/domain/feedback"
	"github.com/okian/papermatch/internal/domain/model"
	"github.com/okian/papermatch/internal/domain/ranking"
	"github.com/okian/papermatch/pkg/logger"
	"github.com/okian/papermatch/pkg/metrics"
)

// Cache names used as metric labels.
const (
	cacheStats       = "stats"
	cacheResults     = "results"
	cacheLeaderboard = "leaderboard"
)

// Store is everything the service needs from persistence.
type Store interface {
	feedback.Store

	AddTarget(ctx context.Context, t model.Target) error
	ListTargets(ctx context.Context, kind model.TargetKind, scope model.Scope) ([]model.Target, error)
	RecordMatch(ctx context.Context, target model.Target, m model.Match) error
	Match(ctx context.Context, id string) (model.RecordedMatch, error)
	ImportResults(ctx context.Context, paperID, source string, results []model.MatchResult) (int, error)
	Results(ctx context.Context, paperID string) ([]model.MatchResult, error)
	ResultsByCategory(ctx context.Context, scope model.Scope) (map[string][]model.MatchResult, error)
	DeleteUser(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
	Close() error
}

// Service implements the API dependencies for feedback, stats and leaderboards.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      Store
	cache      cache.Cache

	// generation counts invalidations. A fill that raced one is not stored.
	generation atomic.Uint64
	fillMu     sync.RWMutex

	feedback   *feedback.Service
	aggregator *aggregate.Aggregator

	// Configuration
	anonymous        bool
	maxCommentLength int
	defaultPageLimit int
	maxPageLimit     int
	trendEpsilon     float64
	newID            func() string

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// New constructs a Service over store and c. The service owns both and
// closes them on Stop.
func New(store Store, c cache.Cache, opts ...Option) *Service {
	s := &Service{
		store:            store,
		cache:            c,
		maxCommentLength: feedback.DefaultMaxCommentLength,
		defaultPageLimit: feedback.DefaultPageLimit,
		maxPageLimit:     feedback.DefaultMaxPageLimit,
		trendEpsilon:     aggregate.DefaultTrendEpsilon,
		newID:            uuid.NewString,
		logger:           logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cache == nil {
		s.cache = cache.NewMemory()
	}
	s.feedback = feedback.NewService(store,
		feedback.WithAnonymous(s.anonymous),
		feedback.WithMaxCommentLength(s.maxCommentLength),
		feedback.WithPageLimits(s.defaultPageLimit, s.maxPageLimit),
		feedback.WithLogger(s.logger.Named("feedback")),
	)
	s.aggregator = aggregate.New(aggregate.WithTrendEpsilon(s.trendEpsilon))
	return s
}

// Start verifies the store is reachable.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "papermatch service started",
		logger.Bool("anonymousFeedback", s.anonymous),
		logger.Int("maxCommentLength", s.maxCommentLength),
		logger.Float64("trendEpsilon", s.trendEpsilon),
	)
	return nil
}

// Stop closes the cache and the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping papermatch service...")

	if err := s.cache.Close(); err != nil {
		s.logger.Warn(ctx, "cache close failed", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "store close failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "papermatch service stopped")
}

// ApplyFeedback records a like, dislike or comment. Feedback reads are never
// cached, so no invalidation is needed.
func (s *Service) ApplyFeedback(ctx context.Context, userID, targetID string, kind model.Kind, text string) (model.FeedbackResult, error) {
	return s.feedback.Apply(ctx, userID, targetID, kind, text)
}

// FeedbackSummary returns counters, the caller's state and a page of comments.
func (s *Service) FeedbackSummary(ctx context.Context, userID, targetID string, page model.Page) (model.Summary, error) {
	return s.feedback.Summary(ctx, userID, targetID, page)
}

// Reconcile repairs counters that drifted from raw interactions.
func (s *Service) Reconcile(ctx context.Context) (model.ReconcileReport, error) {
	return s.feedback.Reconcile(ctx)
}

// DeleteUser removes the user and cascades to their interactions.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	const op = "app.delete_user"
	if strings.TrimSpace(userID) == "" {
		return model.WrapKind(op, model.ErrValidation, errors.New("user id is required"))
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return model.Wrap(op, err)
	}
	s.logger.Info(ctx, "user deleted", logger.String("userId", userID))
	return nil
}

// PaperStats folds the paper's results into a stats block.
func (s *Service) PaperStats(ctx context.Context, paperID string) (model.PaperStats, error) {
	const op = "app.paper_stats"
	return readThrough(ctx, s, cacheStats, cache.StatsKey(paperID), func() (model.PaperStats, error) {
		start := time.Now()
		results, err := s.paperResults(ctx, op, paperID)
		if err != nil {
			return model.PaperStats{}, err
		}
		stats, err := s.aggregator.Compute(results)
		if err != nil {
			metrics.RecordAggregationFailure()
			s.logger.Warn(ctx, "malformed results", logger.String("paperId", paperID), logger.Error(err))
			return model.PaperStats{}, model.Wrap(op, err)
		}
		metrics.RecordStatsComputation(float64(time.Since(start).Milliseconds()))
		return stats, nil
	})
}

// PaperResults returns the paper's results oldest first.
func (s *Service) PaperResults(ctx context.Context, paperID string) ([]model.MatchResult, error) {
	const op = "app.paper_results"
	return readThrough(ctx, s, cacheResults, cache.ResultsKey(paperID), func() ([]model.MatchResult, error) {
		results, err := s.paperResults(ctx, op, paperID)
		if err != nil {
			return nil, err
		}
		if results == nil {
			results = []model.MatchResult{}
		}
		return results, nil
	})
}

func (s *Service) paperResults(ctx context.Context, op, paperID string) ([]model.MatchResult, error) {
	if _, err := s.paper(ctx, op, paperID); err != nil {
		return nil, err
	}
	results, err := s.store.Results(ctx, paperID)
	if err != nil {
		return nil, model.Wrap(op, err)
	}
	return results, nil
}

// paper loads a catalog entry and requires it to be a paper.
func (s *Service) paper(ctx context.Context, op, id string) (model.Target, error) {
	t, err := s.store.Target(ctx, id)
	if err != nil {
		return model.Target{}, model.Wrap(op, err)
	}
	if t.Kind != model.TargetPaper {
		return model.Target{}, model.WrapKind(op, model.ErrNotFound, fmt.Errorf("%q is not a paper", id))
	}
	return t, nil
}

// Leaderboard ranks the papers of a category, optionally narrowed to one
// subcategory and one year. limit <= 0 returns the full ranking.
func (s *Service) Leaderboard(ctx context.Context, scope model.Scope, limit int) ([]model.LeaderboardEntry, error) {
	const op = "app.leaderboard"
	if strings.TrimSpace(scope.Category) == "" {
		return nil, model.WrapKind(op, model.ErrValidation, errors.New("category is required"))
	}
	if scope.Year < 0 {
		return nil, model.WrapKind(op, model.ErrValidation, errors.New("year must not be negative"))
	}

	entries, err := readThrough(ctx, s, cacheLeaderboard, cache.LeaderboardKey(scope.Category, scope.Subcategory, scope.Year),
		func() ([]model.LeaderboardEntry, error) {
			return s.buildLeaderboard(ctx, op, scope)
		})
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Service) buildLeaderboard(ctx context.Context, op string, scope model.Scope) ([]model.LeaderboardEntry, error) {
	start := time.Now()

	papers, err := s.store.ListTargets(ctx, model.TargetPaper, scope)
	if err != nil {
		return nil, model.Wrap(op, err)
	}
	byPaper, err := s.store.ResultsByCategory(ctx, scope)
	if err != nil {
		return nil, model.Wrap(op, err)
	}

	standings := make([]model.Standing, 0, len(papers))
	for _, p := range papers {
		stats, err := s.aggregator.Compute(byPaper[p.ID])
		if err != nil {
			metrics.RecordAggregationFailure()
			s.logger.Warn(ctx, "malformed results", logger.String("paperId", p.ID), logger.Error(err))
			return nil, model.Wrap(op, err)
		}
		standings = append(standings, model.Standing{ID: p.ID, Title: p.Title, Stats: stats})
	}

	entries, err := ranking.Rank(standings, 0)
	if err != nil {
		metrics.RecordAggregationFailure()
		return nil, model.Wrap(op, err)
	}
	metrics.RecordLeaderboardBuild(float64(time.Since(start).Milliseconds()), len(entries))
	return entries, nil
}

// RecordMatch stores a pairwise comparison as a feedback target with one
// result per paper. The match inherits paper A's category, subcategory and
// year. A missing id is generated.
func (s *Service) RecordMatch(ctx context.Context, m model.Match) (model.Match, error) {
	const op = "app.record_match"

	if err := validateMatch(m); err != nil {
		return model.Match{}, model.WrapKind(op, model.ErrValidation, err)
	}
	if m.ID == "" {
		m.ID = s.newID()
	}

	a, err := s.paper(ctx, op, m.PaperA)
	if err != nil {
		return model.Match{}, err
	}
	b, err := s.paper(ctx, op, m.PaperB)
	if err != nil {
		return model.Match{}, err
	}

	target := model.Target{
		ID:          m.ID,
		Kind:        model.TargetMatch,
		Category:    a.Category,
		Subcategory: a.Subcategory,
		Year:        a.Year,
		Title:       matchTitle(a, b),
	}
	if err := s.store.RecordMatch(ctx, target, m); err != nil {
		return model.Match{}, model.Wrap(op, err)
	}
	metrics.RecordMatchRecorded()

	s.invalidate(ctx, cacheStats, cache.StatsKey(a.ID), cache.StatsKey(b.ID))
	s.invalidate(ctx, cacheResults, cache.ResultsKey(a.ID), cache.ResultsKey(b.ID))
	s.invalidate(ctx, cacheLeaderboard, leaderboardKeys(a, b)...)

	s.logger.Debug(ctx, "match recorded",
		logger.String("matchId", m.ID),
		logger.String("paperA", m.PaperA),
		logger.String("paperB", m.PaperB),
		logger.String("winner", m.Winner),
	)
	return m, nil
}

// Match returns a recorded match with its catalog entry.
func (s *Service) Match(ctx context.Context, id string) (model.RecordedMatch, error) {
	const op = "app.match"
	if strings.TrimSpace(id) == "" {
		return model.RecordedMatch{}, model.WrapKind(op, model.ErrValidation, errors.New("match id is required"))
	}
	rm, err := s.store.Match(ctx, id)
	if err != nil {
		return model.RecordedMatch{}, model.Wrap(op, err)
	}
	return rm, nil
}

func validateMatch(m model.Match) error {
	switch {
	case strings.TrimSpace(m.PaperA) == "" || strings.TrimSpace(m.PaperB) == "":
		return errors.New("both papers are required")
	case m.PaperA == m.PaperB:
		return errors.New("a paper cannot be matched against itself")
	case m.Winner != "" && m.Winner != m.PaperA && m.Winner != m.PaperB:
		return fmt.Errorf("winner %q is not a participant", m.Winner)
	case m.RatingA < 0 || m.RatingB < 0:
		return errors.New("ratings must not be negative")
	case m.Date.IsZero():
		return errors.New("date is required")
	}
	return nil
}

func matchTitle(a, b model.Target) string {
	name := func(t model.Target) string {
		if t.Title != "" {
			return t.Title
		}
		return t.ID
	}
	return name(a) + " vs " + name(b)
}

// AddTarget registers a catalog entry. New papers change their category's
// leaderboard.
func (s *Service) AddTarget(ctx context.Context, t model.Target) error {
	const op = "app.add_target"
	if err := s.store.AddTarget(ctx, t); err != nil {
		return model.Wrap(op, err)
	}
	if t.Kind == model.TargetPaper {
		s.invalidate(ctx, cacheLeaderboard, leaderboardKeys(t)...)
	}
	return nil
}

// ImportResults appends a paper's results from an external source and
// returns how many were new.
func (s *Service) ImportResults(ctx context.Context, paperID, source string, results []model.MatchResult) (int, error) {
	const op = "app.import_results"

	p, err := s.paper(ctx, op, paperID)
	if err != nil {
		return 0, err
	}
	if _, err := s.aggregator.Compute(results); err != nil {
		metrics.RecordAggregationFailure()
		return 0, model.Wrap(op, err)
	}

	n, err := s.store.ImportResults(ctx, paperID, source, results)
	if err != nil {
		return 0, model.Wrap(op, err)
	}
	if n > 0 {
		s.invalidate(ctx, cacheStats, cache.StatsKey(paperID))
		s.invalidate(ctx, cacheResults, cache.ResultsKey(paperID))
		s.invalidate(ctx, cacheLeaderboard, leaderboardKeys(p)...)
	}
	return n, nil
}

// leaderboardKeys returns every key that ranks the given papers: the
// subcategory and whole category, each across all years and for the paper's
// own year.
func leaderboardKeys(papers ...model.Target) []string {
	seen := make(map[string]struct{}, 4*len(papers))
	keys := make([]string, 0, 4*len(papers))
	for _, p := range papers {
		for _, k := range []string{
			cache.LeaderboardKey(p.Category, p.Subcategory, 0),
			cache.LeaderboardKey(p.Category, "", 0),
			cache.LeaderboardKey(p.Category, p.Subcategory, p.Year),
			cache.LeaderboardKey(p.Category, "", p.Year),
		} {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

// invalidate drops keys after a committed write. Bumping the generation
// under fillMu keeps a fill that loaded before the write from storing its
// stale value afterwards.
func (s *Service) invalidate(ctx context.Context, name string, keys ...string) {
	if len(keys) == 0 {
		return
	}
	s.fillMu.Lock()
	s.generation.Add(1)
	err := s.cache.Delete(ctx, keys...)
	s.fillMu.Unlock()
	if err != nil {
		s.logger.Warn(ctx, "cache invalidation failed",
			logger.String("cache", name), logger.Any("keys", keys), logger.Error(err))
		return
	}
	metrics.RecordCacheInvalidation(name, len(keys))
}

// readThrough serves key from the cache, loading and storing it on a miss.
// Cache failures degrade to a direct load.
func readThrough[T any](ctx context.Context, s *Service, name, key string, load func() (T, error)) (T, error) {
	raw, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.logger.Warn(ctx, "cache read failed", logger.String("key", key), logger.Error(err))
	case ok:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.RecordCacheHit(name)
			return v, nil
		}
		s.logger.Warn(ctx, "cache entry undecodable", logger.String("key", key))
	}
	metrics.RecordCacheMiss(name)

	gen := s.generation.Load()
	v, err := load()
	if err != nil {
		return v, err
	}
	raw, err = json.Marshal(v)
	if err != nil {
		return v, nil
	}

	s.fillMu.RLock()
	defer s.fillMu.RUnlock()
	if s.generation.Load() != gen {
		s.logger.Debug(ctx, "cache fill skipped after invalidation", logger.String("key", key))
		return v, nil
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.logger.Warn(ctx, "cache write failed", logger.String("key", key), logger.Error(err))
	}
	return v, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"anonymousFeedback": s.anonymous,
		"maxCommentLength":  s.maxCommentLength,
		"maxPageLimit":      s.maxPageLimit,
		"trendEpsilon":      s.trendEpsilon,
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	if sized, ok := s.cache.(interface{ Len() int }); ok {
		stats["cacheEntries"] = sized.Len()
	}
	return stats
}

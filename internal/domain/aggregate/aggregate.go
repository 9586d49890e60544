// Package aggregate folds a paper's match results into its stats block.
package aggregate

import (
	"fmt"

	"github.com/okian/papermatch/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Scoring convention.
const (
	pointsWin  = 3
	pointsDraw = 1
	pointsLoss = 0

	// DefaultTrendEpsilon is the points-per-match margin below which form is stable.
	DefaultTrendEpsilon = 0.1

	winRatePlaces = 1
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithTrendEpsilon sets the trend margin. Negative values are ignored.
func WithTrendEpsilon(eps float64) Option {
	return func(a *Aggregator) {
		if eps >= 0 {
			a.epsilon = eps
		}
	}
}

// Aggregator computes PaperStats. It holds no state beyond its options and
// is safe for concurrent use.
type Aggregator struct {
	epsilon float64
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{epsilon: DefaultTrendEpsilon}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Compute folds results in input order, oldest first, using the default trend margin.
func Compute(results []model.MatchResult) (model.PaperStats, error) {
	return New().Compute(results)
}

// Compute folds results in input order, oldest first. Malformed input fails
// without partial stats.
func (a *Aggregator) Compute(results []model.MatchResult) (model.PaperStats, error) {
	const op = "aggregate.compute"

	stats := model.PaperStats{Trend: model.TrendStable}
	form := make([]byte, 0, len(results))

	for i, r := range results {
		if r.RatingOfOpponent < 0 {
			return model.PaperStats{}, model.WrapKind(op, model.ErrAggregation,
				fmt.Errorf("result %d: negative opponent rating %d", i, r.RatingOfOpponent))
		}
		switch r.Result {
		case model.OutcomeWin:
			stats.Wins++
			stats.RatingDiff += r.RatingOfOpponent
		case model.OutcomeDraw:
			stats.Draws++
		case model.OutcomeLoss:
			stats.Losses++
			stats.RatingDiff -= r.RatingOfOpponent
		default:
			return model.PaperStats{}, model.WrapKind(op, model.ErrAggregation,
				fmt.Errorf("result %d: unknown outcome %q", i, r.Result))
		}
		form = append(form, r.Result[0])
	}

	stats.Matches = len(results)
	stats.Points = pointsWin*stats.Wins + pointsDraw*stats.Draws + pointsLoss*stats.Losses
	stats.Form = string(form)
	stats.WinRate = winRate(stats.Wins, stats.Matches)
	stats.Trend = a.trend(results)
	return stats, nil
}

func winRate(wins, matches int) float64 {
	if matches == 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(wins) * 100).
		Div(decimal.NewFromInt(int64(matches))).
		Round(winRatePlaces)
	f, _ := rate.Float64()
	return f
}

// trend compares points per match of the most recent third against the
// earliest third. Fewer than three results are always stable.
func (a *Aggregator) trend(results []model.MatchResult) model.Trend {
	k := len(results) / 3
	if k == 0 {
		return model.TrendStable
	}
	early := averagePoints(results[:k])
	recent := averagePoints(results[len(results)-k:])
	switch {
	case recent-early > a.epsilon:
		return model.TrendUp
	case early-recent > a.epsilon:
		return model.TrendDown
	default:
		return model.TrendStable
	}
}

func averagePoints(rs []model.MatchResult) float64 {
	total := 0
	for _, r := range rs {
		switch r.Result {
		case model.OutcomeWin:
			total += pointsWin
		case model.OutcomeDraw:
			total += pointsDraw
		}
	}
	return float64(total) / float64(len(rs))
}

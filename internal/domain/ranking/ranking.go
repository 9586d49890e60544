// Package ranking orders papers within a category into a leaderboard.
package ranking

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/papermatch/internal/domain/model"
)

// Rank orders standings by points desc, then win rate desc, then id asc, and
// assigns 1-based ranks. limit <= 0 returns the full ranking. The input slice
// is not modified.
func Rank(standings []model.Standing, limit int) ([]model.LeaderboardEntry, error) {
	const op = "ranking.rank"

	seen := make(map[string]struct{}, len(standings))
	for i, s := range standings {
		if s.ID == "" {
			return nil, model.WrapKind(op, model.ErrAggregation, fmt.Errorf("entry %d has an empty id", i))
		}
		if _, dup := seen[s.ID]; dup {
			return nil, model.WrapKind(op, model.ErrAggregation, fmt.Errorf("duplicate id %q", s.ID))
		}
		seen[s.ID] = struct{}{}
	}

	sorted := slices.Clone(standings)
	slices.SortFunc(sorted, compare)

	n := len(sorted)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.LeaderboardEntry, n)
	for i := range n {
		out[i] = model.LeaderboardEntry{
			Rank:       i + 1,
			ID:         sorted[i].ID,
			Title:      sorted[i].Title,
			PaperStats: sorted[i].Stats,
		}
	}
	return out, nil
}

func compare(a, b model.Standing) int {
	if c := cmp.Compare(b.Stats.Points, a.Stats.Points); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Stats.WinRate, a.Stats.WinRate); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Package cache provides the read-through cache used for derived stats and
// leaderboards. Entries expire after a TTL and are invalidated explicitly on
// writes.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache stores opaque encoded values by key.
type Cache interface {
	// Get returns the value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for the cache TTL.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// DefaultTTL is the entry lifetime when none is configured.
const DefaultTTL = time.Hour

const sep = ":"

// StatsKey addresses a paper's stats block.
func StatsKey(paperID string) string { return "stats" + sep + paperID }

// ResultsKey addresses a paper's result history.
func ResultsKey(paperID string) string { return "results" + sep + paperID }

// LeaderboardKey addresses the full ranking of a category, subcategory and
// year. An empty subcategory is the whole category and year 0 is every year.
// Parts are length-prefixed so separators inside names cannot collide.
func LeaderboardKey(category, subcategory string, year int) string {
	return fmt.Sprintf("leaderboard%s%d%s%s%s%d%s%s%s%d",
		sep, len(category), sep, category,
		sep, len(subcategory), sep, subcategory,
		sep, year)
}

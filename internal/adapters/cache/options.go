package cache

import "time"

// Option applies a configuration option to the in-memory cache.
type Option func(*Memory)

// WithTTL sets the entry lifetime. Zero or negative values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the entry count. When full, the least recently used
// entry is evicted. Zero or negative means unbounded.
func WithMaxEntries(n int) Option {
	return func(m *Memory) {
		m.maxEntries = n
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

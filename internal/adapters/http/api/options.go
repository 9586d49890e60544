package api

import (
	"golang.org/x/time/rate"

	"github.com/okian/papermatch/pkg/logger"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	maxBodyBytes            = 64 << 10
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithVerifier enables bearer token verification. Without one every caller
// is anonymous and requests carrying a token are rejected.
func WithVerifier(v TokenVerifier) Option {
	return func(s *Server) {
		s.verifier = v
	}
}

// WithLeaderboardLimits sets the default and maximum leaderboard size.
// A zero default returns up to max entries.
func WithLeaderboardLimits(def, maxLimit int) Option {
	return func(s *Server) {
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
		if def >= 0 && def <= s.maxLimit {
			s.defaultLimit = def
		}
	}
}

// WithRateLimit limits writes per identity. A non-positive rate disables it.
func WithRateLimit(perSec float64, burst int) Option {
	return func(s *Server) {
		if perSec <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = newIdentityLimiter(rate.Limit(perSec), burst)
	}
}

// WithLogger sets the logger used for internal errors.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

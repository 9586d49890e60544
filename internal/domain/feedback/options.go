package feedback

import "github.com/okian/papermatch/pkg/logger"

// Default limits.
const (
	DefaultMaxCommentLength = 1000
	DefaultPageLimit        = 10
	DefaultMaxPageLimit     = 100
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAnonymous lets callers without an identity post comments.
func WithAnonymous(enabled bool) Option {
	return func(s *Service) {
		s.anonymous = enabled
	}
}

// WithMaxCommentLength caps comment text, counted in runes.
func WithMaxCommentLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCommentLength = n
		}
	}
}

// WithPageLimits sets the default and maximum comment page size.
func WithPageLimits(def, maxLimit int) Option {
	return func(s *Service) {
		if maxLimit > 0 {
			s.maxPageLimit = maxLimit
		}
		if def > 0 && def <= s.maxPageLimit {
			s.defaultPageLimit = def
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

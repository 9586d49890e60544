package app

import (
	"github.com/okian/papermatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAnonymousFeedback allows comments from callers without an identity.
func WithAnonymousFeedback(enabled bool) Option {
	return func(s *Service) {
		s.anonymous = enabled
	}
}

// WithMaxCommentLength caps comment text in runes.
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
		if def > 0 && maxLimit >= def {
			s.defaultPageLimit = def
			s.maxPageLimit = maxLimit
		}
	}
}

// WithTrendEpsilon sets the points-per-match margin for trend detection.
func WithTrendEpsilon(eps float64) Option {
	return func(s *Service) {
		if eps >= 0 {
			s.trendEpsilon = eps
		}
	}
}

// WithIDGenerator replaces the generator used for match ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

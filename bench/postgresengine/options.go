package postgresengine

import (
	"math/rand/v2"

	"github.com/neonaddict/scanbench/bench"
)

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Provisioned tables, seeded row counts, scan row counts and durations
// Warn level: Non-critical issues like cleanup failures
// Error level: Failures that abort an operation.
func WithLogger(logger bench.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// When set it is used instead of the plain Logger.
func WithContextualLogger(logger bench.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
func WithMetrics(collector bench.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithRandSource sets the random source used for seeded user ages.
func WithRandSource(src rand.Source) Option {
	return func(s *Store) error {
		if src == nil {
			return nil
		}

		s.rng = rand.New(src)

		return nil
	}
}

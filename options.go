package crep

import (
	"log/slog"

	"github.com/vincent-laurent/crep/frame"
)

type options struct {
	store            frame.Store
	logger           *Logger
	metricsCollector MetricsCollector
	parallelism      int
}

// Option configures Engine construction.
type Option func(*options)

// WithStore injects the tabular store backing all relational primitives.
//
// If nil is passed, the in-memory store is used.
func WithStore(s frame.Store) Option {
	return func(o *options) {
		if s == nil {
			s = frame.NewMem()
		}
		o.store = s
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithParallelism shards per-track computations across up to n goroutines.
//
// Tracks (distinct discrete keys) are independent, so sharding does not
// change observable output: shard results are concatenated and re-sorted by
// (discrete key, start). n <= 1 disables sharding.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		store:            frame.NewMem(),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		parallelism:      1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

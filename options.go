package erisieve

import (
	"log/slog"

	"github.com/chemkit/erisieve/integral"
)

// Options represents the options for configuring a Sieve.
type Options struct {
	// Threshold is the initial screening cutoff. Pairs and quartets whose
	// bound falls below it are reported as not significant.
	Threshold float64

	// CSAM enables the exchange-bound tables behind the CSAM significance
	// test. Building them costs one extra integral pass.
	CSAM bool

	// QQR requests the long-range extent-based significance test. The
	// estimator was never functional and New rejects the flag with
	// ErrQQRUnsupported; the field is retained as a placeholder for a
	// reimplemented extent model.
	QQR bool

	// Parallelism is the number of workers used to fill the magnitude
	// tables. Values below 1 are treated as 1.
	Parallelism int

	// EngineFactory creates an additional integral engine per worker for
	// parallel builds. Required when Parallelism > 1 because engines share
	// a scratch buffer across calls and cannot be used concurrently.
	EngineFactory func() (integral.Engine, error)

	// SnapshotCompression selects the block compression used by
	// WriteSnapshot.
	SnapshotCompression SnapshotCompression

	// Logger receives structured build, rebuild and snapshot events.
	// If nil, logging is disabled.
	Logger *Logger

	// Metrics receives operation timings. If nil, metrics are disabled.
	Metrics MetricsCollector
}

// DefaultOptions holds the default sieve configuration.
var DefaultOptions = Options{
	Threshold:           0,
	CSAM:                false,
	Parallelism:         1,
	SnapshotCompression: SnapshotCompressionZstd,
}

// WithThreshold sets the initial screening cutoff.
func WithThreshold(threshold float64) func(o *Options) {
	return func(o *Options) {
		o.Threshold = threshold
	}
}

// WithCSAM enables the CSAM exchange-bound tables.
func WithCSAM() func(o *Options) {
	return func(o *Options) {
		o.CSAM = true
	}
}

// WithParallelism sets the worker count for the table builds. Parallel
// builds also need WithEngineFactory.
func WithParallelism(n int) func(o *Options) {
	return func(o *Options) {
		o.Parallelism = n
	}
}

// WithEngineFactory sets the factory used to create per-worker integral
// engines for parallel builds.
func WithEngineFactory(factory func() (integral.Engine, error)) func(o *Options) {
	return func(o *Options) {
		o.EngineFactory = factory
	}
}

// WithSnapshotCompression sets the block compression for snapshots.
func WithSnapshotCompression(c SnapshotCompression) func(o *Options) {
	return func(o *Options) {
		o.SnapshotCompression = c
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := erisieve.NewJSONLogger(slog.LevelInfo)
//	sv, _ := erisieve.New(bs, eng, erisieve.WithLogger(logger))
func WithLogger(logger *Logger) func(o *Options) {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) func(o *Options) {
	return func(o *Options) {
		o.Logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &erisieve.BasicMetricsCollector{}
//	sv, _ := erisieve.New(bs, eng, erisieve.WithMetricsCollector(metrics))
//	// ... use sv ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) func(o *Options) {
	return func(o *Options) {
		o.Metrics = mc
	}
}

func normalizeOptions(optFns []func(o *Options)) Options {
	opts := DefaultOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetricsCollector{}
	}

	return opts
}

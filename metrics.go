package erisieve

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    buildCounter     prometheus.Counter
//	    rebuildHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordBuild(quartets int, duration time.Duration, err error) {
//	    p.buildCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordBuild is called after the magnitude tables are computed.
	// quartets is the number of integral blocks the build comprises,
	// duration is the total time taken, err is nil if successful.
	RecordBuild(quartets int, duration time.Duration, err error)

	// RecordRebuild is called after each threshold application.
	// shellPairs and functionPairs are the resulting significant list sizes.
	RecordRebuild(shellPairs, functionPairs int, duration time.Duration)

	// RecordSnapshotWrite is called after each snapshot write.
	// bytes is the serialized size, err is nil if successful.
	RecordSnapshotWrite(bytes int64, duration time.Duration, err error)

	// RecordSnapshotRead is called after each snapshot read.
	RecordSnapshotRead(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordRebuild(int, int, time.Duration)           {}
func (NoopMetricsCollector) RecordSnapshotWrite(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordSnapshotRead(int64, time.Duration, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount          atomic.Int64
	BuildErrors         atomic.Int64
	BuildQuartets       atomic.Int64
	BuildTotalNanos     atomic.Int64
	RebuildCount        atomic.Int64
	RebuildTotalNanos   atomic.Int64
	SnapshotWriteCount  atomic.Int64
	SnapshotWriteErrors atomic.Int64
	SnapshotWriteBytes  atomic.Int64
	SnapshotReadCount   atomic.Int64
	SnapshotReadErrors  atomic.Int64
	SnapshotReadBytes   atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(quartets int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildQuartets.Add(int64(quartets))
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRebuild(shellPairs, functionPairs int, duration time.Duration) {
	b.RebuildCount.Add(1)
	b.RebuildTotalNanos.Add(duration.Nanoseconds())
}

// RecordSnapshotWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotWrite(bytes int64, duration time.Duration, err error) {
	b.SnapshotWriteCount.Add(1)
	b.SnapshotWriteBytes.Add(bytes)
	if err != nil {
		b.SnapshotWriteErrors.Add(1)
	}
}

// RecordSnapshotRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotRead(bytes int64, duration time.Duration, err error) {
	b.SnapshotReadCount.Add(1)
	b.SnapshotReadBytes.Add(bytes)
	if err != nil {
		b.SnapshotReadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:          b.BuildCount.Load(),
		BuildErrors:         b.BuildErrors.Load(),
		BuildQuartets:       b.BuildQuartets.Load(),
		BuildAvgNanos:       b.getAvgBuildNanos(),
		RebuildCount:        b.RebuildCount.Load(),
		RebuildAvgNanos:     b.getAvgRebuildNanos(),
		SnapshotWriteCount:  b.SnapshotWriteCount.Load(),
		SnapshotWriteErrors: b.SnapshotWriteErrors.Load(),
		SnapshotWriteBytes:  b.SnapshotWriteBytes.Load(),
		SnapshotReadCount:   b.SnapshotReadCount.Load(),
		SnapshotReadErrors:  b.SnapshotReadErrors.Load(),
		SnapshotReadBytes:   b.SnapshotReadBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgBuildNanos() int64 {
	count := b.BuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.BuildTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgRebuildNanos() int64 {
	count := b.RebuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.RebuildTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount          int64
	BuildErrors         int64
	BuildQuartets       int64
	BuildAvgNanos       int64
	RebuildCount        int64
	RebuildAvgNanos     int64
	SnapshotWriteCount  int64
	SnapshotWriteErrors int64
	SnapshotWriteBytes  int64
	SnapshotReadCount   int64
	SnapshotReadErrors  int64
	SnapshotReadBytes   int64
}

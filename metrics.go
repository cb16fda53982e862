package crep

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordMerge is called after each interval merge.
	RecordMerge(how How, duration time.Duration, err error)

	// RecordOverlay is called after each unbalanced (overlay) merge.
	RecordOverlay(duration time.Duration, err error)

	// RecordAggregate is called after each constant-run aggregation.
	RecordAggregate(duration time.Duration, err error)

	// RecordResample is called after each fixed-length re-segmentation.
	RecordResample(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordMerge(How, time.Duration, error) {}
func (NoopMetricsCollector) RecordOverlay(time.Duration, error)    {}
func (NoopMetricsCollector) RecordAggregate(time.Duration, error)  {}
func (NoopMetricsCollector) RecordResample(time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	MergeCount          atomic.Int64
	MergeErrors         atomic.Int64
	MergeTotalNanos     atomic.Int64
	OverlayCount        atomic.Int64
	OverlayErrors       atomic.Int64
	OverlayTotalNanos   atomic.Int64
	AggregateCount      atomic.Int64
	AggregateErrors     atomic.Int64
	AggregateTotalNanos atomic.Int64
	ResampleCount       atomic.Int64
	ResampleErrors      atomic.Int64
	ResampleTotalNanos  atomic.Int64
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(_ How, duration time.Duration, err error) {
	b.MergeCount.Add(1)
	b.MergeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MergeErrors.Add(1)
	}
}

// RecordOverlay implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOverlay(duration time.Duration, err error) {
	b.OverlayCount.Add(1)
	b.OverlayTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.OverlayErrors.Add(1)
	}
}

// RecordAggregate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAggregate(duration time.Duration, err error) {
	b.AggregateCount.Add(1)
	b.AggregateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AggregateErrors.Add(1)
	}
}

// RecordResample implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResample(duration time.Duration, err error) {
	b.ResampleCount.Add(1)
	b.ResampleTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ResampleErrors.Add(1)
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	MergeCount      int64
	MergeErrors     int64
	MergeAvgNanos   int64
	OverlayCount    int64
	OverlayErrors   int64
	AggregateCount  int64
	AggregateErrors int64
	ResampleCount   int64
	ResampleErrors  int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		MergeCount:      b.MergeCount.Load(),
		MergeErrors:     b.MergeErrors.Load(),
		OverlayCount:    b.OverlayCount.Load(),
		OverlayErrors:   b.OverlayErrors.Load(),
		AggregateCount:  b.AggregateCount.Load(),
		AggregateErrors: b.AggregateErrors.Load(),
		ResampleCount:   b.ResampleCount.Load(),
		ResampleErrors:  b.ResampleErrors.Load(),
	}
	if stats.MergeCount > 0 {
		stats.MergeAvgNanos = b.MergeTotalNanos.Load() / stats.MergeCount
	}
	return stats
}

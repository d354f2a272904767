package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks input handling of the UI loop.
type Metrics struct {
	inputCount   atomic.Uint64
	inputTotalNs atomic.Int64
	inputMaxNs   atomic.Int64
	inputDropped atomic.Uint64
	changeCount  atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordInput records how long one terminal event took to handle.
func (m *Metrics) RecordInput(duration time.Duration) {
	ns := duration.Nanoseconds()
	m.inputCount.Add(1)
	m.inputTotalNs.Add(ns)
	for {
		old := m.inputMaxNs.Load()
		if ns <= old || m.inputMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordInputDropped records an event the UI loop could not queue.
func (m *Metrics) RecordInputDropped() {
	m.inputDropped.Add(1)
}

// RecordChange records one session change notification.
func (m *Metrics) RecordChange() {
	m.changeCount.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.inputCount.Load()
	var avg time.Duration
	if count > 0 {
		avg = time.Duration(m.inputTotalNs.Load() / int64(count))
	}
	return MetricsSnapshot{
		Uptime:       time.Since(m.startTime),
		InputCount:   count,
		AvgInput:     avg,
		MaxInput:     time.Duration(m.inputMaxNs.Load()),
		InputDropped: m.inputDropped.Load(),
		ChangeCount:  m.changeCount.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime       time.Duration
	InputCount   uint64
	AvgInput     time.Duration
	MaxInput     time.Duration
	InputDropped uint64
	ChangeCount  uint64
}

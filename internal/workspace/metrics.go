package workspace

import (
	"sync/atomic"
	"time"
)

// Metrics counts event loop activity.
type Metrics struct {
	eventCount   atomic.Uint64
	eventTotalNs atomic.Int64
	eventMaxNs   atomic.Int64
	dropped      atomic.Uint64

	configChanges   atomic.Uint64
	themeReloads    atomic.Uint64
	persistFailures atomic.Uint64
}

// RecordEvent records the time one event took to run.
func (m *Metrics) RecordEvent(d time.Duration) {
	ns := d.Nanoseconds()
	m.eventCount.Add(1)
	m.eventTotalNs.Add(ns)
	for {
		old := m.eventMaxNs.Load()
		if ns <= old || m.eventMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// MetricsSnapshot is a point-in-time view of Metrics.
type MetricsSnapshot struct {
	Events          uint64
	AvgEvent        time.Duration
	MaxEvent        time.Duration
	Dropped         uint64
	ConfigChanges   uint64
	ThemeReloads    uint64
	PersistFailures uint64
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.eventCount.Load()
	var avg int64
	if count > 0 {
		avg = m.eventTotalNs.Load() / int64(count)
	}
	return MetricsSnapshot{
		Events:          count,
		AvgEvent:        time.Duration(avg),
		MaxEvent:        time.Duration(m.eventMaxNs.Load()),
		Dropped:         m.dropped.Load(),
		ConfigChanges:   m.configChanges.Load(),
		ThemeReloads:    m.themeReloads.Load(),
		PersistFailures: m.persistFailures.Load(),
	}
}

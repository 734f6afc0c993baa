package portalclient

import "sync/atomic"

// MetricID identifies a counter in the in-process metrics system.
type MetricID uint16

const (
	// MetricRequest counts outbound portal requests, replays included.
	MetricRequest MetricID = iota
	// MetricSessionExpired counts session-expired responses on fresh calls.
	MetricSessionExpired
	// MetricRefreshSuccess counts settled refresh attempts that succeeded.
	MetricRefreshSuccess
	// MetricRefreshFailure counts settled refresh attempts that failed.
	MetricRefreshFailure
	// MetricRefreshJoined counts callers that joined an in-flight refresh
	// instead of starting their own.
	MetricRefreshJoined
	// MetricReplay counts requests replayed after a successful refresh.
	MetricReplay
	// MetricReplayRejected counts replays that were rejected again.
	MetricReplayRejected
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess
	// MetricLoginFailure counts logins rejected by the identity backend.
	MetricLoginFailure
	// MetricLogout counts explicit logouts.
	MetricLogout
	// MetricTeardown counts session teardowns, from logout or terminal
	// refresh failure.
	MetricTeardown

	metricIDCount
)

// Metrics holds atomic counters. When disabled, every operation is a no-op
// and Snapshot returns empty maps.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics creates a Metrics instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}

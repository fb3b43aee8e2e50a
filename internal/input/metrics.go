package input

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks resolution and dispatch activity.
type Metrics struct {
	// Resolution counters
	bindings     atomic.Uint64
	selfInserts  atomic.Uint64
	interrupts   atomic.Uint64
	eofs         atomic.Uint64
	ambiguity    atomic.Uint64
	seqTimeouts  atomic.Uint64
	queryWaits   atomic.Uint64
	hookConsumed atomic.Uint64
	dispatchErrs atomic.Uint64
	reloads      atomic.Uint64

	// Dispatch latency tracking
	mu                sync.RWMutex
	latencies         []time.Duration
	maxLatencySamples int
	latencyIdx        int

	// Peak latency (all time)
	peakLatency atomic.Int64

	// Start time for uptime calculation
	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		latencies:         make([]time.Duration, 256),
		maxLatencySamples: 256,
		startTime:         time.Now(),
	}
}

// RecordResolution counts a resolution by kind.
func (m *Metrics) RecordResolution(kind ResolutionKind) {
	switch kind {
	case ResolvedBinding:
		m.bindings.Add(1)
	case ResolvedSelfInsert:
		m.selfInserts.Add(1)
	case ResolvedInterrupt:
		m.interrupts.Add(1)
	case ResolvedEOF:
		m.eofs.Add(1)
	}
}

// RecordAmbiguityWait records a wait for the next key of a sequence.
func (m *Metrics) RecordAmbiguityWait() {
	m.ambiguity.Add(1)
}

// RecordSequenceTimeout records a sequence wait that ran out.
func (m *Metrics) RecordSequenceTimeout() {
	m.seqTimeouts.Add(1)
}

// RecordQueryWait records a wait for a terminal query reply.
func (m *Metrics) RecordQueryWait() {
	m.queryWaits.Add(1)
}

// RecordHookConsumption records a resolution consumed by a hook.
func (m *Metrics) RecordHookConsumption() {
	m.hookConsumed.Add(1)
}

// RecordReload records a binding table swap.
func (m *Metrics) RecordReload() {
	m.reloads.Add(1)
}

// RecordDispatch records a dispatch with its duration.
func (m *Metrics) RecordDispatch(latency time.Duration, err error) {
	if err != nil {
		m.dispatchErrs.Add(1)
	}

	// Update peak latency
	latencyNs := latency.Nanoseconds()
	for {
		current := m.peakLatency.Load()
		if latencyNs <= current {
			break
		}
		if m.peakLatency.CompareAndSwap(current, latencyNs) {
			break
		}
	}

	// Store in circular buffer
	m.mu.Lock()
	m.latencies[m.latencyIdx] = latency
	m.latencyIdx = (m.latencyIdx + 1) % m.maxLatencySamples
	m.mu.Unlock()
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	// Resolutions
	Bindings    uint64
	SelfInserts uint64
	Interrupts  uint64
	EOFs        uint64

	// Waits
	AmbiguityWaits   uint64
	SequenceTimeouts uint64
	QueryWaits       uint64

	HookConsumptions uint64
	DispatchErrors   uint64
	Reloads          uint64

	// Dispatch latency
	AvgDispatchLatency  time.Duration
	MaxDispatchLatency  time.Duration
	PeakDispatchLatency time.Duration

	Uptime time.Duration
}

// Resolutions returns the total number of resolutions.
func (s MetricsSnapshot) Resolutions() uint64 {
	return s.Bindings + s.SelfInserts + s.Interrupts + s.EOFs
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	latencies := make([]time.Duration, len(m.latencies))
	copy(latencies, m.latencies)
	m.mu.RUnlock()

	snap := MetricsSnapshot{
		Bindings:            m.bindings.Load(),
		SelfInserts:         m.selfInserts.Load(),
		Interrupts:          m.interrupts.Load(),
		EOFs:                m.eofs.Load(),
		AmbiguityWaits:      m.ambiguity.Load(),
		SequenceTimeouts:    m.seqTimeouts.Load(),
		QueryWaits:          m.queryWaits.Load(),
		HookConsumptions:    m.hookConsumed.Load(),
		DispatchErrors:      m.dispatchErrs.Load(),
		Reloads:             m.reloads.Load(),
		PeakDispatchLatency: time.Duration(m.peakLatency.Load()),
		Uptime:              time.Since(m.startTime),
	}
	snap.AvgDispatchLatency, snap.MaxDispatchLatency = latencyStats(latencies)
	return snap
}

// latencyStats computes average and max over the recorded samples.
func latencyStats(latencies []time.Duration) (avg, maxLat time.Duration) {
	var sum time.Duration
	var n int
	for _, l := range latencies {
		if l <= 0 {
			continue
		}
		n++
		sum += l
		if l > maxLat {
			maxLat = l
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / time.Duration(n), maxLat
}

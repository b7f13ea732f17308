package metrics

import (
	"sync"
	"time"
)

type upstreamStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type deliveryKey struct {
	kind    string
	outcome string
}

// Recorder captures lightweight, in-memory metrics about upstream calls and
// background sync, optionally mirrored to OpenTelemetry instruments.
type Recorder struct {
	mu         sync.Mutex
	stats      map[string]*upstreamStats
	fallbacks  map[string]int
	deliveries map[deliveryKey]int
	flushes    int
	otel       *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats:      make(map[string]*upstreamStats),
		fallbacks:  make(map[string]int),
		deliveries: make(map[deliveryKey]int),
		otel:       otel,
	}
}

// RecordUpstreamAttempt increments counters for an upstream call and stores the last observed latency.
func (r *Recorder) RecordUpstreamAttempt(upstream string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(upstream)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordUpstreamAttempt(upstream, duration, err)
	}
}

// RecordRateLimit tracks that an upstream response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(upstream string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(upstream)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(upstream, retryAfter)
	}
}

// RecordSyncFallback counts a secondary-path write after the primary remote failed.
func (r *Recorder) RecordSyncFallback(kind string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.fallbacks[kind]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFallback(kind)
	}
}

// RecordDelivery counts the outcome of one sync operation.
func (r *Recorder) RecordDelivery(kind, outcome string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.deliveries[deliveryKey{kind: kind, outcome: outcome}]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordDelivery(kind, outcome)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordFlushCycle tracks outbox flush cycles and errors.
func (r *Recorder) RecordFlushCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.flushes++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFlush(duration, err)
	}
}

// UpstreamCalls returns the total attempts recorded for an upstream.
func (r *Recorder) UpstreamCalls(upstream string) int {
	return r.Snapshot(upstream).Calls
}

// UpstreamErrors returns the total failed attempts recorded for an upstream.
func (r *Recorder) UpstreamErrors(upstream string) int {
	return r.Snapshot(upstream).Errors
}

// RateLimitHits returns the number of rate limit events seen for an upstream.
func (r *Recorder) RateLimitHits(upstream string) int {
	return r.Snapshot(upstream).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for an upstream.
func (r *Recorder) LastRetryAfter(upstream string) time.Duration {
	return r.Snapshot(upstream).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for an upstream call.
func (r *Recorder) LastCallLatency(upstream string) time.Duration {
	return r.Snapshot(upstream).LastCallLatency
}

// SyncFallbacks returns how many fallback writes were made for kind.
func (r *Recorder) SyncFallbacks(kind string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fallbacks[kind]
}

// Deliveries returns how many operations of kind ended with outcome.
func (r *Recorder) Deliveries(kind, outcome string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deliveries[deliveryKey{kind: kind, outcome: outcome}]
}

// FlushCycles returns the number of outbox flush cycles recorded.
func (r *Recorder) FlushCycles() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

// Snapshot returns a copy of the current stats for the upstream.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(upstream string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[upstream]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// ensureStats must be called with r.mu held.
func (r *Recorder) ensureStats(upstream string) *upstreamStats {
	stats, ok := r.stats[upstream]
	if !ok {
		stats = &upstreamStats{}
		r.stats[upstream] = stats
	}
	return stats
}

package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderTracksUpstreamAttemptsAndErrors(t *testing.T) {
	rec := NewRecorder()
	rec.RecordUpstreamAttempt("search", 10*time.Millisecond, nil)
	rec.RecordUpstreamAttempt("search", 15*time.Millisecond, errors.New("boom"))

	if got := rec.UpstreamCalls("search"); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
	if got := rec.UpstreamErrors("search"); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
	if got := rec.LastCallLatency("search"); got != 15*time.Millisecond {
		t.Fatalf("expected last latency to be 15ms, got %s", got)
	}

	snap := rec.Snapshot("search")
	if snap.Calls != 2 || snap.Errors != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if other := rec.Snapshot("remote"); other.Calls != 0 {
		t.Fatalf("expected empty snapshot for unseen upstream, got %+v", other)
	}
}

func TestRecorderTracksRateLimits(t *testing.T) {
	rec := NewRecorder()
	rec.RecordRateLimit("search", 5*time.Second)
	rec.RecordRateLimit("search", 0)

	if got := rec.RateLimitHits("search"); got != 2 {
		t.Fatalf("expected 2 rate limit hits, got %d", got)
	}
	if got := rec.LastRetryAfter("search"); got != 5*time.Second {
		t.Fatalf("expected last retry-after to be 5s, got %s", got)
	}
}

func TestRecorderTracksSyncAndFlushes(t *testing.T) {
	rec := NewRecorder()
	rec.RecordSyncFallback("favorites.sync")
	rec.RecordDelivery("favorites.sync", OutcomeDelivered)
	rec.RecordDelivery("favorites.sync", OutcomeQueued)
	rec.RecordDelivery("favorites.sync", OutcomeQueued)
	rec.RecordFlushCycle(time.Millisecond, nil)

	if got := rec.SyncFallbacks("favorites.sync"); got != 1 {
		t.Fatalf("expected 1 fallback, got %d", got)
	}
	if got := rec.Deliveries("favorites.sync", OutcomeQueued); got != 2 {
		t.Fatalf("expected 2 queued, got %d", got)
	}
	if got := rec.FlushCycles(); got != 1 {
		t.Fatalf("expected 1 flush cycle, got %d", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordUpstreamAttempt("search", time.Millisecond, nil)
	rec.RecordRateLimit("search", time.Second)
	rec.RecordSyncFallback("k")
	rec.RecordDelivery("k", OutcomeFailed)
	rec.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)
	rec.RecordFlushCycle(time.Millisecond, nil)
	if rec.UpstreamCalls("search") != 0 || rec.Deliveries("k", OutcomeFailed) != 0 || rec.FlushCycles() != 0 {
		t.Fatal("expected zero values from nil recorder")
	}
}

package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/metrics"
)

const defaultInterval = 30 * time.Second

// Flusher replays whatever remote writes are still pending.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Poller flushes pending deliveries on an interval.
type Poller struct {
	flusher  Flusher
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the flush loop.
type Status struct {
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastSuccess         time.Time `json:"lastSuccess"`
}

// IsReady reports whether the poller has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Poller with sane defaults.
func New(flusher Flusher, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		flusher:  flusher,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins flushing until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.ticker = time.NewTicker(p.interval)
	p.startMu.Unlock()

	go func() {
		defer close(p.stopped)
		logging.Info(p.logger, "outbox poller started", logging.FieldDurationMS, p.interval.Milliseconds())
		// Replay anything left over from a previous run.
		p.flushOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopTicker()
				logging.Info(p.logger, "outbox poller stopped")
				return
			case <-p.done:
				p.stopTicker()
				logging.Info(p.logger, "outbox poller stopped")
				return
			case <-p.ticker.C:
				p.flushOnce(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight flush to finish or ctx to end.
func (p *Poller) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.done)
	})

	p.startMu.Lock()
	started := p.started
	p.startMu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) flushOnce(ctx context.Context) {
	start := p.now()
	p.recordAttempt(start)
	err := p.flusher.Flush(ctx)
	elapsed := time.Since(start)
	p.metrics.RecordFlushCycle(elapsed, err)
	if err != nil {
		logging.Error(p.logger, "outbox flush failed", err, logging.FieldDurationMS, elapsed.Milliseconds())
		p.recordFailure(err, start)
		return
	}
	p.recordSuccess(start)
	if p.logger != nil {
		p.logger.Debug("outbox flushed", logging.FieldDurationMS, elapsed.Milliseconds())
	}
}

func (p *Poller) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}

package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/metrics"
	"github.com/scoutline/scout-client/internal/providers"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
	maxBackoff           = 10 * time.Second
)

// Retrying dispatches with exponential backoff and jitter. Rate limited
// attempts wait for the upstream's Retry-After instead.
type Retrying struct {
	dispatcher  *Dispatcher
	logger      *slog.Logger
	metrics     *metrics.Recorder
	maxAttempts int
	newBackOff  func() backoff.BackOff
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRetrying wraps d with retries. If maxAttempts/base are <= 0, defaults are used.
func NewRetrying(d *Dispatcher, logger *slog.Logger, recorder *metrics.Recorder, maxAttempts int, base time.Duration) *Retrying {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if base <= 0 {
		base = defaultBackoff
	}
	return &Retrying{
		dispatcher:  d,
		logger:      logger,
		metrics:     recorder,
		maxAttempts: maxAttempts,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = base
			b.RandomizationFactor = 0.5
			b.Multiplier = 2
			b.MaxInterval = maxBackoff
			b.MaxElapsedTime = 0
			b.Reset()
			return b
		},
		sleep: sleepContext,
	}
}

// Submit retries op until it succeeds, fails permanently, runs out of
// attempts, or ctx is done.
func (r *Retrying) Submit(ctx context.Context, op Op) error {
	b := r.newBackOff()
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.dispatcher.Dispatch(ctx, op)
		if err == nil {
			r.metrics.RecordDelivery(string(op.Kind), metrics.OutcomeDelivered)
			return nil
		}
		lastErr = err
		if IsPermanent(err) {
			break
		}
		if attempt == r.maxAttempts {
			break
		}

		r.logWarn(ctx, "sync retry", logging.FieldOpKind, op.Kind, "attempt", attempt, "max_attempts", r.maxAttempts, "error", err)

		if err := r.sleep(ctx, r.computeDelay(err, b)); err != nil {
			lastErr = err
			break
		}
	}

	r.metrics.RecordDelivery(string(op.Kind), metrics.OutcomeFailed)
	r.logWarn(ctx, "sync failed", logging.FieldOpKind, op.Kind, "op_id", op.ID, "error", lastErr)
	return lastErr
}

func (r *Retrying) computeDelay(err error, b backoff.BackOff) time.Duration {
	if rl, ok := providers.AsRateLimitError(err); ok && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := b.NextBackOff()
	if d == backoff.Stop {
		return maxBackoff
	}
	return d
}

func (r *Retrying) logWarn(ctx context.Context, msg string, args ...any) {
	logging.Warn(logging.FromContext(ctx, r.logger), msg, args...)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

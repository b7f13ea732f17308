package delivery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/metrics"
	"github.com/scoutline/scout-client/internal/storage"
)

const defaultOutboxAttempts = 10

// Outbox tries each op once and durably queues transient failures in the
// client's store. Queued ops are replayed in submission order; a new op never
// overtakes one that is already queued or in flight.
//
// Dispatch runs without the lock held, so handlers may submit follow-up ops.
// Those queue behind the op being delivered.
type Outbox struct {
	mu          sync.Mutex
	busy        bool
	dispatcher  *Dispatcher
	store       storage.Store
	logger      *slog.Logger
	metrics     *metrics.Recorder
	maxAttempts int
}

// NewOutbox constructs an outbox over store. Ops are dropped after maxAttempts
// failed deliveries (default 10).
func NewOutbox(d *Dispatcher, store storage.Store, logger *slog.Logger, recorder *metrics.Recorder, maxAttempts int) *Outbox {
	if maxAttempts <= 0 {
		maxAttempts = defaultOutboxAttempts
	}
	return &Outbox{dispatcher: d, store: store, logger: logger, metrics: recorder, maxAttempts: maxAttempts}
}

// Submit delivers op or queues it. Only storage failures are returned.
func (o *Outbox) Submit(ctx context.Context, op Op) error {
	o.mu.Lock()
	queue, err := o.load(ctx)
	if err != nil {
		o.mu.Unlock()
		return err
	}
	if o.busy || len(queue) > 0 {
		defer o.mu.Unlock()
		o.metrics.RecordDelivery(string(op.Kind), metrics.OutcomeQueued)
		return o.save(ctx, append(queue, op))
	}
	o.busy = true
	o.mu.Unlock()
	defer o.release()

	if err := o.attempt(ctx, &op); err != nil && !o.settled(ctx, op, err) {
		o.mu.Lock()
		defer o.mu.Unlock()
		queue, err := o.load(ctx)
		if err != nil {
			return err
		}
		o.metrics.RecordDelivery(string(op.Kind), metrics.OutcomeQueued)
		return o.save(ctx, append([]Op{op}, queue...))
	}
	// ops submitted while op was in flight
	return o.drain(ctx)
}

// Flush replays queued ops in order, stopping at the first transient failure.
// It returns immediately when another delivery is in progress.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil
	}
	o.busy = true
	o.mu.Unlock()
	defer o.release()

	return o.drain(ctx)
}

// Pending returns the queued ops in delivery order.
func (o *Outbox) Pending(ctx context.Context) ([]Op, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.load(ctx)
}

func (o *Outbox) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

// drain delivers the queue head by head. Callers must have set busy, which
// keeps the head stable: concurrent submissions only append.
func (o *Outbox) drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.mu.Lock()
		queue, err := o.load(ctx)
		o.mu.Unlock()
		if err != nil || len(queue) == 0 {
			return err
		}

		head := queue[0]
		derr := o.attempt(ctx, &head)
		delivered := derr == nil || o.settled(ctx, head, derr)

		o.mu.Lock()
		queue, err = o.load(ctx)
		if err == nil && len(queue) > 0 {
			if delivered {
				queue = queue[1:]
			} else {
				queue[0] = head
			}
			err = o.save(ctx, queue)
		}
		o.mu.Unlock()
		if err != nil {
			return err
		}
		if !delivered {
			logging.Info(logging.FromContext(ctx, o.logger), "outbox pending", logging.FieldCount, len(queue))
			return nil
		}
	}
}

func (o *Outbox) attempt(ctx context.Context, op *Op) error {
	op.Attempts++
	if err := o.dispatcher.Dispatch(ctx, *op); err != nil {
		return err
	}
	o.metrics.RecordDelivery(string(op.Kind), metrics.OutcomeDelivered)
	return nil
}

// settled reports whether a failed op should leave the queue.
func (o *Outbox) settled(ctx context.Context, op Op, err error) bool {
	logger := logging.FromContext(ctx, o.logger)
	if IsPermanent(err) || op.Attempts >= o.maxAttempts {
		o.metrics.RecordDelivery(string(op.Kind), metrics.OutcomeDropped)
		logging.Error(logger, "sync dropped", err,
			logging.FieldOpKind, op.Kind,
			"op_id", op.ID,
			"attempts", op.Attempts,
		)
		return true
	}
	logging.Warn(logger, "sync deferred",
		logging.FieldOpKind, op.Kind,
		"op_id", op.ID,
		"attempts", op.Attempts,
		"error", err,
	)
	return false
}

func (o *Outbox) load(ctx context.Context) ([]Op, error) {
	queue, _, err := storage.GetJSON[[]Op](ctx, o.store, storage.KeyOutbox)
	return queue, err
}

func (o *Outbox) save(ctx context.Context, queue []Op) error {
	if len(queue) == 0 {
		return o.store.Remove(ctx, storage.KeyOutbox)
	}
	return storage.SetJSON(ctx, o.store, storage.KeyOutbox, queue)
}

package delivery

import (
	"context"
	"log/slog"

	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/metrics"
)

// Strategy submits an op to its remote handler. A nil return means the op was
// delivered or accepted for later delivery.
type Strategy interface {
	Submit(ctx context.Context, op Op) error
}

// Flusher is implemented by strategies that hold undelivered ops.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Immediate tries each op exactly once.
type Immediate struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

// NewImmediate constructs the single-attempt strategy.
func NewImmediate(d *Dispatcher, logger *slog.Logger, recorder *metrics.Recorder) *Immediate {
	return &Immediate{dispatcher: d, logger: logger, metrics: recorder}
}

// Submit dispatches op once and reports the failure, if any.
func (s *Immediate) Submit(ctx context.Context, op Op) error {
	err := s.dispatcher.Dispatch(ctx, op)
	if err != nil {
		s.metrics.RecordDelivery(string(op.Kind), metrics.OutcomeFailed)
		logging.Warn(logging.FromContext(ctx, s.logger), "sync failed",
			logging.FieldOpKind, op.Kind,
			"op_id", op.ID,
			"error", err,
		)
		return err
	}
	s.metrics.RecordDelivery(string(op.Kind), metrics.OutcomeDelivered)
	return nil
}

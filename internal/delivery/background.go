package delivery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/scoutline/scout-client/internal/logging"
)

// Background runs submissions of an inner strategy on their own goroutines so
// callers never wait on the network. Drain waits for in-flight work.
type Background struct {
	inner  Strategy
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewBackground wraps inner.
func NewBackground(inner Strategy, logger *slog.Logger) *Background {
	return &Background{inner: inner, logger: logger}
}

// Submit starts delivery and returns immediately. The submission outlives
// ctx cancellation but keeps its values.
func (b *Background) Submit(ctx context.Context, op Op) error {
	detached := context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.inner.Submit(detached, op); err != nil {
			logging.Warn(logging.FromContext(detached, b.logger), "background sync failed",
				logging.FieldOpKind, op.Kind,
				"error", err,
			)
		}
	}()
	return nil
}

// Flush waits for in-flight submissions, then flushes the inner strategy when
// it queues.
func (b *Background) Flush(ctx context.Context) error {
	if err := b.Drain(ctx); err != nil {
		return err
	}
	if f, ok := b.inner.(Flusher); ok {
		return f.Flush(ctx)
	}
	return nil
}

// Drain blocks until every submission has finished or ctx is done.
func (b *Background) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

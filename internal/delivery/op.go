// Package delivery carries local changes to remote collaborators on a
// best-effort basis. An Op is a serialisable unit of work; a Strategy decides
// how hard to try (once, with retries, or through a durable outbox).
package delivery

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
)

// Kind names the handler an Op is routed to.
type Kind string

// Op is one pending remote write.
type Op struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"createdAt"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewOp encodes payload into an Op with a sortable unique id.
func NewOp(kind Kind, payload any, now time.Time) (Op, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Op{}, fmt.Errorf("delivery: encode %s payload: %w", kind, err)
	}
	entropyMu.Lock()
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	entropyMu.Unlock()
	if err != nil {
		return Op{}, err
	}
	return Op{ID: id.String(), Kind: kind, Payload: raw, CreatedAt: now.UTC()}, nil
}

// Decode unmarshals the payload into out.
func (o Op) Decode(out any) error {
	if err := json.Unmarshal(o.Payload, out); err != nil {
		return Permanent(fmt.Errorf("delivery: decode %s payload: %w", o.Kind, err))
	}
	return nil
}

// Handler performs the remote side of an Op.
type Handler func(ctx context.Context, op Op) error

// ErrUnknownKind is returned for ops with no registered handler.
var ErrUnknownKind = errors.New("delivery: no handler for kind")

// Dispatcher routes ops to handlers by kind.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
}

// NewDispatcher constructs an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Kind]Handler)}
}

// Register binds h to kind, replacing any previous handler.
func (d *Dispatcher) Register(kind Kind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
}

// Dispatch runs the handler for op.Kind. Unknown kinds fail permanently.
func (d *Dispatcher) Dispatch(ctx context.Context, op Op) error {
	d.mu.RLock()
	h, ok := d.handlers[op.Kind]
	d.mu.RUnlock()
	if !ok {
		return Permanent(fmt.Errorf("%w: %s", ErrUnknownKind, op.Kind))
	}
	return h(ctx, op)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}

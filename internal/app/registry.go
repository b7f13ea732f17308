package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/scoutline/scout-client/internal/delivery"
	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/storage"
)

// DefaultMaxClients bounds a Registry when Options.MaxClients is unset.
const DefaultMaxClients = 1000

// Registry hands out one controller per client, restoring it from storage on
// first use. It keeps at most MaxClients controllers loaded and unloads the
// least recently used one to make room.
type Registry struct {
	provider storage.Provider
	deps     Deps
	opts     Options
	factory  StrategyFactory
	limit    int

	mu          sync.Mutex
	controllers map[string]*registryEntry
	uses        uint64
}

type registryEntry struct {
	c        *Controller
	lastUsed uint64
}

// NewRegistry constructs a registry over provider.
func NewRegistry(provider storage.Provider, deps Deps, opts Options, factory StrategyFactory) *Registry {
	limit := opts.MaxClients
	if limit <= 0 {
		limit = DefaultMaxClients
	}
	return &Registry{
		provider:    provider,
		deps:        deps,
		opts:        opts,
		factory:     factory,
		limit:       limit,
		controllers: make(map[string]*registryEntry),
	}
}

// Get returns the controller for clientID.
func (r *Registry) Get(ctx context.Context, clientID string) (*Controller, error) {
	r.mu.Lock()
	r.uses++
	if e, ok := r.controllers[clientID]; ok {
		e.lastUsed = r.uses
		r.mu.Unlock()
		return e.c, nil
	}
	store, err := r.provider.ForClient(clientID)
	if err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("client %q: %w", clientID, err)
	}
	var evicted []*Controller
	for len(r.controllers) >= r.limit {
		evicted = append(evicted, r.evictLocked())
	}
	c := NewController(clientID, store, r.deps, r.opts, r.factory)
	c.Restore(ctx)
	r.controllers[clientID] = &registryEntry{c: c, lastUsed: r.uses}
	r.mu.Unlock()

	for _, old := range evicted {
		r.unload(ctx, old)
	}
	return c, nil
}

// evictLocked drops the least recently used controller.
func (r *Registry) evictLocked() *Controller {
	var (
		oldestID string
		oldest   *registryEntry
	)
	for id, e := range r.controllers {
		if oldest == nil || e.lastUsed < oldest.lastUsed {
			oldestID, oldest = id, e
		}
	}
	delete(r.controllers, oldestID)
	return oldest.c
}

// unload finishes an evicted controller's pending deliveries. Its state is
// already in storage, so the next Get restores it.
func (r *Registry) unload(ctx context.Context, c *Controller) {
	if d, ok := c.Strategy().(interface{ Drain(context.Context) error }); ok {
		if err := d.Drain(ctx); err != nil {
			logging.Warn(c.log(ctx), "drain on unload failed", "error", err)
		}
	}
	if f, ok := c.Strategy().(delivery.Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			logging.Warn(c.log(ctx), "outbox flush on unload failed", "error", err)
		}
	}
	logging.Info(c.log(ctx), "client unloaded")
}

func (r *Registry) snapshot() []*Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Controller, 0, len(r.controllers))
	for _, e := range r.controllers {
		out = append(out, e.c)
	}
	return out
}

// Flush replays every loaded client's queued ops.
func (r *Registry) Flush(ctx context.Context) error {
	var errs []error
	for _, c := range r.snapshot() {
		f, ok := c.Strategy().(delivery.Flusher)
		if !ok {
			continue
		}
		if err := f.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("client %s: %w", c.ClientID(), err))
		}
	}
	return errors.Join(errs...)
}

// Drain waits for in-flight background deliveries of every loaded client.
func (r *Registry) Drain(ctx context.Context) error {
	var errs []error
	for _, c := range r.snapshot() {
		d, ok := c.Strategy().(interface{ Drain(context.Context) error })
		if !ok {
			continue
		}
		if err := d.Drain(ctx); err != nil {
			errs = append(errs, fmt.Errorf("client %s: %w", c.ClientID(), err))
		}
	}
	return errors.Join(errs...)
}

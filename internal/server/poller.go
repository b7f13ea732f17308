package server

import (
	"context"

	"github.com/scoutline/scout-client/internal/poller"
)

// Poller defines the minimal outbox poller behavior needed by the server.
type Poller interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() poller.Status
}

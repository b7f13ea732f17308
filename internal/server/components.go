package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/scoutline/scout-client/internal/app"
	"github.com/scoutline/scout-client/internal/config"
	"github.com/scoutline/scout-client/internal/delivery"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/metrics"
	"github.com/scoutline/scout-client/internal/providers"
	"github.com/scoutline/scout-client/internal/providers/backend"
	"github.com/scoutline/scout-client/internal/providers/fixture"
	"github.com/scoutline/scout-client/internal/providers/postgres"
	"github.com/scoutline/scout-client/internal/providers/search"
	"github.com/scoutline/scout-client/internal/providers/supabase"
	"github.com/scoutline/scout-client/internal/storage"
)

// Components is everything a client host needs: the controller registry and
// the resources behind it.
type Components struct {
	Registry *app.Registry
	// Outbox is true when remote writes are queued and need periodic flushing.
	Outbox  bool
	closers []io.Closer
}

// Close releases storage and database handles.
func (c *Components) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildComponents wires storage, collaborators and the sync strategy from cfg.
func BuildComponents(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Components, error) {
	comps := &Components{Outbox: cfg.Sync.Strategy == config.SyncOutbox}

	provider, closer, err := buildStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		comps.closers = append(comps.closers, closer)
	}

	deps, closer, err := buildDeps(cfg, logger, recorder)
	if err != nil {
		_ = comps.Close()
		return nil, err
	}
	if closer != nil {
		comps.closers = append(comps.closers, closer)
	}

	opts := app.Options{
		PlayerDefaults:     players.Defaults{Score: cfg.Product.DefaultScore},
		VerificationBypass: cfg.Product.VerificationBypass,
		DemoAccounts:       cfg.Product.DemoAccounts,
		DefaultLanguage:    cfg.Product.DefaultLanguage,
		MaxClients:         cfg.Storage.MaxClients,
	}
	comps.Registry = app.NewRegistry(provider, deps, opts, strategyFactory(cfg.Sync, logger, recorder))
	return comps, nil
}

func buildStorage(cfg config.StorageConfig) (storage.Provider, io.Closer, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		return storage.NewMemoryProvider(), nil, nil
	case config.StorageSQLite:
		path := cfg.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "clients.db")
		}
		p, err := storage.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	default:
		return storage.NewFSProvider(cfg.Path), nil, nil
	}
}

// buildDeps selects the remote collaborator. The fixture backend stands in
// for every upstream so the client runs fully offline.
func buildDeps(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (app.Deps, io.Closer, error) {
	deps := app.Deps{Logger: logger, Metrics: recorder}

	if cfg.Remote.Provider == config.RemoteFixture {
		fx := fixture.New()
		fx.AutoConfirm = cfg.Product.VerificationBypass
		deps.Remote = fx
		deps.Search = providers.NewInstrumentedSearch(fx, logger, recorder)
		deps.Fallback = fx
		deps.Languages = fx
		return deps, nil, nil
	}

	sc := search.NewClient(search.Config{
		BaseURL:  cfg.Search.BaseURL,
		Timeout:  cfg.Search.Timeout,
		Defaults: players.Defaults{Score: cfg.Product.DefaultScore},
	})
	bc := backend.NewClient(backend.Config{
		BaseURL:       cfg.Search.BackendBaseURL,
		AvatarBaseURL: cfg.Search.AvatarBaseURL,
		Timeout:       cfg.Remote.Timeout,
	})
	deps.Search = providers.NewInstrumentedSearch(sc, logger, recorder)
	deps.Fallback = bc
	deps.Languages = bc
	deps.Photos = bc

	switch cfg.Remote.Provider {
	case config.RemoteSupabase:
		client, err := supabase.NewClient(supabase.Config{
			URL:     cfg.Remote.SupabaseURL,
			AnonKey: cfg.Remote.SupabaseAnonKey,
			Timeout: cfg.Remote.Timeout,
		})
		if err != nil {
			return app.Deps{}, nil, err
		}
		deps.Remote = client
		return deps, nil, nil
	case config.RemotePostgres:
		store, err := postgres.Open(postgres.Config{
			DSN:       cfg.Remote.DatabaseURL,
			JWTSecret: cfg.Remote.JWTSecret,
			TokenTTL:  cfg.Remote.TokenTTL,
			Logger:    logger,
		})
		if err != nil {
			return app.Deps{}, nil, err
		}
		deps.Remote = store
		return deps, store, nil
	default:
		return app.Deps{}, nil, fmt.Errorf("unknown remote provider %q", cfg.Remote.Provider)
	}
}

// strategyFactory maps the sync settings onto a per-client delivery strategy.
func strategyFactory(cfg config.SyncConfig, logger *slog.Logger, recorder *metrics.Recorder) app.StrategyFactory {
	return func(d *delivery.Dispatcher, store storage.Store) delivery.Strategy {
		var s delivery.Strategy
		switch cfg.Strategy {
		case config.SyncRetry:
			s = delivery.NewRetrying(d, logger, recorder, cfg.MaxAttempts, cfg.Backoff)
		case config.SyncOutbox:
			s = delivery.NewOutbox(d, store, logger, recorder, cfg.MaxAttempts)
		default:
			s = delivery.NewImmediate(d, logger, recorder)
		}
		if cfg.Background {
			return delivery.NewBackground(s, logger)
		}
		return s
	}
}

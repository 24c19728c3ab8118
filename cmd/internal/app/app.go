// Package app wires the explore server runtime: config, logging, HTTP routes,
// and the device session stack.
//
// It is intentionally small and deterministic to keep behavior predictable.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/indeses-deepak/explore/cmd/internal/device"
	"github.com/indeses-deepak/explore/cmd/internal/deviceapi"
	"github.com/indeses-deepak/explore/cmd/internal/sessiondir"
	"github.com/indeses-deepak/explore/cmd/internal/timeutil"
	"github.com/indeses-deepak/explore/cmd/internal/waclient"
	"github.com/indeses-deepak/explore/cmd/internal/webhook"
	"github.com/indeses-deepak/explore/cmd/security/apikey"
)

// Store is a small app-level lifecycle abstraction.
// It exists to allow DB-backed resources to be closed gracefully.
type Store interface {
	Close(ctx context.Context) error
}

// nopStore is used for in-memory store mode.
type nopStore struct{}

func (nopStore) Close(_ context.Context) error { return nil }

// App is the explore server runtime: it owns HTTP server wiring and the
// device controller's dependencies.
type App struct {
	cfg Config
	log Logger

	store Store

	dbPool    *pgxpool.Pool
	dbEnabled bool

	controller *device.Controller
	devices    *deviceapi.Handler
	keys       *apikey.Verifier
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	clock, err := timeutil.NewClock(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	st, dbPool, dbEnabled, msgStore, err := newStore(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	hooks := webhook.NewNotifier(log, clock, cfg.WebhookURL, cfg.WebhookEnabled, cfg.WebhookTimeout)
	hooks.OnFailure(device.CountWebhookFailure)

	reclaimer := sessiondir.NewReclaimer(log, cfg.ReclaimAttempts, cfg.ReclaimDelay)
	reclaimer.OnRetry(device.CountReclaimRetry)
	teardown := sessiondir.NewTeardown(log, cfg.SessionRoot, reclaimer)

	factory := waclient.NewGateway(log, cfg.AgentURL, cfg.AgentWriteTimeout, cfg.AgentCommandTimeout)

	ctrl := device.NewController(
		log,
		device.Config{
			InitTimeout:       cfg.InitTimeout,
			TeardownTimeout:   cfg.TeardownTimeout,
			CreateAnswerGrace: cfg.CreateAnswerGrace,
			ExecuteEnabled:    cfg.ExecuteEnabled,
			RemoveOnTerminal:  cfg.RemoveOnTerminal,
		},
		clock,
		device.NewRegistry(),
		factory,
		msgStore,
		hooks,
		teardown,
		nil,
	)

	return &App{
		cfg:        cfg,
		log:        log,
		store:      st,
		dbPool:     dbPool,
		dbEnabled:  dbEnabled,
		controller: ctrl,
		devices:    deviceapi.NewHandler(log, ctrl),
		keys:       apikey.NewVerifier(cfg.APIKey, cfg.APIKeyHash),
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()

	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.devices)

	var handler http.Handler = mux
	handler = WithAPIKey(handler, a.keys, a.log)
	handler = WithCORS(handler, a.cfg.CORSOrigin)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 3*time.Minute),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"db_enabled", a.dbEnabled,
		"webhook_enabled", a.cfg.WebhookEnabled,
		"auth_enabled", a.keys.Enabled(),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("server.fail", "err", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("server.stop", "reason", "context_done")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("server.shutdown.fail", "err", err)
			return err
		}
		return nil
	})

	err := g.Wait()

	// Close store resources (pool etc). Live sessions are left alone so their
	// on-disk storage survives a restart and devices can reconnect.
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if cerr := a.store.Close(closeCtx); cerr != nil {
		a.log.Error("store.close.fail", "err", cerr)
	}

	if err != nil {
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStore decides between the Postgres message archive and the in-memory buffer.
func newStore(ctx context.Context, cfg Config, log Logger) (Store, *pgxpool.Pool, bool, device.MessageStore, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return nopStore{}, nil, false, device.NewInMemoryStore(), nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, nil, err
	}

	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, false, nil, err
	}

	log.Info("db.enabled.postgres_store")

	// Ownership model:
	// - app owns pool lifecycle
	// - PostgresStore.Close() is a no-op
	msgStore, err := device.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, false, nil, err
	}

	return dbStore{pool: pool, msgStore: msgStore}, pool, true, msgStore, nil
}

type dbStore struct {
	pool     *pgxpool.Pool
	msgStore device.MessageStore
}

func (s dbStore) Close(_ context.Context) error {
	if s.msgStore != nil {
		_ = s.msgStore.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

package runtime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	app "github.com/astroquiz/astroquiz/internal/app"
	"github.com/astroquiz/astroquiz/internal/app/httpapi"
	"github.com/astroquiz/astroquiz/internal/app/storage"
	"github.com/astroquiz/astroquiz/internal/app/storage/memory"
	"github.com/astroquiz/astroquiz/internal/app/storage/postgres"
	"github.com/astroquiz/astroquiz/internal/app/storage/seed"
	"github.com/astroquiz/astroquiz/internal/config"
	"github.com/astroquiz/astroquiz/internal/middleware"
	"github.com/astroquiz/astroquiz/internal/platform/migrations"
	"github.com/astroquiz/astroquiz/pkg/logger"
)

const limiterCleanupInterval = 5 * time.Minute

// Application owns the HTTP server and the storage backend behind it.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	app        *app.Application
	handler    http.Handler
	httpServer *http.Server
	limiter    *middleware.RateLimiter
	db         *sql.DB
}

// NewApplication wires storage, API and middleware from cfg. With the postgres
// driver it connects, optionally migrates, and seeds an empty catalog.
func NewApplication(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.New(cfg.Logging.Logger()).Component("runtime")
	}

	store, db, err := buildStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure storage: %w", err)
	}

	application, err := app.New(app.FromStore(store), log.Component("app"))
	if err != nil {
		closeDB(db, log)
		return nil, fmt.Errorf("build application: %w", err)
	}

	var opts []httpapi.Option
	if cfg.Server.StaticDir != "" {
		opts = append(opts, httpapi.WithStaticDir(cfg.Server.StaticDir))
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log.Component("ratelimit"))
	var handler http.Handler = httpapi.NewHandler(application, opts...)
	handler = limiter.Handler(handler)
	handler = middleware.NewCORSMiddleware(cfg.CORS.Origins()).Handler(handler)
	handler = middleware.NewTracingMiddleware(log.Component("http")).Handler(handler)

	return &Application{
		cfg:     cfg,
		log:     log,
		app:     application,
		handler: handler,
		limiter: limiter,
		db:      db,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}, nil
}

// App exposes the composed application.
func (a *Application) App() *app.Application {
	return a.app
}

// Handler returns the fully wrapped HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// Run listens on the configured address and serves until ctx is cancelled or
// the server fails.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.httpServer.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or the server fails.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	a.limiter.StartCleanup(cleanupCtx, limiterCleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		a.log.WithFields(map[string]any{
			"addr":    ln.Addr().String(),
			"backend": a.cfg.Database.Driver,
		}).Info("HTTP server listening")
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server and releases the database.
func (a *Application) Shutdown(ctx context.Context) error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := a.httpServer.Shutdown(shutdownCtx)
	closeDB(a.db, a.log)
	a.db = nil
	return err
}

func buildStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.Store, *sql.DB, error) {
	switch cfg.Database.Driver {
	case "", config.DriverMemory:
		log.Info("using in-memory storage; data is lost on restart")
		return memory.New(), nil, nil
	case config.DriverPostgres:
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.MigrateOnStart {
		if err := migrations.Apply(ctx, db); err != nil {
			closeDB(db, log)
			return nil, nil, err
		}
	}

	store := postgres.New(db)
	seeded, err := seed.ApplyIfEmpty(ctx, store, seed.Default(), storage.Timestamp(time.Now()))
	if err != nil {
		closeDB(db, log)
		return nil, nil, fmt.Errorf("seed catalog: %w", err)
	}
	if seeded {
		log.Info("seeded empty database with sample catalog")
	}
	return store, db, nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn not configured")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func closeDB(db *sql.DB, log *logger.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.WithError(err).Warn("error closing database connection")
	}
}

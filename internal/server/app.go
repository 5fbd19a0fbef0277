// Package server assembles the books API from configuration and runs it
// until the context is canceled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/books-catalog-api/internal/api"
	"github.com/JakeFAU/books-catalog-api/internal/auth"
	"github.com/JakeFAU/books-catalog-api/internal/catalog"
	"github.com/JakeFAU/books-catalog-api/internal/clock/system"
	"github.com/JakeFAU/books-catalog-api/internal/config"
	"github.com/JakeFAU/books-catalog-api/internal/id/uuid"
	"github.com/JakeFAU/books-catalog-api/internal/policy/ratelimit"
	"github.com/JakeFAU/books-catalog-api/internal/scraper"
	"github.com/JakeFAU/books-catalog-api/internal/storage/memory"
	"github.com/JakeFAU/books-catalog-api/internal/storage/postgres"
	"github.com/JakeFAU/books-catalog-api/internal/supervisor"
)

const readHeaderTimeout = 5 * time.Second

// App bundles the constructed dependencies for the HTTP service.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	pool       postgres.Pool
	supervisor *supervisor.Supervisor
	api        *api.Server
}

// Build wires stores, auth, the scrape runner, and the HTTP router.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{cfg: cfg, logger: logger}

	clock := system.New()
	ids := uuid.New()

	st, err := app.setupStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    cfg.Auth.JWTSecret,
		Algorithm: cfg.Auth.Algorithm,
		TTL:       cfg.TokenTTL(),
	}, clock, ids)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("token service: %w", err)
	}
	authSvc := auth.NewService(st.users, auth.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, logger.Named("auth"))

	runner, err := app.setupRunner(st.books, clock)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.supervisor = supervisor.New(
		runner,
		memory.NewJobStore(),
		ids,
		clock,
		supervisor.Config{SingleFlight: cfg.Scraping.SingleFlight},
		logger.Named("supervisor"),
	)

	app.api = api.NewServer(api.Deps{
		Auth:        authSvc,
		Verifier:    tokens,
		Scraper:     app.supervisor,
		Catalog:     catalog.NewService(st.books),
		Jobs:        app.supervisor,
		Predictions: catalog.NewPredictionService(st.predictions, clock, ids),
		Limiter: ratelimit.New(ratelimit.Config{
			RPS:   cfg.Server.LoginRPS,
			Burst: cfg.Server.LoginBurst,
		}, clock),
		RequestTimeout: cfg.RequestTimeout(),
	}, logger.Named("api"))

	logger.Info("service assembled",
		zap.String("runner", runner.Name()),
		zap.Bool("postgres", app.pool != nil),
		zap.Bool("single_flight", cfg.Scraping.SingleFlight),
	)
	return app, nil
}

type stores struct {
	users       auth.CredentialStore
	books       catalog.BookStore
	predictions catalog.PredictionStore
}

func (a *App) setupStores(ctx context.Context) (stores, error) {
	if a.cfg.DB.DSN == "" {
		a.logger.Warn("db.dsn not set; users, books and predictions are kept in memory")
		return stores{
			users:       memory.NewUserStore(),
			books:       memory.NewBookStore(),
			predictions: memory.NewPredictionStore(),
		}, nil
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:      a.cfg.DB.DSN,
		MaxConns: a.cfg.DB.MaxConns,
	})
	if err != nil {
		return stores{}, err
	}
	a.pool = pool

	users, err := postgres.NewUserStore(pool, a.cfg.DB.UsersTable)
	if err != nil {
		return stores{}, err
	}
	if err := users.EnsureSchema(ctx); err != nil {
		return stores{}, fmt.Errorf("ensure users schema: %w", err)
	}
	books, err := postgres.NewBookStore(pool, a.cfg.DB.BooksTable)
	if err != nil {
		return stores{}, err
	}
	if err := books.EnsureSchema(ctx); err != nil {
		return stores{}, fmt.Errorf("ensure books schema: %w", err)
	}
	predictions, err := postgres.NewPredictionStore(pool, a.cfg.DB.PredictionsTable)
	if err != nil {
		return stores{}, err
	}
	if err := predictions.EnsureSchema(ctx); err != nil {
		return stores{}, fmt.Errorf("ensure predictions schema: %w", err)
	}
	return stores{users: users, books: books, predictions: predictions}, nil
}

func (a *App) setupRunner(books catalog.BookStore, clock catalog.Clock) (supervisor.Runner, error) {
	sc := a.cfg.Scraping
	switch sc.Runner {
	case config.RunnerExec:
		runner, err := scraper.NewExecRunner(scraper.ExecConfig{
			Command: sc.Command,
			Args:    sc.Args,
		}, a.logger.Named("runner"))
		if err != nil {
			return nil, fmt.Errorf("exec runner: %w", err)
		}
		return runner, nil
	case config.RunnerColly:
		return scraper.NewCollyRunner(scraper.CollyConfig{
			StartURL:       sc.StartURL,
			UserAgent:      sc.UserAgent,
			MaxPages:       sc.MaxPages,
			Parallelism:    sc.Parallelism,
			RequestTimeout: a.cfg.ScrapeRequestTimeout(),
			Delay:          a.cfg.ScrapeDelay(),
			RespectRobots:  sc.RespectRobots,
		}, books, clock, a.logger.Named("runner")), nil
	default:
		return nil, fmt.Errorf("unknown scrape runner %q", sc.Runner)
	}
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.api.Handler()
}

// Run listens on the configured port and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	addr := ":" + strconv.Itoa(a.cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then drains HTTP
// requests and running scrape jobs within the shutdown timeout.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			a.stopJobs()
			return fmt.Errorf("http server: %w", err)
		}
	}

	a.logger.Info("shutting down", zap.Int("running_jobs", len(a.supervisor.Running())))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.supervisor.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("scrape jobs: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) stopJobs() {
	a.logger.Info("stopping scrape jobs", zap.Int("running_jobs", len(a.supervisor.Running())))
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()
	if err := a.supervisor.Shutdown(ctx); err != nil {
		a.logger.Warn("scrape jobs did not stop cleanly", zap.Error(err))
	}
}

// Close releases the database pool.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

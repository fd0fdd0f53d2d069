package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stackmeter/internal/config"
	"github.com/GlebRadaev/stackmeter/internal/handlers"
	"github.com/GlebRadaev/stackmeter/internal/pg"
	"github.com/GlebRadaev/stackmeter/internal/reconcile"
	"github.com/GlebRadaev/stackmeter/internal/repo"
	memoryrepo "github.com/GlebRadaev/stackmeter/internal/repo/memory-repo"
	"github.com/GlebRadaev/stackmeter/internal/service"
	"github.com/GlebRadaev/stackmeter/pkg/auth"
	"github.com/GlebRadaev/stackmeter/pkg/clients"
	"github.com/GlebRadaev/stackmeter/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg  *config.Config
	api  *handlers.Handlers
	srv  *service.Services
	repo *repo.Repositories
	rec  *reconcile.Service
	pool *pgxpool.Pool
	addr net.Addr

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.start(ctx, config.New())
}

func (a *Application) start(ctx context.Context, cfg *config.Config) error {
	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	switch cfg.Storage {
	case config.StorageMemory:
		zap.L().Warn("using in-memory storage, data is lost on restart")
		a.repo = repo.NewMemory(memoryrepo.NewStore())
	default:
		pool, err := getPgxpool(ctx, cfg)
		if err != nil {
			zap.L().Error("build pgx pool failed: ", zap.Error(err))
			return fmt.Errorf("can't build pgx pool: %w", err)
		}
		if err := pg.RunMigrations(pool); err != nil {
			zap.L().Error("migrations failed: ", zap.Error(err))
			pool.Close()
			return fmt.Errorf("can't run migrations: %w", err)
		}
		a.pool = pool
		a.repo = repo.New(pg.New(pool), pg.NewTXManager(pool))
	}

	billing := clients.NewStripeClient(cfg.StripeSecretKey)
	completion := clients.NewCompletionClient(clients.NewHTTPClient(cfg.CompletionTimeout),
		cfg.CompletionURL, cfg.CompletionAPIKey, cfg.CompletionModel)

	a.srv, err = service.New(cfg, a.repo, billing, completion)
	if err != nil {
		return fmt.Errorf("can't build services: %w", err)
	}
	a.api = handlers.New(a.srv, auth.NewJWTService(cfg.JWTSecret), cfg.AdminToken)
	a.rec = reconcile.New(cfg, a.repo.LedgerRepo, a.repo.EventRepo)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startReconciler(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	listener, err := net.Listen("tcp", a.cfg.Address)
	if err != nil {
		return err
	}
	a.addr = listener.Addr()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server", zap.String("address", a.addr.String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startReconciler(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.rec.Start(ctx)
	}()
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	if a.pool != nil {
		a.pool.Close()
	}
	return appErr
}

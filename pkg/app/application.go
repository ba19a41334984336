package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/sync/errgroup"

	"ticketing/pkg/config"
	"ticketing/pkg/contracts"
	"ticketing/pkg/health"
	"ticketing/pkg/metrics"
	"ticketing/pkg/middleware"
)

// BackgroundFunc runs until ctx is cancelled. Returning nil before that
// still stops the application.
type BackgroundFunc func(ctx context.Context) error

type backgroundTask struct {
	name string
	run  BackgroundFunc
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	healthHandler    http.Handler
	appHTTPHandler   http.Handler
	background       []backgroundTask
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SetApp wires the HTTP surface. appHandler may be nil for processes that
// only expose health and metrics endpoints.
func (a *Application) SetApp(appHandler contracts.Handler, checks ...health.Check) {
	a.setHealthHandler(checks)
	if appHandler != nil {
		a.setAppHandler(appHandler)
	}
	a.setAppServer()
}

// AddBackground registers a long-running task started by Run.
func (a *Application) AddBackground(name string, run BackgroundFunc) {
	a.background = append(a.background, backgroundTask{name: name, run: run})
}

func (a *Application) setHealthHandler(checks []health.Check) {
	healthRouter := httprouter.New()
	health.NewHealthHandler(a.cfg.Log, checks...).RegisterRoutes(healthRouter)
	healthRouter.Handler(http.MethodGet, "/metrics", metrics.Handler())

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health and metrics endpoints configured with minimal middleware (Recovery only)")
}

func (a *Application) setAppHandler(appHandler contracts.Handler) {
	appRouter := httprouter.New()
	appHandler.RegisterRoutes(appRouter)

	var appHTTPHandler http.Handler = appRouter
	if a.cfg.IdempotencyTTL > 0 {
		a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
		appHTTPHandler = middleware.Idempotency(a.idempotencyStore, a.cfg.Log)(appHTTPHandler)
	}
	appHTTPHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHTTPHandler)
	appHTTPHandler = middleware.ContentTypeValidation(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(appHTTPHandler)
	appHTTPHandler = middleware.CORS(a.cfg.CORSAllowedOrigins)(appHTTPHandler)
	appHTTPHandler = middleware.HTTPMetrics()(appHTTPHandler)
	appHTTPHandler = middleware.RequestLogging(a.cfg.Log)(appHTTPHandler)
	appHTTPHandler = middleware.Recovery(a.cfg.Log)(appHTTPHandler)
	a.appHTTPHandler = appHTTPHandler
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/metrics", a.healthHandler)
	if a.appHTTPHandler != nil {
		mux.Handle("/", a.appHTTPHandler)
	}

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

// Handler exposes the routed HTTP handler for tests.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP and runs the background tasks until SIGINT/SIGTERM, a
// server failure or a task exit. Background tasks are cancelled and awaited
// before the HTTP server is shut down.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.run(ctx)
}

func (a *Application) run(parent context.Context) error {
	g, ctx := errgroup.WithContext(parent)

	g.Go(func() error {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	tasksDone := make(chan struct{})
	tasks, tasksCtx := errgroup.WithContext(ctx)
	for _, task := range a.background {
		tasks.Go(func() error {
			a.cfg.Log.Info("Starting background task", "task", task.name)
			err := task.run(tasksCtx)
			if err != nil {
				return fmt.Errorf("%s: %w", task.name, err)
			}
			a.cfg.Log.Info("Background task stopped", "task", task.name)
			return errStopped
		})
	}

	g.Go(func() error {
		err := tasks.Wait()
		close(tasksDone)
		if errors.Is(err, errStopped) {
			return errStopped
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		if parent.Err() != nil {
			a.cfg.Log.Info("Shutdown signal received")
		}
		if len(a.background) > 0 {
			<-tasksDone
		}
		a.gracefulShutdown()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, errStopped) {
		return nil
	}
	return err
}

var errStopped = errors.New("background task stopped")

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	if a.idempotencyStore != nil {
		a.idempotencyStore.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}

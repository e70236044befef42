package server

import (
	"context"
	"errors"
	"io"
	"os/signal"
	"syscall"

	domrepo "MarketCoach/internal/domain/repository"
	"MarketCoach/pkg/cache"
	"MarketCoach/pkg/config"
	xhttp "MarketCoach/pkg/http"
	applogger "MarketCoach/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	cache      cache.Service
	publisher  domrepo.Publisher
}

// New creates a new App instance with all dependencies. publisher may be nil.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	c cache.Service,
	publisher domrepo.Publisher,
) *App {
	return &App{
		cfg:        cfg,
		log:        l,
		httpServer: srv,
		cache:      c,
		publisher:  publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext serves until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("market coach started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.String("classifier", a.cfg.Regime.Classifier),
		applogger.Bool("kafka", a.publisher != nil))

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown(context.WithoutCancel(ctx))
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	var errs []error

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	// Flush aggregated error logs while the producer is still open.
	a.log.RemoveCollector()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if closer, ok := a.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}

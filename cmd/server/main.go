package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/events"
	"finance-tracker/internal/handlers"
	"finance-tracker/internal/log"
	"finance-tracker/internal/services"
	"finance-tracker/internal/storage"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(loggerConfig(cfg))
	log.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
}

// run wires the application and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	logger.WithComponent(log.ComponentStorage).Info("Database ready", "path", cfg.DBPath)

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	authn := services.NewAuthenticator(db, services.AuthConfig{
		SessionDuration: cfg.SessionDuration,
		Secret:          []byte(cfg.SessionSecret),
		BcryptCost:      cfg.BcryptCost,
	}, logger, nil)

	if _, err := authn.PurgeExpired(ctx); err != nil {
		return fmt.Errorf("purge expired sessions: %w", err)
	}
	if cfg.BootstrapEnabled() {
		created, err := authn.EnsureBootstrapUser(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			logger.Info("Created bootstrap user", "email", cfg.AdminEmail)
		}
	}

	h := handlers.NewHandlers(handlers.Deps{
		DB:           db,
		Auth:         authn,
		Ledger:       services.NewLedger(db, publisher, logger),
		Budgets:      services.NewRegister(db, publisher, logger, nil),
		Aggregator:   services.NewAggregator(db, logger),
		SecureCookie: cfg.SecureCookie,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           setupRouter(h, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", log.FieldOperation, log.OpStartup, "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Server shutting down", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// loggerConfig applies the configured level and format over the logging
// defaults.
func loggerConfig(cfg *config.Config) log.Config {
	lc := log.DefaultConfig()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		lc.Level = level
	}
	if cfg.LogFormat != "" {
		lc.Format = cfg.LogFormat
	}
	return lc
}

// setupRouter wraps the API routes with request logging.
func setupRouter(h *handlers.Handlers, logger *log.Logger) http.Handler {
	return log.Middleware(logger.WithComponent(log.ComponentHTTP))(h.Routes())
}

// newPublisher connects to AMQP when configured. A broker that cannot be
// reached disables notifications rather than blocking startup.
func newPublisher(cfg *config.Config, logger *log.Logger) (events.Publisher, func()) {
	logger = logger.WithComponent(log.ComponentAMQP)
	if cfg.AMQPURL == "" {
		return events.NopPublisher{}, func() {}
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Warn("AMQP unavailable, change notifications disabled", log.FieldError, err)
		return events.NopPublisher{}, func() {}
	}
	logger.Info("Publishing change notifications", "exchange", cfg.AMQPExchange)
	return p, func() { _ = p.Close() }
}

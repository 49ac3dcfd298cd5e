package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"addressfill_backend/internal/forms"
	apphttp "addressfill_backend/internal/http"
	"addressfill_backend/internal/http/router"
	"addressfill_backend/internal/lookup"
	"addressfill_backend/platform/config"
	"addressfill_backend/platform/events"
	"addressfill_backend/platform/logger"
	"addressfill_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	lookupModule := lookup.NewModule(cfg, val, log)
	defer func() {
		if err := lookupModule.Close(); err != nil {
			log.Warn("closing lookup module", "error", err)
		}
	}()
	if cfg.IsCacheEnabled() {
		log.Info("lookup cache enabled", "addr", cfg.GetRedisAddr(), "ttl", cfg.GetLookupCacheTTL())
	} else {
		log.Info("lookup cache disabled, queries go straight upstream")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	formsModule := forms.NewModule(cfg, lookupModule.Service(), eventBus, val, log)
	formsModule.RegisterHandlers(eventBus)
	defer formsModule.Close()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			formsModule,
			lookupModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

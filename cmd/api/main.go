// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/app"
	"github.com/Marga-Ghale/sanchari-backend/internal/config"
)

func main() {
	// ============================================
	// Load configuration
	// ============================================
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Invalid configuration")
	}

	// ============================================
	// Logger
	// ============================================
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ============================================
	// Store, mirrors, sessions and services
	// ============================================
	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to start backend")
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to start background workers")
	}
	log.Info().Msg("✨ Mirrors, hub and scheduler running")

	// ============================================
	// HTTP server
	// ============================================
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     a.Router,
		ReadTimeout: 15 * time.Second,
		// The websocket feed holds connections open; its pumps set their own
		// deadlines.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Msgf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

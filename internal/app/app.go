// Package app wires the store, mirrors, sessions, services and transports
// into one runnable backend.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/api/handlers"
	"github.com/Marga-Ghale/sanchari-backend/internal/config"
	"github.com/Marga-Ghale/sanchari-backend/internal/cron"
	"github.com/Marga-Ghale/sanchari-backend/internal/db"
	"github.com/Marga-Ghale/sanchari-backend/internal/generation"
	"github.com/Marga-Ghale/sanchari-backend/internal/mirror"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
	"github.com/Marga-Ghale/sanchari-backend/internal/seed"
	"github.com/Marga-Ghale/sanchari-backend/internal/service"
	"github.com/Marga-Ghale/sanchari-backend/internal/session"
	"github.com/Marga-Ghale/sanchari-backend/internal/socket"
)

// sessionIdle is how long an unused session stays in memory.
const sessionIdle = 24 * time.Hour

// Backends are the external pieces an App runs on.
type Backends struct {
	Store repository.Store
	Keys  session.KeyStore
	Model generation.TextModel
}

type App struct {
	Config      *config.Config
	Repos       *repository.Repositories
	Mirrors     *mirror.Mirrors
	Sessions    *session.Manager
	Services    *service.Services
	Hub         *socket.Hub
	Broadcaster *socket.Broadcaster
	Scheduler   *cron.Scheduler
	Router      *gin.Engine

	status  map[string]string
	closers []func()
	cancel  context.CancelFunc
}

// Open connects the configured backends: MongoDB when MONGODB_URI is set,
// Redis when REDIS_URL is set and Gemini when GEMINI_API_KEY is set. Each
// falls back to an in-process implementation.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	var (
		b       Backends
		closers []func()
		status  = map[string]string{}
	)

	if cfg.MongoURI != "" {
		mdb, err := db.NewMongoDB(cfg.MongoURI, cfg.MongoName)
		if err != nil {
			return nil, err
		}
		closers = append(closers, mdb.Close)
		b.Store = repository.NewMongoStore(mdb.Database)
		status["store"] = "mongodb"
	} else {
		log.Warn().Msg("⚠️  MONGODB_URI not set, using in-memory store")
		b.Store = repository.NewMemoryStore()
		status["store"] = "memory"
	}

	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisDB(cfg.RedisURL, time.Duration(cfg.JWTExpiry)*time.Hour)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Failed to connect to Redis, keeping session records in memory")
			b.Keys = session.NewMemoryKeyStore()
			status["sessions"] = "memory"
		} else {
			closers = append(closers, rdb.Close)
			b.Keys = rdb
			status["sessions"] = "redis"
		}
	} else {
		b.Keys = session.NewMemoryKeyStore()
		status["sessions"] = "memory"
	}

	if cfg.GeminiAPIKey != "" {
		model, err := generation.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Gemini unavailable, generation will return fallbacks")
			status["generation"] = "disabled"
		} else {
			b.Model = model
			status["generation"] = cfg.GeminiModel
		}
	} else {
		status["generation"] = "disabled"
	}

	a, err := New(ctx, cfg, b)
	if err != nil {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		return nil, err
	}
	a.closers = append(a.closers, closers...)
	for k, v := range status {
		a.status[k] = v
	}
	return a, nil
}

// New builds an App on the given backends. It seeds (when configured) and
// loads the mirrors, but serves nothing until Start.
func New(ctx context.Context, cfg *config.Config, b Backends) (*App, error) {
	repos := repository.NewRepositories(b.Store)

	if cfg.SeedOnStart {
		if _, err := seed.SeedData(ctx, repos); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	mirrors := mirror.NewMirrors(b.Store)
	if err := mirrors.Start(ctx); err != nil {
		return nil, fmt.Errorf("start mirrors: %w", err)
	}

	sessions := session.NewManager(mirrors, b.Keys, session.Credentials{
		AdminSecret:     cfg.AdminSecret,
		OverrideEnabled: cfg.OverrideEnabled(),
		OverrideSecret:  cfg.LoginOverrideSecret,
	}, cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Hour)

	services := service.NewServices(&service.ServiceDeps{
		Config:    cfg,
		Repos:     repos,
		Mirrors:   mirrors,
		Generator: generation.NewGenerator(b.Model),
	})

	hub := socket.NewHub()
	broadcaster := socket.NewBroadcaster(hub, mirrors, services.Event, services.Admin)

	a := &App{
		Config:      cfg,
		Repos:       repos,
		Mirrors:     mirrors,
		Sessions:    sessions,
		Services:    services,
		Hub:         hub,
		Broadcaster: broadcaster,
		Scheduler:   cron.NewScheduler(services, sessions, mirrors, broadcaster, sessionIdle),
		status:      map[string]string{},
	}
	a.Router = NewRouter(cfg, a.health,
		handlers.NewHandlers(services, sessions, broadcaster),
		sessions,
		socket.NewHandler(hub, sessions, cfg.AllowedOrigins),
	)
	a.closers = append(a.closers, mirrors.Close)
	return a, nil
}

// Start runs the hub, snapshot push and scheduled jobs.
func (a *App) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	go a.Hub.Run(ctx)

	if err := a.Broadcaster.Start(ctx); err != nil {
		cancel()
		return fmt.Errorf("start broadcaster: %w", err)
	}
	if err := a.Scheduler.Start(); err != nil {
		a.Broadcaster.Stop()
		cancel()
		return fmt.Errorf("start scheduler: %w", err)
	}
	return nil
}

// Close stops everything Start and Open started, in reverse order.
func (a *App) Close() {
	if a.cancel != nil {
		a.Scheduler.Stop()
		a.Broadcaster.Stop()
		a.cancel()
	}
	for _, c := range a.closers {
		c()
	}
	log.Info().Msg("[App] Shut down")
}

func (a *App) health() gin.H {
	mirrors := gin.H{}
	healthy := true
	for name, err := range a.Mirrors.Health() {
		if err != nil {
			mirrors[name] = err.Error()
			healthy = false
			continue
		}
		mirrors[name] = "live"
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	h := gin.H{
		"status":     status,
		"timestamp":  time.Now(),
		"mirrors":    mirrors,
		"sessions":   a.Sessions.Count(),
		"ws_clients": a.Hub.GetConnectedClientsCount(),
	}
	for k, v := range a.status {
		h[k] = v
	}
	return h
}

package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/service"
)

// SessionPruner drops idle sessions and reports their IDs.
type SessionPruner interface {
	Prune(maxIdle time.Duration) []string
}

// HealthSource maps each mirror to its watch error.
type HealthSource interface {
	Health() map[string]error
}

// StaleNotifier tells live clients a mirror stopped updating.
type StaleNotifier interface {
	BroadcastStale(collection string, err error)
}

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	services *service.Services
	sessions SessionPruner
	health   HealthSource
	notifier StaleNotifier
	idle     time.Duration
	now      func() time.Time

	// reported keeps one stale notice per failure.
	reported map[string]string
}

// NewScheduler creates a new scheduler. notifier may be nil.
func NewScheduler(services *service.Services, sessions SessionPruner, health HealthSource, notifier StaleNotifier, sessionIdle time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		services: services,
		sessions: sessions,
		health:   health,
		notifier: notifier,
		idle:     sessionIdle,
		now:      time.Now,
		reported: make(map[string]string),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	jobs := []struct {
		spec string
		name string
		fn   func()
	}{
		{"0 * * * *", "complete past events", s.completePastEvents},
		{"*/5 * * * *", "mirror health", s.checkMirrorHealth},
		{"*/15 * * * *", "session prune", s.pruneSessions},
	}
	for _, j := range jobs {
		fn := j.fn
		name := j.name
		if _, err := s.cron.AddFunc(j.spec, func() {
			log.Debug().Msgf("[Cron] Running %s...", name)
			fn()
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	log.Info().Msg("[Cron] Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("[Cron] Scheduler stopped")
}

// completePastEvents moves published events whose date has passed to
// completed.
func (s *Scheduler) completePastEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.services.Event.CompletePastEvents(ctx, s.now())
	if err != nil {
		log.Error().Err(err).Msg("[Cron] Error completing past events")
	}
	if n > 0 {
		log.Info().Msgf("[Cron] ✅ Completed %d past events", n)
	}
}

// checkMirrorHealth logs each terminated mirror watch and notifies clients
// once per distinct failure.
func (s *Scheduler) checkMirrorHealth() {
	for name, err := range s.health.Health() {
		if err == nil {
			delete(s.reported, name)
			continue
		}
		log.Warn().Err(err).Msgf("[Cron] ⚠️ Mirror %s is stale", name)
		if s.reported[name] == err.Error() {
			continue
		}
		s.reported[name] = err.Error()
		if s.notifier != nil {
			s.notifier.BroadcastStale(name, err)
		}
	}
}

// pruneSessions drops idle sessions and their pending registrations.
func (s *Scheduler) pruneSessions() {
	dropped := s.sessions.Prune(s.idle)
	if len(dropped) == 0 {
		return
	}
	s.services.Registration.Forget(dropped...)
	log.Info().Msgf("[Cron] 🧹 Pruned %d idle sessions", len(dropped))
}

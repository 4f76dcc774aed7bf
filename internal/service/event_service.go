package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/mirror"
	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

// ============================================
// Event Service
// ============================================

type EventService interface {
	Dashboard(member *models.Member) models.DashboardResponse
	PublishedEvents() []models.EventCardResponse
	Create(ctx context.Context, req *models.CreateEventRequest) (*models.TravelEvent, error)
	UpdateStatus(ctx context.Context, id, status string) error
	CompletePastEvents(ctx context.Context, now time.Time) (int, error)
}

type eventService struct {
	eventRepo repository.EventRepository
	mirrors   *mirror.Mirrors
}

func NewEventService(eventRepo repository.EventRepository, mirrors *mirror.Mirrors) EventService {
	return &eventService{eventRepo: eventRepo, mirrors: mirrors}
}

// Dashboard greets the member by first name, or "Admin" without one.
func (s *eventService) Dashboard(member *models.Member) models.DashboardResponse {
	greeting := "Admin"
	if member != nil {
		greeting = member.FirstName()
	}
	return models.DashboardResponse{
		Greeting: greeting,
		Events:   s.PublishedEvents(),
	}
}

// PublishedEvents lists published events with remaining slots computed from
// the current registrations snapshot.
func (s *eventService) PublishedEvents() []models.EventCardResponse {
	events := s.mirrors.Events.Snapshot()
	regs := s.mirrors.Registrations.Snapshot()

	cards := make([]models.EventCardResponse, 0, len(events))
	for _, ev := range events {
		if ev.Status != types.EventPublished {
			continue
		}
		cards = append(cards, models.EventCardResponse{
			TravelEvent:    ev,
			Registered:     models.CountRegistrations(regs, ev.ID),
			RemainingSlots: models.RemainingSlots(ev, regs),
		})
	}
	return cards
}

func (s *eventService) Create(ctx context.Context, req *models.CreateEventRequest) (*models.TravelEvent, error) {
	status := req.Status
	if status == "" {
		status = types.EventDraft
	}
	if !types.IsValidEventStatus(status) {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}

	event := &models.TravelEvent{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Capacity:    req.Capacity,
		Deadline:    req.Deadline,
		Status:      status,
		Image:       req.Image,
	}
	if _, ok := event.ParsedDate(); !ok {
		return nil, fmt.Errorf("%w: date %q", ErrInvalidInput, req.Date)
	}
	if req.Deadline != "" {
		if _, ok := event.ParsedDeadline(); !ok {
			return nil, fmt.Errorf("%w: deadline %q", ErrInvalidInput, req.Deadline)
		}
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateStatus moves an event along draft -> published -> completed.
func (s *eventService) UpdateStatus(ctx context.Context, id, status string) error {
	event, ok := s.mirrors.FindEvent(id)
	if !ok {
		return ErrNotFound
	}
	if !types.CanTransitionEvent(event.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, event.Status, status)
	}
	return s.eventRepo.UpdateStatus(ctx, id, status)
}

// CompletePastEvents completes published events dated before now's day.
func (s *eventService) CompletePastEvents(ctx context.Context, now time.Time) (int, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	completed := 0
	for _, ev := range s.mirrors.Events.Snapshot() {
		if ev.Status != types.EventPublished {
			continue
		}
		date, ok := ev.ParsedDate()
		if !ok || !date.Before(today) {
			continue
		}
		if err := s.eventRepo.UpdateStatus(ctx, ev.ID, types.EventCompleted); err != nil {
			return completed, fmt.Errorf("complete event %s: %w", ev.ID, err)
		}
		log.Info().Str("event", ev.ID).Msgf("[Events] %s marked completed", ev.Title)
		completed++
	}
	return completed, nil
}

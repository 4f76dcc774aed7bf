package service

import (
	"context"
	"sync"

	"github.com/Marga-Ghale/sanchari-backend/internal/mirror"
	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/registration"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

// ============================================
// Registration Service
// ============================================

// Client is a session as seen by the registration flow.
type Client interface {
	ID() string
	CurrentMember() (models.Member, bool)
}

// RegistrationService keeps one join workflow per client session.
type RegistrationService interface {
	RequestJoin(client Client, eventID string) error
	Cancel(client Client)
	Confirm(ctx context.Context, client Client, details registration.Details) (models.Registration, error)
	State(client Client) registration.State
	Forget(sessionIDs ...string)
}

type registrationService struct {
	regRepo repository.RegistrationRepository
	mirrors *mirror.Mirrors

	mu        sync.Mutex
	workflows map[string]*registration.Workflow
}

func NewRegistrationService(regRepo repository.RegistrationRepository, mirrors *mirror.Mirrors) RegistrationService {
	return &registrationService{
		regRepo:   regRepo,
		mirrors:   mirrors,
		workflows: make(map[string]*registration.Workflow),
	}
}

func (s *registrationService) workflow(client Client) *registration.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[client.ID()]
	if !ok {
		w = registration.NewWorkflow(s.regRepo)
		s.workflows[client.ID()] = w
	}
	return w
}

// RequestJoin parks a published event from the events mirror.
func (s *registrationService) RequestJoin(client Client, eventID string) error {
	event, ok := s.mirrors.FindEvent(eventID)
	if !ok {
		return ErrNotFound
	}
	if event.Status != types.EventPublished {
		return ErrEventNotOpen
	}
	return s.workflow(client).RequestJoin(client, event)
}

func (s *registrationService) Cancel(client Client) {
	s.workflow(client).Cancel()
}

func (s *registrationService) Confirm(ctx context.Context, client Client, details registration.Details) (models.Registration, error) {
	return s.workflow(client).Confirm(ctx, client, details)
}

func (s *registrationService) State(client Client) registration.State {
	return s.workflow(client).State()
}

// Forget drops the workflows of sessions that no longer exist.
func (s *registrationService) Forget(sessionIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sessionIDs {
		delete(s.workflows, id)
	}
}

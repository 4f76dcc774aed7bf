package service

import (
	"errors"

	"github.com/Marga-Ghale/sanchari-backend/internal/config"
	"github.com/Marga-Ghale/sanchari-backend/internal/generation"
	"github.com/Marga-Ghale/sanchari-backend/internal/mirror"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid event status transition")
	ErrEventNotOpen      = errors.New("event is not open for registration")
	ErrNotSignedIn       = errors.New("no member is signed in")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Event        EventService
	Profile      ProfileService
	Admin        AdminService
	Minutes      MinutesService
	Registration RegistrationService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config    *config.Config
	Repos     *repository.Repositories
	Mirrors   *mirror.Mirrors
	Generator *generation.Generator
}

func NewServices(deps *ServiceDeps) *Services {
	return &Services{
		Event:        NewEventService(deps.Repos.EventRepo, deps.Mirrors),
		Profile:      NewProfileService(deps.Repos.MemberRepo),
		Admin:        NewAdminService(deps.Repos.MemberRepo, deps.Mirrors),
		Minutes:      NewMinutesService(deps.Repos.MinutesRepo, deps.Mirrors, deps.Generator),
		Registration: NewRegistrationService(deps.Repos.RegistrationRepo, deps.Mirrors),
	}
}

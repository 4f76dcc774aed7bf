package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/registration"
	"github.com/Marga-Ghale/sanchari-backend/internal/service"
	"github.com/Marga-Ghale/sanchari-backend/internal/session"
)

// SessionCreator starts new sessions.
type SessionCreator interface {
	Create() (*session.Session, string, error)
}

// SessionNotifier pushes a session's new state to its live connections.
type SessionNotifier interface {
	NotifySession(sessionID string, state models.SessionResponse)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Session      *SessionHandler
	Event        *EventHandler
	Registration *RegistrationHandler
	Profile      *ProfileHandler
	Admin        *AdminHandler
}

// NewHandlers creates all handlers. notifier may be nil.
func NewHandlers(services *service.Services, sessions SessionCreator, notifier SessionNotifier) *Handlers {
	return &Handlers{
		Session:      &SessionHandler{sessions: sessions, notifier: notifier},
		Event:        &EventHandler{eventService: services.Event},
		Registration: &RegistrationHandler{registrationService: services.Registration},
		Profile:      &ProfileHandler{profileService: services.Profile, notifier: notifier},
		Admin: &AdminHandler{
			adminService:   services.Admin,
			eventService:   services.Event,
			minutesService: services.Minutes,
		},
	}
}

// ============================================
// Response Mappers
// ============================================

func toSessionResponse(v session.View) models.SessionResponse {
	resp := models.SessionResponse{
		Role:          v.Role,
		ActiveTab:     v.ActiveTab,
		Authorized:    v.Authorized,
		AdminUnlocked: v.AdminUnlocked,
	}
	if v.CurrentMember != nil {
		m := models.ToMemberResponse(*v.CurrentMember)
		resp.CurrentMember = &m
	}
	return resp
}

func toPendingResponse(st registration.State) models.PendingRegistrationResponse {
	resp := models.PendingRegistrationResponse{
		Status: string(st.Status),
		Event:  st.Event,
	}
	if st.LastError != nil {
		resp.LastError = st.LastError.Error()
	}
	return resp
}

func notify(n SessionNotifier, sess *session.Session) {
	if n != nil {
		n.NotifySession(sess.ID(), toSessionResponse(sess.State()))
	}
}

// ============================================
// Error Mapping
// ============================================

// respondError maps a service error to its HTTP status. Authentication
// failures share one message.
func respondError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, session.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "Invalid admin secret"
	case errors.Is(err, session.ErrInvalidRole),
		errors.Is(err, session.ErrInvalidTab):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, session.ErrTabNotAllowed):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrNotSignedIn),
		errors.Is(err, registration.ErrNoCurrentMember):
		status, msg = http.StatusUnauthorized, "Sign in to continue"
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, registration.ErrUnknownFamilyMember):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrEventNotOpen),
		errors.Is(err, registration.ErrNothingPending):
		status, msg = http.StatusConflict, err.Error()
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msgf("❌ [API] %s %s", c.Request.Method, c.Request.URL.Path)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": msg})
}

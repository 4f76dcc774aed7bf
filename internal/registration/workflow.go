package registration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
)

var (
	ErrNoCurrentMember     = errors.New("no member is signed in")
	ErrNothingPending      = errors.New("no registration is awaiting confirmation")
	ErrUnknownFamilyMember = errors.New("attending family member does not belong to the signed-in member")
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending_confirmation"
)

// MemberSource yields the signed-in member. A session satisfies it. It is
// passed on every call so the workflow always reads the caller's current
// session.
type MemberSource interface {
	CurrentMember() (models.Member, bool)
}

// Details are what the member fills in on the confirmation overlay.
type Details struct {
	AttendingFamilyIDs []string
	SpecialRequests    string
}

type State struct {
	Status    Status
	Event     *models.TravelEvent
	LastError error
}

// Workflow is the two-step join flow of one client: RequestJoin parks an
// event, then Cancel drops it or Confirm writes exactly one Registration.
// It performs no capacity check.
type Workflow struct {
	repo  repository.RegistrationRepository
	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	pending *models.TravelEvent
	lastErr error
}

func NewWorkflow(repo repository.RegistrationRepository) *Workflow {
	return &Workflow{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// RequestJoin parks event for confirmation, replacing any event already
// parked. Without a signed-in member nothing changes.
func (w *Workflow) RequestJoin(members MemberSource, event models.TravelEvent) error {
	if _, ok := members.CurrentMember(); !ok {
		return ErrNoCurrentMember
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = &event
	w.lastErr = nil
	return nil
}

// Cancel returns to idle. It never touches the store.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = nil
	w.lastErr = nil
}

// Confirm writes the parked registration for the member members reports and
// returns to idle. A failed write deliberately does not clear the parked
// event: it stays pending, the error is kept in State and Confirm may be
// called again without a second RequestJoin.
func (w *Workflow) Confirm(ctx context.Context, members MemberSource, details Details) (models.Registration, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending == nil {
		return models.Registration{}, ErrNothingPending
	}
	member, ok := members.CurrentMember()
	if !ok {
		return models.Registration{}, ErrNoCurrentMember
	}
	for _, id := range details.AttendingFamilyIDs {
		if !member.HasFamilyMember(id) {
			return models.Registration{}, fmt.Errorf("%w: %s", ErrUnknownFamilyMember, id)
		}
	}

	attending := make([]string, len(details.AttendingFamilyIDs))
	copy(attending, details.AttendingFamilyIDs)

	reg := models.Registration{
		ID:                 w.newID(),
		EventID:            w.pending.ID,
		MemberID:           member.ID,
		AttendingFamilyIDs: attending,
		SpecialRequests:    details.SpecialRequests,
		Timestamp:          w.now().UTC().Format(time.RFC3339),
	}

	if err := w.repo.Create(ctx, &reg); err != nil {
		w.lastErr = err
		return models.Registration{}, fmt.Errorf("submit registration: %w", err)
	}

	w.pending = nil
	w.lastErr = nil
	return reg, nil
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := State{Status: StatusIdle, LastError: w.lastErr}
	if w.pending != nil {
		ev := *w.pending
		st.Status = StatusPending
		st.Event = &ev
	}
	return st
}

package session

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

// StorageKey is the persisted current-member record. It is namespaced per
// session in the KeyStore.
const StorageKey = "travel_nature_user"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("invalid admin secret")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidTab         = errors.New("invalid tab")
	ErrTabNotAllowed      = errors.New("tab not available for this role")
)

// MemberDirectory looks members up by email. The members mirror satisfies it.
type MemberDirectory interface {
	FindMemberByEmail(email string) (models.Member, bool)
}

// Credentials are the shared secrets of the gate.
type Credentials struct {
	AdminSecret     string
	OverrideEnabled bool
	OverrideSecret  string
}

// View is a copy of a session's state.
type View struct {
	Role          types.Role
	ActiveTab     string
	Authorized    bool
	AdminUnlocked bool
	CurrentMember *models.Member
}

// Session is the authorization gate of one client. Its zero role is MEMBER
// and its zero tab is the dashboard.
type Session struct {
	id    string
	dir   MemberDirectory
	keys  KeyStore
	creds Credentials

	mu            sync.RWMutex
	role          types.Role
	current       *models.Member
	adminUnlocked bool
	activeTab     string
}

func New(id string, dir MemberDirectory, keys KeyStore, creds Credentials) *Session {
	return &Session{
		id:        id,
		dir:       dir,
		keys:      keys,
		creds:     creds,
		role:      types.RoleMember,
		activeTab: types.TabDashboard,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) storageKey() string {
	return StorageKey + ":" + s.id
}

// Login signs a member in by case-insensitive email. The secret must match
// the member's stored credential or the enabled override secret. A failure
// never says which part was wrong and leaves the session untouched.
func (s *Session) Login(ctx context.Context, email, secret string) error {
	member, ok := s.dir.FindMemberByEmail(email)
	if !ok || !s.secretMatches(member.Password, secret) {
		return ErrInvalidCredentials
	}

	// The credential stays in the store, not in the session record.
	snapshot := member.Clone()
	snapshot.Password = ""
	if err := s.persist(ctx, snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = &snapshot
	s.mu.Unlock()
	return nil
}

func (s *Session) secretMatches(stored, secret string) bool {
	if stored != "" && credentialMatches(stored, secret) {
		return true
	}
	return s.creds.OverrideEnabled && s.creds.OverrideSecret != "" && constantTimeEqual(s.creds.OverrideSecret, secret)
}

// credentialMatches accepts bcrypt hashes and plaintext credentials.
func credentialMatches(stored, secret string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)) == nil
	}
	return constantTimeEqual(stored, secret)
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// UnlockAdmin opens the admin view for the rest of the session. The flag is
// never persisted.
func (s *Session) UnlockAdmin(secret string) error {
	if s.creds.AdminSecret == "" || !constantTimeEqual(s.creds.AdminSecret, secret) {
		return ErrUnauthorized
	}
	s.mu.Lock()
	s.adminUnlocked = true
	s.mu.Unlock()
	return nil
}

// Logout clears identity and the admin flag, deletes the persisted record and
// returns to the dashboard. The in-memory state is cleared even when the
// delete fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.adminUnlocked = false
	s.activeTab = types.TabDashboard
	s.mu.Unlock()

	if err := s.keys.DeleteSession(ctx, s.storageKey()); err != nil {
		return fmt.Errorf("delete session record: %w", err)
	}
	return nil
}

// Restore loads the persisted member, if any, without checking it against the
// members mirror. An unreadable record is deleted.
func (s *Session) Restore(ctx context.Context) error {
	data, found, err := s.keys.GetSession(ctx, s.storageKey())
	if err != nil {
		return fmt.Errorf("read session record: %w", err)
	}
	if !found {
		return nil
	}

	var member models.Member
	if err := json.Unmarshal(data, &member); err != nil {
		log.Warn().Err(err).Str("session", s.id).Msg("[Session] discarding unreadable session record")
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
		return s.keys.DeleteSession(ctx, s.storageKey())
	}

	s.mu.Lock()
	s.current = &member
	s.mu.Unlock()
	return nil
}

// ReplaceCurrentMember swaps the signed-in member for m and persists it. It
// is a no-op when nobody is signed in.
func (s *Session) ReplaceCurrentMember(ctx context.Context, m models.Member) error {
	s.mu.RLock()
	signedIn := s.current != nil
	s.mu.RUnlock()
	if !signedIn {
		return nil
	}

	snapshot := m.Clone()
	snapshot.Password = ""
	if err := s.persist(ctx, snapshot); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = &snapshot
	s.mu.Unlock()
	return nil
}

func (s *Session) persist(ctx context.Context, m models.Member) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := s.keys.SetSession(ctx, s.storageKey(), data); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}

// IsAuthorized is derived on every call: ADMIN needs the unlocked flag,
// MEMBER needs a signed-in member.
func (s *Session) IsAuthorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authorizedLocked()
}

func (s *Session) authorizedLocked() bool {
	if s.role == types.RoleAdmin {
		return s.adminUnlocked
	}
	return s.current != nil
}

func (s *Session) Role() types.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// SetRole switches the view. Leaving ADMIN while on the admin tab returns to
// the dashboard.
func (s *Session) SetRole(role types.Role) error {
	if !types.IsValidRole(role) {
		return ErrInvalidRole
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
	if role != types.RoleAdmin && s.activeTab == types.TabAdmin {
		s.activeTab = types.TabDashboard
	}
	return nil
}

func (s *Session) ActiveTab() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTab
}

func (s *Session) SetActiveTab(tab string) error {
	if !types.IsValidTab(tab) {
		return ErrInvalidTab
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tab == types.TabAdmin && s.role != types.RoleAdmin {
		return ErrTabNotAllowed
	}
	s.activeTab = tab
	return nil
}

func (s *Session) AdminUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminUnlocked
}

// CurrentMember returns a copy of the signed-in member.
func (s *Session) CurrentMember() (models.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.Member{}, false
	}
	return s.current.Clone(), true
}

func (s *Session) State() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := View{
		Role:          s.role,
		ActiveTab:     s.activeTab,
		Authorized:    s.authorizedLocked(),
		AdminUnlocked: s.adminUnlocked,
	}
	if s.current != nil {
		m := s.current.Clone()
		v.CurrentMember = &m
	}
	return v
}

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrInvalidToken = errors.New("invalid session token")

// Manager owns the live sessions of all clients. A session is addressed by a
// signed token whose subject is the session ID; a token that outlives the
// process rebuilds its session from the KeyStore on first use.
type Manager struct {
	dir    MemberDirectory
	keys   KeyStore
	creds  Credentials
	secret []byte
	expiry time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

func NewManager(dir MemberDirectory, keys KeyStore, creds Credentials, jwtSecret string, expiry time.Duration) *Manager {
	return &Manager{
		dir:      dir,
		keys:     keys,
		creds:    creds,
		secret:   []byte(jwtSecret),
		expiry:   expiry,
		sessions: make(map[string]*entry),
	}
}

// Create starts a fresh session and returns it with its token.
func (m *Manager) Create() (*Session, string, error) {
	id := uuid.New().String()
	token, err := m.IssueToken(id)
	if err != nil {
		return nil, "", err
	}

	s := New(id, m.dir, m.keys, m.creds)
	m.mu.Lock()
	m.sessions[id] = &entry{session: s, lastSeen: time.Now()}
	m.mu.Unlock()
	return s, token, nil
}

func (m *Manager) IssueToken(sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sessionID,
		"exp": now.Add(m.expiry).Unix(),
		"iat": now.Unix(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and returns its session ID.
func (m *Manager) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// Resolve returns the live session for a token, restoring it from the
// KeyStore when this process has not seen it yet.
func (m *Manager) Resolve(ctx context.Context, tokenString string) (*Session, error) {
	id, err := m.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = time.Now()
		m.mu.Unlock()
		return e.session, nil
	}
	m.mu.Unlock()

	s := New(id, m.dir, m.keys, m.creds)
	if err := s.Restore(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have restored it first.
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = time.Now()
		return e.session, nil
	}
	m.sessions[id] = &entry{session: s, lastSeen: time.Now()}
	log.Debug().Str("session", id).Msg("[Session] restored from key store")
	return s, nil
}

// Prune drops sessions idle for longer than maxIdle from memory. Persisted
// records are kept, so a returning token restores its member.
func (m *Manager) Prune(maxIdle time.Duration) []string {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()
	var dropped []string
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

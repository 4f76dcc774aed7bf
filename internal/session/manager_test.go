package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreateAndResolve(t *testing.T) {
	m := NewManager(testMembers(t), NewMemoryKeyStore(), testCreds, "test-secret", time.Hour)

	s, token, err := m.Create()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := m.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Count())
}

func TestManagerRejectsBadTokens(t *testing.T) {
	m := NewManager(testMembers(t), NewMemoryKeyStore(), testCreds, "test-secret", time.Hour)
	other := NewManager(testMembers(t), NewMemoryKeyStore(), testCreds, "other-secret", time.Hour)
	expired := NewManager(testMembers(t), NewMemoryKeyStore(), testCreds, "test-secret", -time.Minute)

	foreign, err := other.IssueToken("s1")
	require.NoError(t, err)
	stale, err := expired.IssueToken("s1")
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "s1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"expired":        stale,
		"unsigned token": none,
	} {
		_, err := m.Resolve(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestManagerRestoresAfterRestart(t *testing.T) {
	ctx := context.Background()
	keys := NewMemoryKeyStore()

	before := NewManager(testMembers(t), keys, testCreds, "test-secret", time.Hour)
	s, token, err := before.Create()
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, "asha@example.com", "trek123"))
	require.NoError(t, s.UnlockAdmin("sanchari2026"))

	after := NewManager(testMembers(t), keys, testCreds, "test-secret", time.Hour)
	restored, err := after.Resolve(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, s.ID(), restored.ID())
	m, ok := restored.CurrentMember()
	require.True(t, ok)
	assert.Equal(t, "m1", m.ID)
	assert.False(t, restored.AdminUnlocked())
}

func TestManagerPrune(t *testing.T) {
	ctx := context.Background()
	keys := NewMemoryKeyStore()
	m := NewManager(testMembers(t), keys, testCreds, "test-secret", time.Hour)

	s, token, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, "asha@example.com", "trek123"))

	assert.Empty(t, m.Prune(time.Hour))
	dropped := m.Prune(-time.Second)
	assert.Equal(t, []string{s.ID()}, dropped)
	assert.Equal(t, 0, m.Count())

	// The persisted member comes back with the token.
	back, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.NotSame(t, s, back)
	_, ok := back.CurrentMember()
	assert.True(t, ok)
}

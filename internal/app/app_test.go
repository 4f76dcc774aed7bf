package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/sanchari-backend/internal/config"
	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
	"github.com/Marga-Ghale/sanchari-backend/internal/seed"
	"github.com/Marga-Ghale/sanchari-backend/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:         "test",
		JWTSecret:           "test-secret",
		JWTExpiry:           1,
		AdminSecret:         "sanchari2026",
		LoginOverrideSecret: "",
		AllowedOrigins:      []string{"http://localhost:5173"},
		SeedOnStart:         true,
	}
}

func startApp(t *testing.T) *App {
	t.Helper()
	ctx := context.Background()
	a, err := New(ctx, testConfig(), Backends{
		Store: repository.NewMemoryStore(),
		Keys:  session.NewMemoryKeyStore(),
	})
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))
	t.Cleanup(a.Close)
	return a
}

func call(t *testing.T, a *App, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func newSession(t *testing.T, a *App) string {
	t.Helper()
	w := call(t, a, http.MethodPost, "/api/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return decode[models.SessionTokenResponse](t, w).Token
}

func TestMirrorsStartFromSeed(t *testing.T) {
	a := startApp(t)

	members, err := seed.Members()
	require.NoError(t, err)

	var first []models.Member
	unsub, err := a.Mirrors.Members.Subscribe(context.Background(), func(m []models.Member) {
		if first == nil {
			first = m
		}
	})
	require.NoError(t, err)
	defer unsub()

	require.Len(t, first, len(members))
	for i := range members {
		assert.Equal(t, members[i].ID, first[i].ID)
		assert.Equal(t, members[i].Email, first[i].Email)
	}
	assert.Len(t, a.Mirrors.Events.Snapshot(), len(seed.Events()))
}

func TestJoinTripEndToEnd(t *testing.T) {
	a := startApp(t)
	token := newSession(t, a)

	// Gated until somebody signs in
	w := call(t, a, http.MethodGet, "/api/events", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, a, http.MethodPost, "/api/session/login", token, models.LoginRequest{
		Email: "MEERA@sanchari.club", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, a, http.MethodPost, "/api/session/login", token, models.LoginRequest{
		Email: "MEERA@sanchari.club", Password: seed.DefaultPassword,
	})
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[models.SessionResponse](t, w)
	assert.True(t, state.Authorized)
	require.NotNil(t, state.CurrentMember)
	assert.Equal(t, "member-meera", state.CurrentMember.ID)

	w = call(t, a, http.MethodGet, "/api/events", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[models.DashboardResponse](t, w)
	assert.Equal(t, "Meera", dash.Greeting)
	require.Len(t, dash.Events, 2)
	assert.Equal(t, 25, dash.Events[0].RemainingSlots)

	// Drafts are not open for registration
	w = call(t, a, http.MethodPost, "/api/registrations/pending", token, models.RequestJoinRequest{EventID: "event-munnar"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(t, a, http.MethodPost, "/api/registrations/pending/confirm", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(t, a, http.MethodPost, "/api/registrations/pending", token, models.RequestJoinRequest{EventID: "event-yelagiri"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending_confirmation", decode[models.PendingRegistrationResponse](t, w).Status)

	w = call(t, a, http.MethodPost, "/api/registrations/pending/confirm", token, models.ConfirmJoinRequest{
		AttendingFamilyIDs: []string{"fam-lakshmi"},
		SpecialRequests:    "Window seat",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	reg := decode[models.Registration](t, w)
	assert.Equal(t, "member-meera", reg.MemberID)
	assert.Equal(t, "event-yelagiri", reg.EventID)

	regs := a.Mirrors.Registrations.Snapshot()
	require.Len(t, regs, 1)
	assert.Equal(t, reg.ID, regs[0].ID)

	w = call(t, a, http.MethodGet, "/api/events", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 24, decode[models.DashboardResponse](t, w).Events[0].RemainingSlots)

	w = call(t, a, http.MethodGet, "/api/registrations/pending", token, nil)
	assert.Equal(t, "idle", decode[models.PendingRegistrationResponse](t, w).Status)
}

func TestAdminGate(t *testing.T) {
	a := startApp(t)
	token := newSession(t, a)

	w := call(t, a, http.MethodGet, "/api/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, a, http.MethodPut, "/api/session/role", token, models.SetRoleRequest{Role: "ADMIN"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.SessionResponse](t, w).Authorized)

	w = call(t, a, http.MethodPost, "/api/session/admin/unlock", token, models.UnlockAdminRequest{Secret: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, a, http.MethodPost, "/api/session/admin/unlock", token, models.UnlockAdminRequest{Secret: "sanchari2026"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.SessionResponse](t, w).Authorized)

	w = call(t, a, http.MethodGet, "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatsResponse{TotalRiders: 3, ActiveBookings: 0}, decode[models.StatsResponse](t, w))

	w = call(t, a, http.MethodGet, "/api/events", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Admin", decode[models.DashboardResponse](t, w).Greeting)

	w = call(t, a, http.MethodPost, "/api/admin/events", token, models.CreateEventRequest{
		Title: "Kodaikanal Lake Loop", Date: "2027-04-10", Capacity: 12,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.TravelEvent](t, w)
	assert.Equal(t, "draft", created.Status)

	w = call(t, a, http.MethodPatch, "/api/admin/events/"+created.ID+"/status", token, models.UpdateEventStatusRequest{Status: "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = call(t, a, http.MethodPatch, "/api/admin/events/"+created.ID+"/status", token, models.UpdateEventStatusRequest{Status: "published"})
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, a, http.MethodPost, "/api/admin/members", token, models.CreateMemberRequest{
		Name: "Divya", Email: "KARTHIK@sanchari.club", Password: "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Without a model every generation falls back
	w = call(t, a, http.MethodPost, "/api/admin/events/event-yelagiri/announcement", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	gen := decode[models.GeneratedTextResponse](t, w)
	assert.True(t, gen.Fallback)
	assert.Equal(t, "Join our next trip! Check the app for details.", gen.Content)

	w = call(t, a, http.MethodPost, "/api/session/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(t, a, http.MethodGet, "/api/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRejectsMissingOrForeignToken(t *testing.T) {
	a := startApp(t)

	w := call(t, a, http.MethodGet, "/api/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, a, http.MethodGet, "/api/session", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	a := startApp(t)
	w := call(t, a, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
}

func TestOpenFallsBackToMemory(t *testing.T) {
	cfg := testConfig()
	a, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "memory", a.status["store"])
	assert.Equal(t, "memory", a.status["sessions"])
	assert.Equal(t, "disabled", a.status["generation"])
}

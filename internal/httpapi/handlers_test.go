package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teampulse/teampulse/internal/config"
	pushsubrepo "github.com/teampulse/teampulse/internal/pushsubscription/repositoryimpl"
	"github.com/teampulse/teampulse/internal/report"
	"github.com/teampulse/teampulse/internal/stats"
	"github.com/teampulse/teampulse/internal/task"
	"github.com/teampulse/teampulse/pkg/cerr"
	"github.com/teampulse/teampulse/pkg/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.Local) {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	srv := NewServer(
		&config.BaseEnv{Env: "local", HTTPPort: "0"},
		&config.VAPIDEnv{VAPIDPublicKey: "pub-key"},
		nil,
		report.NewLoader(store),
		pushsubrepo.NewYAMLRepository(store),
	)
	return srv, store
}

// testRouter mirrors the API routing without binding a listener.
func testRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(cerr.NewJSONResponseChiMiddleware())
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/stats", s.handleStats)
		r.Get("/tasks", s.handleListTasks)
		r.Get("/push/vapid-public-key", s.handleVAPIDPublicKey)
		r.Get("/push/subscriptions", s.handleListSubscriptions)
		r.Post("/push/subscriptions", s.handleCreateSubscription)
		r.Delete("/push/subscriptions", s.handleDeleteSubscription)
	})
	return r
}

func emitReports(t *testing.T, store *storage.Local) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	grouped := task.Group([]any{
		map[string]any{
			"id":        "1",
			"name":      "Ship it",
			"status":    map[string]any{"status": "open"},
			"assignees": []any{map[string]any{"username": "alice"}},
		},
	})
	emitter := report.NewEmitter(store)
	require.NoError(t, emitter.Emit(ctx, grouped, stats.Compute(grouped, now)))
}

func TestHandleDashboard(t *testing.T) {
	srv, store := newTestServer(t)
	emitReports(t, store)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var d Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.Len(t, d.TasksByAssignee["alice"], 1)
	assert.Equal(t, "alice", d.TasksByAssignee["alice"][0].Employee)
	assert.Equal(t, 1, d.Stats.TotalTasks)
	require.NotNil(t, d.ChatSummary, "absent sections are empty, not null")
	require.NotNil(t, d.Digest)
	assert.NotNil(t, d.Digest.WorkCompleted)
}

func TestHandleDashboard_CacheInvalidation(t *testing.T) {
	srv, store := newTestServer(t)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var before Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &before))
	assert.Equal(t, 0, before.Stats.TotalTasks)

	// New reports land, but the cache still serves the old document.
	emitReports(t, store)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	var cached Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cached))
	assert.Equal(t, 0, cached.Stats.TotalTasks)

	srv.cache.invalidate()
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	var fresh Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fresh))
	assert.Equal(t, 1, fresh.Stats.TotalTasks)
}

func TestHandleListTasks(t *testing.T) {
	srv, store := newTestServer(t)
	emitReports(t, store)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var records []report.TaskRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Ship it", records[0].Name)
	assert.Equal(t, "alice", records[0].Employee)
}

func TestSubscriptionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	router := testRouter(srv)

	body := `{"endpoint":"https://push.example.com/a","keys":{"p256dh":"pk","auth":"ak"}}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/push/subscriptions", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created["id"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/push/subscriptions", nil))
	var listed []apiSubscription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created["id"], listed[0].ID)
	assert.NotContains(t, rec.Body.String(), "pk", "key material is never echoed")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/push/subscriptions", strings.NewReader(`{"endpoint":"https://push.example.com/a"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/push/subscriptions", nil))
	listed = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed)
}

func TestCreateSubscription_Invalid(t *testing.T) {
	srv, _ := newTestServer(t)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/push/subscriptions", strings.NewReader(`{"endpoint":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errBody map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "InvalidArgument", errBody["code"])
}

func TestHandleVAPIDPublicKey(t *testing.T) {
	srv, _ := newTestServer(t)
	router := testRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/push/vapid-public-key", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pub-key")
}

func TestAPIKeyMiddleware(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.env.APIKey = "secret"
	handler := srv.apiKeyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing key rejected")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("X-API-Key", "secret")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code, "health is exempt")

	srv.env.APIKey = ""
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code, "empty key disables the check")
}

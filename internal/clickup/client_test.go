package clickup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/pkg/cerr"
)

func testClient(url string) *Client {
	return NewClient(&config.ClickUpEnv{APIToken: "pk_test", BaseURL: url})
}

func TestClient_Tasks_ScopeSelection(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tasks": []any{map[string]any{"id": "1"}, map[string]any{"id": "2"}},
		})
	}))
	defer srv.Close()
	client := testClient(srv.URL)

	tasks, err := client.Tasks(context.Background(), Selector{TeamID: "t1", SpaceID: "s1", ListID: "l1"})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "/list/l1/task", gotPath, "narrowest scope wins")
	assert.Equal(t, "pk_test", gotAuth)

	_, err = client.Tasks(context.Background(), Selector{TeamID: "t1", SpaceID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "/space/s1/task", gotPath)

	_, err = client.Tasks(context.Background(), Selector{TeamID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, "/team/t1/task", gotPath)
}

func TestClient_Tasks_EmptySelector(t *testing.T) {
	client := testClient("http://127.0.0.1:0")
	_, err := client.Tasks(context.Background(), Selector{})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
}

func TestClient_Tasks_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"err":"List not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	tasks, err := testClient(srv.URL).Tasks(context.Background(), Selector{ListID: "gone"})
	require.NoError(t, err)
	assert.Nil(t, tasks)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		code   cerr.Code
	}{
		{http.StatusUnauthorized, cerr.Unauthenticated},
		{http.StatusForbidden, cerr.PermissionDenied},
		{http.StatusInternalServerError, cerr.Unavailable},
		{http.StatusTooManyRequests, cerr.Unavailable},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tt.status)
		}))
		_, err := testClient(srv.URL).Teams(context.Background())
		assert.True(t, cerr.IsCode(err, tt.code), "status %d should map to %s, got %v", tt.status, tt.code, err)
		srv.Close()
	}
}

func TestClient_Members_UnwrapsUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"members": []any{
				map[string]any{"user": map[string]any{"id": 7, "username": "alice", "email": "alice@example.com"}},
			},
		})
	}))
	defer srv.Close()

	members, err := testClient(srv.URL).Members(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Username)
	assert.Equal(t, int64(7), members[0].ID)
}

func TestClient_CreateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/list/l1/task", r.URL.Path)

		var req CreateTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "New task", req.Name)
		assert.Equal(t, PriorityHigh, req.Priority)

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "9", "name": req.Name})
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL).CreateTask(context.Background(), "l1", &CreateTaskRequest{
		Name:     "New task",
		Priority: PriorityCode("high"),
	})
	require.NoError(t, err)
	assert.Equal(t, "9", raw["id"])
}

func TestPriorityCode(t *testing.T) {
	assert.Equal(t, PriorityUrgent, PriorityCode("urgent"))
	assert.Equal(t, PriorityLow, PriorityCode("low"))
	assert.Equal(t, PriorityNormal, PriorityCode("something else"))
}

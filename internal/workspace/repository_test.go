package workspace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teampulse/teampulse/internal/clickup"
	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/pkg/cerr"
	"github.com/teampulse/teampulse/pkg/storage"
)

func TestYAMLRepository_Roundtrip(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	repo := NewYAMLRepository(store)

	_, err = repo.Load(ctx)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	ws := &Workspace{
		TeamID:    "t1",
		TeamName:  "Acme",
		SpaceID:   "s1",
		SpaceName: "Engineering",
		ListID:    "l1",
		ListName:  "Sprint",
		UpdatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, ws))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ws, loaded)

	sel := loaded.Selector()
	assert.Equal(t, clickup.Selector{TeamID: "t1", SpaceID: "s1", ListID: "l1"}, sel)
}

func TestDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/team":
			_ = json.NewEncoder(w).Encode(map[string]any{"teams": []any{
				map[string]any{"id": "t1", "name": "Acme"},
				map[string]any{"id": "t2", "name": "Other"},
			}})
		case "/team/t1/space":
			_ = json.NewEncoder(w).Encode(map[string]any{"spaces": []any{
				map[string]any{"id": "s1", "name": "Engineering"},
			}})
		case "/space/s1/list":
			_ = json.NewEncoder(w).Encode(map[string]any{"lists": []any{
				map[string]any{"id": "l1", "name": "Sprint"},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	client := clickup.NewClient(&config.ClickUpEnv{APIToken: "pk", BaseURL: srv.URL})

	ws, err := Discover(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "t1", ws.TeamID, "first team wins")
	assert.Equal(t, "Engineering", ws.SpaceName)
	assert.Equal(t, "l1", ws.ListID)
	assert.False(t, ws.UpdatedAt.IsZero())
}

func TestDiscover_NoTeams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"teams": []any{}})
	}))
	defer srv.Close()
	client := clickup.NewClient(&config.ClickUpEnv{APIToken: "pk", BaseURL: srv.URL})

	_, err := Discover(context.Background(), client)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

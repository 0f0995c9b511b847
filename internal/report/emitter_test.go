package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teampulse/teampulse/internal/stats"
	"github.com/teampulse/teampulse/internal/task"
	"github.com/teampulse/teampulse/pkg/storage"
)

func testGrouped(now time.Time) *task.Grouped {
	due := now.Add(-time.Hour)
	return &task.Grouped{
		Tasks: map[string][]*task.Task{
			"alice": {
				{ID: "1", Name: "Report", Status: "open", Assignee: "alice", DueAt: &due},
				{ID: "2", Name: "Review", Status: "complete", Assignee: "alice"},
			},
			task.UnassignedKey: {
				{ID: "3", Name: "Untitled Task", Status: "unknown", Assignee: task.UnassignedKey},
			},
		},
	}
}

func TestEmitter_Emit(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	grouped := testGrouped(now)
	agg := stats.Compute(grouped, now)

	emitter := NewEmitter(store)
	require.NoError(t, emitter.Emit(ctx, grouped, agg))

	snap, err := NewLoader(store).Load(ctx)
	require.NoError(t, err)

	require.Len(t, snap.TasksByAssignee, 2)
	require.Len(t, snap.TasksByAssignee["alice"], 2)
	assert.Equal(t, "alice", snap.TasksByAssignee["alice"][0].Employee, "records carry the employee tag")
	assert.Equal(t, "1", snap.TasksByAssignee["alice"][0].ID)

	assert.Equal(t, 2, snap.Stats.TotalEmployees)
	assert.Equal(t, 3, snap.Stats.TotalTasks)
	assert.Equal(t, 1, snap.Stats.EmployeeStats["alice"].Overdue)
}

func TestEmitter_EmitIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	grouped := testGrouped(now)
	agg := stats.Compute(grouped, now)

	emitter := NewEmitter(store)
	require.NoError(t, emitter.Emit(ctx, grouped, agg))
	first, err := store.Read(ctx, TasksKey)
	require.NoError(t, err)
	firstStats, err := store.Read(ctx, StatsKey)
	require.NoError(t, err)

	require.NoError(t, emitter.Emit(ctx, grouped, agg))
	second, err := store.Read(ctx, TasksKey)
	require.NoError(t, err)
	secondStats, err := store.Read(ctx, StatsKey)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, string(firstStats), string(secondStats))
}

// failKeyStorage fails writes to a single key and delegates the rest.
type failKeyStorage struct {
	storage.Storage
	failKey string
}

func (f *failKeyStorage) Write(ctx context.Context, key string, data []byte) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Storage.Write(ctx, key, data)
}

func TestEmitter_IndependentDestinations(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	store := &failKeyStorage{Storage: local, failKey: StatsKey}

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	grouped := testGrouped(now)
	agg := stats.Compute(grouped, now)

	err = NewEmitter(store).Emit(ctx, grouped, agg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statistics")
	assert.NotContains(t, err.Error(), "grouped tasks report")

	// The other destination was still written.
	_, err = local.Read(ctx, TasksKey)
	require.NoError(t, err)
	_, err = local.Read(ctx, StatsKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoader_AbsentFiles(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	snap, err := NewLoader(store).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.TasksByAssignee)
	assert.Equal(t, 0, snap.Stats.TotalTasks)
	assert.Empty(t, snap.Flatten())

	summary, err := NewLoader(store).LoadSummary(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary.Summary)

	d, err := NewLoader(store).LoadDigest(ctx)
	require.NoError(t, err)
	assert.Empty(t, d.WorkCompleted)
	assert.NotNil(t, d.WorkCompleted, "buckets are present, not null")
}

func TestSnapshot_Flatten(t *testing.T) {
	snap := &Snapshot{
		TasksByAssignee: map[string][]TaskRecord{
			"zoe":   {{Task: task.Task{ID: "3"}, Employee: "zoe"}},
			"alice": {{Task: task.Task{ID: "1"}, Employee: "alice"}, {Task: task.Task{ID: "2"}, Employee: "alice"}},
		},
	}

	flat := snap.Flatten()
	require.Len(t, flat, 3)
	assert.Equal(t, "1", flat[0].ID)
	assert.Equal(t, "2", flat[1].ID)
	assert.Equal(t, "3", flat[2].ID)
}

func TestEmitter_CollaboratorDocuments(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	emitter := NewEmitter(store)
	loader := NewLoader(store)

	summary := &ChatSummary{
		Summary:      "the team shipped the report",
		Model:        "sshleifer/distilbart-cnn-12-6",
		MessageCount: 12,
		GeneratedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, emitter.EmitSummary(ctx, summary))

	got, err := loader.LoadSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, summary, got)
}

package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawTask(id, assignee string) map[string]any {
	rec := map[string]any{"id": id}
	if assignee != "" {
		rec["assignees"] = []any{map[string]any{"username": assignee}}
	}
	return rec
}

func TestGroup_BucketsByAssignee(t *testing.T) {
	grouped := Group([]any{
		rawTask("1", "alice"),
		rawTask("2", "bob"),
		rawTask("3", "alice"),
		rawTask("4", ""),
	})

	require.Len(t, grouped.Tasks, 3)
	assert.Equal(t, 0, grouped.Skipped)
	assert.Equal(t, 4, grouped.Total())

	require.Len(t, grouped.Tasks["alice"], 2)
	assert.Equal(t, "1", grouped.Tasks["alice"][0].ID, "input order preserved")
	assert.Equal(t, "3", grouped.Tasks["alice"][1].ID)
	require.Len(t, grouped.Tasks[UnassignedKey], 1)
}

func TestGroup_SkipsNonRecords(t *testing.T) {
	grouped := Group([]any{
		rawTask("1", "alice"),
		"not a record",
		nil,
		42.0,
		rawTask("2", "alice"),
	})

	assert.Equal(t, 3, grouped.Skipped)
	assert.Equal(t, 2, grouped.Total())
	require.Len(t, grouped.Tasks["alice"], 2)
}

func TestGroup_Empty(t *testing.T) {
	grouped := Group(nil)
	assert.Empty(t, grouped.Tasks)
	assert.Equal(t, 0, grouped.Total())
	assert.Empty(t, grouped.Keys())
	assert.Empty(t, grouped.Flatten())
}

func TestGrouped_KeysAndFlatten(t *testing.T) {
	grouped := Group([]any{
		rawTask("1", "zoe"),
		rawTask("2", "alice"),
		rawTask("3", "zoe"),
	})

	assert.Equal(t, []string{"alice", "zoe"}, grouped.Keys())

	flat := grouped.Flatten()
	require.Len(t, flat, 3)
	assert.Equal(t, "2", flat[0].ID)
	assert.Equal(t, "1", flat[1].ID)
	assert.Equal(t, "3", flat[2].ID)
}

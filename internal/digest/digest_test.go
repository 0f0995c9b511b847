package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teampulse/teampulse/internal/task"
)

// fakeSummarizer echoes the task name back, or fails for inputs containing
// the trigger word.
type fakeSummarizer struct {
	failOn string
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, _, _ int) (string, error) {
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return "", errors.New("inference failed")
	}
	return "summary: " + text[:min(len(text), 20)], nil
}

func ts(t time.Time) *time.Time {
	return &t
}

func TestBuild_Buckets(t *testing.T) {
	due := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	tasks := []*task.Task{
		{ID: "1", Name: "Open work", Status: "open"},
		{ID: "2", Name: "Late close", Status: "complete", DueAt: ts(due), ClosedAt: ts(due.Add(24 * time.Hour))},
		{ID: "3", Name: "On time", Status: "done", DueAt: ts(due), ClosedAt: ts(due.Add(-time.Hour))},
		{ID: "4", Name: "No dates", Status: "closed"},
	}

	d := Build(context.Background(), tasks, &fakeSummarizer{}, 30, 130)

	assert.Len(t, d.WorkNotCompleted, 1)
	assert.Len(t, d.WorkCompleted, 3)
	require.Len(t, d.MissedDeadlines, 1)
	assert.Contains(t, d.MissedDeadlines[0], "Late close")
	require.Len(t, d.CompletedOnTime, 1)
	assert.Contains(t, d.CompletedOnTime[0], "On time")
}

func TestBuild_SummarizerFailureFallsBack(t *testing.T) {
	tasks := []*task.Task{
		{ID: "1", Name: "Flaky thing", Description: "breaks the model", Status: "open"},
	}

	d := Build(context.Background(), tasks, &fakeSummarizer{failOn: "Flaky"}, 30, 130)

	require.Len(t, d.WorkNotCompleted, 1)
	assert.Contains(t, d.WorkNotCompleted[0], "Task: Flaky thing.", "raw line kept on failure")
	assert.Contains(t, d.WorkNotCompleted[0], "Status: open.")
}

func TestBuild_Empty(t *testing.T) {
	d := Build(context.Background(), nil, &fakeSummarizer{}, 30, 130)
	assert.Equal(t, Empty(), d)
	assert.NotNil(t, d.WorkCompleted, "buckets marshal as [] not null")
}

func TestDescribe(t *testing.T) {
	due := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	line := describe(&task.Task{
		Name:        "Ship report",
		Description: "Q3 numbers",
		Status:      "in progress",
		DueAt:       ts(due),
	})
	assert.Equal(t, "Task: Ship report. Q3 numbers Status: in progress. Due: 2026-07-15.", line)

	bare := describe(&task.Task{Name: "Bare", Status: "open"})
	assert.Equal(t, "Task: Bare. Status: open.", bare)
}

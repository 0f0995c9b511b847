// Package digest builds the per-category work summary shown at the bottom of
// the dashboard: what got done, what didn't, and how deadlines fared.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teampulse/teampulse/internal/summarize"
	"github.com/teampulse/teampulse/internal/task"
)

// Digest buckets one-line task summaries by outcome.
type Digest struct {
	WorkCompleted    []string `json:"work_completed"`
	WorkNotCompleted []string `json:"work_not_completed"`
	MissedDeadlines  []string `json:"missed_deadlines"`
	CompletedOnTime  []string `json:"completed_on_time"`
}

// Empty returns a digest with all buckets present but empty, the value a
// consumer sees when no digest could be produced.
func Empty() *Digest {
	return &Digest{
		WorkCompleted:    []string{},
		WorkNotCompleted: []string{},
		MissedDeadlines:  []string{},
		CompletedOnTime:  []string{},
	}
}

// Build summarizes each task and sorts the summaries into outcome buckets.
// Tasks are processed in the given order, so the digest is deterministic for
// a deterministic input. A failed summarization falls back to the raw line
// rather than dropping the task.
func Build(ctx context.Context, tasks []*task.Task, summarizer summarize.Summarizer, minLen, maxLen int) *Digest {
	d := Empty()
	for _, t := range tasks {
		line := describe(t)
		summary, err := summarizer.Summarize(ctx, line, minLen, maxLen)
		if err != nil || summary == "" {
			if err != nil {
				slog.Warn("summarization failed, keeping raw description", "task_id", t.ID, "error", err)
			}
			summary = line
		}

		if !t.Completed() {
			d.WorkNotCompleted = append(d.WorkNotCompleted, summary)
			continue
		}
		d.WorkCompleted = append(d.WorkCompleted, summary)
		if t.ClosedAt == nil || t.DueAt == nil {
			continue
		}
		if t.ClosedAt.After(*t.DueAt) {
			d.MissedDeadlines = append(d.MissedDeadlines, summary)
		} else {
			d.CompletedOnTime = append(d.CompletedOnTime, summary)
		}
	}
	return d
}

func describe(t *task.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s.", t.Name)
	if t.Description != "" {
		fmt.Fprintf(&b, " %s", t.Description)
	}
	fmt.Fprintf(&b, " Status: %s.", t.Status)
	if t.DueAt != nil {
		fmt.Fprintf(&b, " Due: %s.", t.DueAt.Format("2006-01-02"))
	}
	return b.String()
}

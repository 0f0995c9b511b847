// Package report persists the grouped-task and statistics documents that the
// dashboard consumes. The two destinations are independent: a failed write to
// one never blocks the other, and each failure is reported distinctly.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/conc"

	"github.com/teampulse/teampulse/internal/stats"
	"github.com/teampulse/teampulse/internal/task"
	"github.com/teampulse/teampulse/pkg/storage"
)

const (
	// TasksKey holds assignee -> task records, each record tagged with an
	// "employee" field for tabular consumers.
	TasksKey = "reports/tasks_by_assignee.json"
	// StatsKey holds the aggregate statistics document.
	StatsKey = "reports/statistics.json"
)

// TaskRecord is a canonical task flattened for tabular consumption.
type TaskRecord struct {
	task.Task
	Employee string `json:"employee"`
}

type Emitter struct {
	storage storage.Storage
}

func NewEmitter(s storage.Storage) *Emitter {
	return &Emitter{storage: s}
}

// Emit overwrites both report documents. Re-running with the same input
// produces byte-identical output (map keys are serialized sorted, indentation
// is fixed). Returns the joined per-destination errors; a nil result means
// both writes succeeded.
func (e *Emitter) Emit(ctx context.Context, grouped *task.Grouped, aggregate *stats.Aggregate) error {
	tasksDoc, err := json.MarshalIndent(groupedRecords(grouped), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal grouped tasks: %w", err)
	}
	statsDoc, err := json.MarshalIndent(aggregate, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}

	e.logStatsDiff(ctx, statsDoc)

	var (
		wg       conc.WaitGroup
		tasksErr error
		statsErr error
	)
	wg.Go(func() {
		tasksErr = e.storage.Write(ctx, TasksKey, tasksDoc)
	})
	wg.Go(func() {
		statsErr = e.storage.Write(ctx, StatsKey, statsDoc)
	})
	wg.Wait()

	if tasksErr != nil {
		tasksErr = fmt.Errorf("failed to write grouped tasks report: %w", tasksErr)
	}
	if statsErr != nil {
		statsErr = fmt.Errorf("failed to write statistics report: %w", statsErr)
	}
	return errors.Join(tasksErr, statsErr)
}

func groupedRecords(grouped *task.Grouped) map[string][]TaskRecord {
	out := make(map[string][]TaskRecord, len(grouped.Tasks))
	for assignee, tasks := range grouped.Tasks {
		records := make([]TaskRecord, 0, len(tasks))
		for _, t := range tasks {
			records = append(records, TaskRecord{Task: *t, Employee: assignee})
		}
		out[assignee] = records
	}
	return out
}

// logStatsDiff logs a unified diff against the previously emitted statistics
// document. Purely diagnostic; any failure here is ignored.
func (e *Emitter) logStatsDiff(ctx context.Context, next []byte) {
	prev, err := e.storage.Read(ctx, StatsKey)
	if err != nil || string(prev) == string(next) {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(prev)),
		B:        difflib.SplitLines(string(next)),
		FromFile: "statistics.json@previous",
		ToFile:   "statistics.json",
		Context:  2,
	})
	if err != nil {
		return
	}
	slog.Debug("statistics changed since last run", "diff", diff)
}

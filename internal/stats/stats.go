// Package stats derives per-assignee and aggregate completion statistics from
// grouped tasks. Computation is pure and from-scratch on every run: no I/O,
// no mutation of inputs, no incremental updates.
package stats

import (
	"math"
	"time"

	"github.com/teampulse/teampulse/internal/task"
)

// Employee holds the derived counters for one assignee key.
type Employee struct {
	Total          int     `json:"total_tasks"`
	Completed      int     `json:"completed_tasks"`
	Pending        int     `json:"pending_tasks"`
	Overdue        int     `json:"overdue_tasks"`
	DueSoon        int     `json:"due_soon_tasks"`
	CompletionRate float64 `json:"completion_rate"`
}

// Aggregate is the full statistics document for one run. The Unassigned
// sentinel group counts as one employee entry.
type Aggregate struct {
	TotalEmployees int                  `json:"total_employees"`
	TotalTasks     int                  `json:"total_tasks"`
	EmployeeStats  map[string]*Employee `json:"employee_stats"`
}

// Compute builds the aggregate statistics for grouped tasks at the given
// instant. Calling it twice with identical arguments yields identical output.
func Compute(grouped *task.Grouped, now time.Time) *Aggregate {
	agg := &Aggregate{
		TotalEmployees: len(grouped.Tasks),
		EmployeeStats:  make(map[string]*Employee, len(grouped.Tasks)),
	}

	for assignee, tasks := range grouped.Tasks {
		emp := &Employee{
			Total: len(tasks),
		}
		for _, t := range tasks {
			if t.Completed() {
				emp.Completed++
			}
			switch task.ClassifyDeadline(t, now) {
			case task.TimingOverdue:
				emp.Overdue++
			case task.TimingDueSoon:
				emp.DueSoon++
			}
		}
		emp.Pending = emp.Total - emp.Completed
		emp.CompletionRate = completionRate(emp.Completed, emp.Total)

		agg.EmployeeStats[assignee] = emp
		agg.TotalTasks += emp.Total
	}
	return agg
}

// completionRate returns completed/total as a percentage rounded to two
// decimal places, or 0 for an empty group.
func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	return math.Round(rate*100) / 100
}

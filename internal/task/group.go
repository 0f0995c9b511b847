package task

import (
	"log/slog"
	"sort"
)

// Grouped partitions normalized tasks by assignee key. Order within each
// bucket equals the order tasks appeared in the input sequence; consumers
// display tasks in that order.
type Grouped struct {
	Tasks map[string][]*Task
	// Skipped counts input entries that were not record-shaped and were
	// dropped during normalization.
	Skipped int
}

// Group normalizes a sequence of raw records and buckets the resulting tasks
// by assignee key. Entries that fail normalization are dropped, counted, and
// logged; they never abort the run.
func Group(raws []any) *Grouped {
	grouped := &Grouped{
		Tasks: make(map[string][]*Task),
	}
	for i, raw := range raws {
		t, ok := Normalize(raw)
		if !ok {
			grouped.Skipped++
			slog.Debug("skipping invalid task record", "index", i)
			continue
		}
		grouped.Tasks[t.Assignee] = append(grouped.Tasks[t.Assignee], t)
	}
	return grouped
}

// Total returns the number of grouped tasks across all assignees.
func (g *Grouped) Total() int {
	total := 0
	for _, tasks := range g.Tasks {
		total += len(tasks)
	}
	return total
}

// Keys returns the assignee keys in sorted order, so serialized output and
// tabular rendering never depend on map iteration order.
func (g *Grouped) Keys() []string {
	keys := make([]string, 0, len(g.Tasks))
	for key := range g.Tasks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Flatten returns all tasks in deterministic order (sorted assignee, then
// input order), pairing each with its assignee key for tabular consumers.
func (g *Grouped) Flatten() []*Task {
	flat := make([]*Task, 0, g.Total())
	for _, key := range g.Keys() {
		flat = append(flat, g.Tasks[key]...)
	}
	return flat
}

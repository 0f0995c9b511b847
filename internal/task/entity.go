package task

import "time"

// Defaults applied during normalization. A Task never leaves the normalizer
// with an empty status, priority, or assignee key.
const (
	DefaultName     = "Untitled Task"
	StatusUnknown   = "unknown"
	PriorityNormal  = "normal"
	UnassignedKey   = "Unassigned"
	UnknownUsername = "Unknown"
)

// Task is the canonical, normalized representation of an externally-sourced
// task record. It is immutable after normalization: downstream engines only
// read it to build aggregates.
type Task struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Status       string         `json:"status"`
	Priority     string         `json:"priority"`
	Assignee     string         `json:"assignee"`
	Creator      string         `json:"creator,omitempty"`
	URL          string         `json:"url,omitempty"`
	DueAt        *time.Time     `json:"due_date,omitempty"`
	CreatedAt    *time.Time     `json:"date_created,omitempty"`
	UpdatedAt    *time.Time     `json:"date_updated,omitempty"`
	ClosedAt     *time.Time     `json:"date_closed,omitempty"`
	Tags         []string       `json:"tags"`
	TimeEstimate int64          `json:"time_estimate,omitempty"`
	TimeSpent    int64          `json:"time_spent,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

// terminalStatuses are statuses that count as finished work. A terminal task
// is never overdue or due soon, whatever its due date says.
var terminalStatuses = map[string]struct{}{
	"complete": {},
	"done":     {},
	"closed":   {},
}

// IsTerminalStatus reports whether a normalized (lowercase) status is in the
// terminal-complete set.
func IsTerminalStatus(status string) bool {
	_, ok := terminalStatuses[status]
	return ok
}

// Completed reports whether the task's status is terminal.
func (t *Task) Completed() bool {
	return IsTerminalStatus(t.Status)
}

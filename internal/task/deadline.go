package task

import "time"

// Timing classifies a task's deadline state relative to a reference instant.
type Timing int

const (
	// TimingNotApplicable: no usable due date, or the task is already in a
	// terminal status.
	TimingNotApplicable Timing = iota
	TimingOverdue
	TimingDueSoon
	TimingNone
)

func (t Timing) String() string {
	switch t {
	case TimingNotApplicable:
		return "not_applicable"
	case TimingOverdue:
		return "overdue"
	case TimingDueSoon:
		return "due_soon"
	case TimingNone:
		return "none"
	}
	return "unknown"
}

// DueSoonWindow is the inclusive window within which an open task counts as
// due soon.
const DueSoonWindow = 7 * 24 * time.Hour

// ClassifyDeadline classifies a single task's timing state at the given
// instant. A completed task is never overdue or due soon. A task due exactly
// at now is overdue (it is in the past relative to the instant checked); a
// task due exactly DueSoonWindow from now is due soon (inclusive boundary).
func ClassifyDeadline(t *Task, now time.Time) Timing {
	if t.DueAt == nil {
		return TimingNotApplicable
	}
	if t.Completed() {
		return TimingNotApplicable
	}
	if !t.DueAt.After(now) {
		return TimingOverdue
	}
	if t.DueAt.Sub(now) <= DueSoonWindow {
		return TimingDueSoon
	}
	return TimingNone
}

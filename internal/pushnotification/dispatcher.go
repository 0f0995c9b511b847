package pushnotification

import (
	"context"
	"fmt"

	"github.com/teampulse/teampulse/internal/stats"
)

// Dispatcher decides when a pipeline run warrants a notification.
type Dispatcher struct {
	sender *Sender
}

func NewDispatcher(sender *Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// NotifyRun alerts subscribers when a run finds overdue tasks. Quiet runs
// send nothing.
func (d *Dispatcher) NotifyRun(ctx context.Context, aggregate *stats.Aggregate) {
	overdue := 0
	for _, emp := range aggregate.EmployeeStats {
		overdue += emp.Overdue
	}
	if overdue == 0 {
		return
	}

	body := fmt.Sprintf("%d task is overdue", overdue)
	if overdue > 1 {
		body = fmt.Sprintf("%d tasks are overdue", overdue)
	}
	d.sender.SendToAll(ctx, &NotificationPayload{
		Title: "TeamPulse",
		Body:  body,
		Tag:   "overdue-tasks",
	})
}

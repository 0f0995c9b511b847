package workspace

import (
	"time"

	"github.com/teampulse/teampulse/internal/clickup"
)

// Workspace is the persisted scope selection: which team, space, and list the
// pipeline pulls tasks from. Names are kept for display only.
type Workspace struct {
	TeamID    string    `yaml:"team_id"`
	TeamName  string    `yaml:"team_name"`
	SpaceID   string    `yaml:"space_id"`
	SpaceName string    `yaml:"space_name"`
	ListID    string    `yaml:"list_id"`
	ListName  string    `yaml:"list_name"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Selector converts the workspace into a task-fetch scope.
func (w *Workspace) Selector() clickup.Selector {
	return clickup.Selector{
		TeamID:  w.TeamID,
		SpaceID: w.SpaceID,
		ListID:  w.ListID,
	}
}

package clickup

// Team is a ClickUp workspace root.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Member struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Selector scopes a task fetch. The narrowest configured scope wins:
// list, then space, then team.
type Selector struct {
	TeamID  string
	SpaceID string
	ListID  string
}

// Empty reports whether no scope is configured at all.
func (s Selector) Empty() bool {
	return s.TeamID == "" && s.SpaceID == "" && s.ListID == ""
}

// Priority levels as ClickUp encodes them on the wire.
const (
	PriorityUrgent = 4
	PriorityHigh   = 3
	PriorityNormal = 2
	PriorityLow    = 1
)

var priorityCodes = map[string]int{
	"urgent": PriorityUrgent,
	"high":   PriorityHigh,
	"normal": PriorityNormal,
	"low":    PriorityLow,
}

// PriorityCode maps a priority name to its wire code, defaulting to normal.
func PriorityCode(name string) int {
	if code, ok := priorityCodes[name]; ok {
		return code
	}
	return PriorityNormal
}

// CreateTaskRequest is the payload for task creation.
type CreateTaskRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	Priority    int     `json:"priority,omitempty"`
	Assignees   []int64 `json:"assignees,omitempty"`
	DueDate     int64   `json:"due_date,omitempty"` // epoch milliseconds
	NotifyAll   bool    `json:"notify_all"`
}

// UpdateTaskRequest is a partial update; zero fields are left untouched.
type UpdateTaskRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	DueDate     int64  `json:"due_date,omitempty"`
}

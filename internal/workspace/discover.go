package workspace

import (
	"context"
	"log/slog"
	"time"

	"github.com/teampulse/teampulse/internal/clickup"
	"github.com/teampulse/teampulse/pkg/cerr"
)

// Discover walks the workspace hierarchy and auto-selects the first team,
// space, and list, matching the original setup flow. The caller persists the
// result.
func Discover(ctx context.Context, client *clickup.Client) (*Workspace, error) {
	teams, err := client.Teams(ctx)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, cerr.NewError(cerr.NotFound, "no teams visible to this token", nil)
	}
	team := teams[0]
	slog.Info("auto-selected team", "team_id", team.ID, "name", team.Name)

	spaces, err := client.Spaces(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	if len(spaces) == 0 {
		return nil, cerr.NewError(cerr.NotFound, "team has no spaces", nil)
	}
	space := spaces[0]
	slog.Info("auto-selected space", "space_id", space.ID, "name", space.Name)

	lists, err := client.Lists(ctx, space.ID)
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return nil, cerr.NewError(cerr.NotFound, "space has no lists", nil)
	}
	list := lists[0]
	slog.Info("auto-selected list", "list_id", list.ID, "name", list.Name)

	return &Workspace{
		TeamID:    team.ID,
		TeamName:  team.Name,
		SpaceID:   space.ID,
		SpaceName: space.Name,
		ListID:    list.ID,
		ListName:  list.Name,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

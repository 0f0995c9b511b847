// Package clickup wraps the ClickUp v2 REST API: the task source and sink for
// the aggregation pipeline, plus the workspace discovery calls used by setup.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/pkg/cerr"
)

type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

func NewClient(env *config.ClickUpEnv) *Client {
	return &Client{
		baseURL: env.BaseURL,
		token:   env.APIToken,
		httpc: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Tasks fetches the raw task records for the selector's narrowest scope.
// "Not found" yields an empty slice rather than an error: the pipeline
// treats an empty workspace as zero tasks.
func (c *Client) Tasks(ctx context.Context, sel Selector) ([]any, error) {
	var endpoint string
	switch {
	case sel.ListID != "":
		endpoint = fmt.Sprintf("/list/%s/task", sel.ListID)
	case sel.SpaceID != "":
		endpoint = fmt.Sprintf("/space/%s/task", sel.SpaceID)
	case sel.TeamID != "":
		endpoint = fmt.Sprintf("/team/%s/task", sel.TeamID)
	default:
		return nil, cerr.NewError(cerr.InvalidArgument, "task fetch requires at least a team scope", nil)
	}

	var out struct {
		Tasks []any `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			slog.Warn("task scope not found, treating as empty", "endpoint", endpoint)
			return nil, nil
		}
		return nil, err
	}
	slog.Debug("fetched tasks", "endpoint", endpoint, "count", len(out.Tasks))
	return out.Tasks, nil
}

func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	var out struct {
		Teams []Team `json:"teams"`
	}
	if err := c.do(ctx, http.MethodGet, "/team", nil, &out); err != nil {
		return nil, err
	}
	return out.Teams, nil
}

func (c *Client) Spaces(ctx context.Context, teamID string) ([]Space, error) {
	var out struct {
		Spaces []Space `json:"spaces"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/team/%s/space", teamID), nil, &out); err != nil {
		return nil, err
	}
	return out.Spaces, nil
}

func (c *Client) Lists(ctx context.Context, spaceID string) ([]List, error) {
	var out struct {
		Lists []List `json:"lists"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/space/%s/list", spaceID), nil, &out); err != nil {
		return nil, err
	}
	return out.Lists, nil
}

func (c *Client) Members(ctx context.Context, teamID string) ([]Member, error) {
	var out struct {
		Members []struct {
			User Member `json:"user"`
		} `json:"members"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/team/%s/member", teamID), nil, &out); err != nil {
		return nil, err
	}
	members := make([]Member, 0, len(out.Members))
	for _, m := range out.Members {
		members = append(members, m.User)
	}
	return members, nil
}

// CreateTask creates a task in the given list and returns the raw created
// record, ready for normalization.
func (c *Client) CreateTask(ctx context.Context, listID string, req *CreateTaskRequest) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/list/%s/task", listID), req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTask applies a partial update and returns the raw updated record.
func (c *Client) UpdateTask(ctx context.Context, taskID string, req *UpdateTaskRequest) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/task/%s", taskID), req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/task/%s", taskID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal request: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return cerr.NewError(cerr.Unavailable, "clickup unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return statusError(resp.StatusCode, endpoint, detail)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return cerr.NewError(cerr.Internal, "server error",
			fmt.Errorf("failed to decode clickup response for %s: %w", endpoint, err))
	}
	return nil
}

func statusError(status int, endpoint string, detail []byte) error {
	err := fmt.Errorf("clickup returned %d for %s: %s", status, endpoint, detail)
	switch status {
	case http.StatusUnauthorized:
		return cerr.NewError(cerr.Unauthenticated, "clickup rejected credentials", err)
	case http.StatusForbidden:
		return cerr.NewError(cerr.PermissionDenied, "clickup denied access", err)
	case http.StatusNotFound:
		return cerr.NewError(cerr.NotFound, "clickup resource not found", err)
	default:
		return cerr.NewError(cerr.Unavailable, "clickup request failed", err)
	}
}

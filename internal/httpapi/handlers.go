package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/teampulse/teampulse/internal/clickup"
	"github.com/teampulse/teampulse/internal/digest"
	"github.com/teampulse/teampulse/internal/pushsubscription"
	"github.com/teampulse/teampulse/internal/report"
	"github.com/teampulse/teampulse/internal/stats"
	"github.com/teampulse/teampulse/pkg/cerr"
)

// Dashboard composes everything the frontend renders in one document. Absent
// sections come back empty, never null.
type Dashboard struct {
	TasksByAssignee map[string][]report.TaskRecord `json:"tasks_by_assignee"`
	Stats           *stats.Aggregate               `json:"stats"`
	ChatSummary     *report.ChatSummary            `json:"chat_summary"`
	Digest          *digest.Digest                 `json:"digest"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if d := s.cache.get(); d != nil {
		cerr.SetJSONResponse(ctx, d)
		return
	}

	snap, err := s.loader.Load(ctx)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "server error", err)
		return
	}
	summary, err := s.loader.LoadSummary(ctx)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "server error", err)
		return
	}
	dgst, err := s.loader.LoadDigest(ctx)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "server error", err)
		return
	}

	d := &Dashboard{
		TasksByAssignee: snap.TasksByAssignee,
		Stats:           snap.Stats,
		ChatSummary:     summary,
		Digest:          dgst,
	}
	s.cache.set(d)
	cerr.SetJSONResponse(ctx, d)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := s.loader.Load(ctx)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "server error", err)
		return
	}
	cerr.SetJSONResponse(ctx, snap.Stats)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := s.loader.Load(ctx)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "server error", err)
		return
	}
	records := snap.Flatten()
	cerr.SetJSONResponse(ctx, records)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := s.orch.Run(ctx)
	s.cache.invalidate()
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "failed to refresh reports", err)
		return
	}
	cerr.SetJSONResponse(ctx, result)
}

// taskWriteRequest is the API shape for task creation and updates. Priority is
// the human name; due_date is RFC 3339.
type taskWriteRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Assignees   []int64 `json:"assignees"`
	DueDate     string  `json:"due_date"`
}

func parseDueDate(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, cerr.NewError(cerr.InvalidArgument, "due_date must be RFC 3339", err)
	}
	return t.UnixMilli(), nil
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req taskWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Name == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "name is required", nil)
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	create := &clickup.CreateTaskRequest{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Assignees:   req.Assignees,
		DueDate:     due,
	}
	if req.Priority != "" {
		create.Priority = clickup.PriorityCode(req.Priority)
	}

	t, err := s.orch.CreateTask(ctx, create)
	s.cache.invalidate()
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := chi.URLParam(r, "id")
	var req taskWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	update := &clickup.UpdateTaskRequest{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     due,
	}
	if req.Priority != "" {
		update.Priority = clickup.PriorityCode(req.Priority)
	}

	t, err := s.orch.UpdateTask(ctx, taskID, update)
	s.cache.invalidate()
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := chi.URLParam(r, "id")
	if err := s.orch.DeleteTask(ctx, taskID); err != nil {
		s.cache.invalidate()
		cerr.SetJSONError(ctx, err)
		return
	}
	s.cache.invalidate()
	cerr.SetJSONResponse(ctx, map[string]string{"id": taskID})
}

func (s *Server) handleVAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), map[string]string{
		"public_key": s.vapidEnv.VAPIDPublicKey,
	})
}

// apiSubscription is the JSON shape for listing subscriptions; key material is
// never echoed back.
type apiSubscription struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subs, err := s.subs.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	out := make([]apiSubscription, 0, len(subs))
	for _, sub := range subs {
		out = append(out, apiSubscription{
			ID:        sub.ID,
			Endpoint:  sub.Endpoint,
			CreatedAt: sub.CreatedAt,
		})
	}
	cerr.SetJSONResponse(ctx, out)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "endpoint and keys are required", nil)
		return
	}

	sub := &pushsubscription.Subscription{
		ID:        ulid.Make().String(),
		Endpoint:  req.Endpoint,
		P256dhKey: req.Keys.P256dh,
		AuthKey:   req.Keys.Auth,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]string{"id": sub.ID})
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Endpoint == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "endpoint is required", nil)
		return
	}
	if err := s.subs.DeleteByEndpoint(ctx, req.Endpoint); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, map[string]string{"endpoint": req.Endpoint})
}

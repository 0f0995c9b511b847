// Package orchestrator owns one full aggregation run: pull from the external
// collaborators, drive the pure core (group, compute, emit), and fan results
// out to reports and notifications. Collaborator failures degrade their
// section of the result instead of aborting the run.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sourcegraph/conc"

	"github.com/teampulse/teampulse/internal/chat"
	"github.com/teampulse/teampulse/internal/clickup"
	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/internal/digest"
	"github.com/teampulse/teampulse/internal/pushnotification"
	"github.com/teampulse/teampulse/internal/report"
	"github.com/teampulse/teampulse/internal/stats"
	"github.com/teampulse/teampulse/internal/summarize"
	"github.com/teampulse/teampulse/internal/task"
	"github.com/teampulse/teampulse/internal/workspace"
	"github.com/teampulse/teampulse/pkg/cerr"
	"github.com/teampulse/teampulse/pkg/panicerr"
)

// chatHistoryLimit caps how far back the chat fetch paginates per run.
const chatHistoryLimit = 200

// RunResult records what one run produced and which collaborator sections
// degraded. Degraded maps a section name to the failure that emptied it.
type RunResult struct {
	RunID       string              `json:"run_id"`
	StartedAt   time.Time           `json:"started_at"`
	Duration    time.Duration       `json:"-"`
	TaskCount   int                 `json:"task_count"`
	Skipped     int                 `json:"skipped"`
	Stats       *stats.Aggregate    `json:"stats"`
	ChatSummary *report.ChatSummary `json:"chat_summary"`
	Digest      *digest.Digest      `json:"digest"`
	Degraded    map[string]string   `json:"degraded,omitempty"`
}

func (r *RunResult) degrade(section string, err error) {
	if r.Degraded == nil {
		r.Degraded = make(map[string]string)
	}
	r.Degraded[section] = err.Error()
	slog.Warn("run section degraded", "run_id", r.RunID, "section", section, "error", err)
}

type Orchestrator struct {
	clickup       *clickup.Client
	chat          *chat.Fetcher
	summarizer    summarize.Summarizer
	model         string
	workspaceRepo workspace.Repository
	emitter       *report.Emitter
	dispatcher    *pushnotification.Dispatcher
	clickupEnv    *config.ClickUpEnv
	summarizerEnv *config.SummarizerEnv

	// runMu serializes runs so concurrent refreshes never interleave report
	// writes.
	runMu sync.Mutex
}

func New(
	clickupClient *clickup.Client,
	chatFetcher *chat.Fetcher,
	summarizer summarize.Summarizer,
	model string,
	workspaceRepo workspace.Repository,
	emitter *report.Emitter,
	dispatcher *pushnotification.Dispatcher,
	clickupEnv *config.ClickUpEnv,
	summarizerEnv *config.SummarizerEnv,
) *Orchestrator {
	return &Orchestrator{
		clickup:       clickupClient,
		chat:          chatFetcher,
		summarizer:    summarizer,
		model:         model,
		workspaceRepo: workspaceRepo,
		emitter:       emitter,
		dispatcher:    dispatcher,
		clickupEnv:    clickupEnv,
		summarizerEnv: summarizerEnv,
	}
}

// Run executes the whole pipeline once. The returned result is always
// non-nil; a non-nil error means the report emission itself failed and the
// persisted documents may be stale.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	result := &RunResult{
		RunID:     ulid.Make().String(),
		StartedAt: time.Now().UTC(),
	}
	slog.Info("starting run", "run_id", result.RunID)

	sel := o.resolveSelector(ctx)

	var (
		wg       conc.WaitGroup
		rawTasks []any
		tasksErr error
		messages []chat.Message
		chatErr  error
	)
	wg.Go(func() {
		tasksErr = panicerr.Safe(func() error {
			var err error
			rawTasks, err = o.clickup.Tasks(ctx, sel)
			return err
		})()
	})
	wg.Go(func() {
		chatErr = panicerr.Safe(func() error {
			var err error
			messages, err = o.chat.History(ctx, chatHistoryLimit)
			return err
		})()
	})
	wg.Wait()

	if tasksErr != nil {
		result.degrade("tasks", tasksErr)
		rawTasks = nil
	}
	if chatErr != nil {
		result.degrade("chat", chatErr)
		messages = nil
	}

	grouped := task.Group(rawTasks)
	aggregate := stats.Compute(grouped, time.Now().UTC())
	result.TaskCount = grouped.Total()
	result.Skipped = grouped.Skipped
	result.Stats = aggregate

	emitErr := o.emitter.Emit(ctx, grouped, aggregate)
	if emitErr != nil {
		result.degrade("reports", emitErr)
	}

	result.ChatSummary = o.summarizeChat(ctx, result, messages)
	result.Digest = o.buildDigest(ctx, result, grouped)

	o.dispatcher.NotifyRun(ctx, aggregate)

	result.Duration = time.Since(result.StartedAt)
	slog.Info("run finished",
		"run_id", result.RunID,
		"tasks", result.TaskCount,
		"skipped", result.Skipped,
		"employees", aggregate.TotalEmployees,
		"degraded", len(result.Degraded),
		"duration", result.Duration,
	)
	return result, emitErr
}

func (o *Orchestrator) summarizeChat(ctx context.Context, result *RunResult, messages []chat.Message) *report.ChatSummary {
	summary := &report.ChatSummary{
		Model:        o.model,
		MessageCount: len(messages),
		Participants: participantCounts(messages),
		GeneratedAt:  time.Now().UTC(),
	}
	corpus := chat.Corpus(messages)
	if corpus != "" {
		text, err := o.summarizer.Summarize(ctx, corpus,
			o.summarizerEnv.MinLength, o.summarizerEnv.MaxLength)
		if err != nil {
			result.degrade("chat_summary", err)
		} else {
			summary.Summary = text
		}
	}
	if err := o.emitter.EmitSummary(ctx, summary); err != nil {
		result.degrade("chat_summary_report", err)
	}
	return summary
}

func participantCounts(messages []chat.Message) map[string]int {
	if len(messages) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for author, byAuthor := range chat.GroupByAuthor(messages) {
		counts[author] = len(byAuthor)
	}
	return counts
}

func (o *Orchestrator) buildDigest(ctx context.Context, result *RunResult, grouped *task.Grouped) *digest.Digest {
	d := digest.Build(ctx, grouped.Flatten(), o.summarizer,
		o.summarizerEnv.MinLength, o.summarizerEnv.MaxLength)
	if err := o.emitter.EmitDigest(ctx, d); err != nil {
		result.degrade("digest_report", err)
	}
	return d
}

// resolveSelector prefers the persisted workspace selection and falls back to
// the scope configured through the environment.
func (o *Orchestrator) resolveSelector(ctx context.Context) clickup.Selector {
	ws, err := o.workspaceRepo.Load(ctx)
	if err == nil {
		return ws.Selector()
	}
	if !cerr.IsCode(err, cerr.NotFound) {
		slog.Warn("failed to load workspace, falling back to env scope", "error", err)
	}
	return clickup.Selector{
		TeamID:  o.clickupEnv.TeamID,
		SpaceID: o.clickupEnv.SpaceID,
		ListID:  o.clickupEnv.ListID,
	}
}

// CreateTask creates the task in the selected list, then re-runs the pipeline
// so the reports reflect it. Statistics are never patched incrementally.
func (o *Orchestrator) CreateTask(ctx context.Context, req *clickup.CreateTaskRequest) (*task.Task, error) {
	listID := o.resolveSelector(ctx).ListID
	if listID == "" {
		return nil, cerr.NewError(cerr.FailedPrecondition, "no list selected, run setup first", nil)
	}
	raw, err := o.clickup.CreateTask(ctx, listID, req)
	if err != nil {
		return nil, err
	}
	return o.normalizeAndRerun(ctx, raw)
}

// UpdateTask applies a partial update, then re-runs the pipeline.
func (o *Orchestrator) UpdateTask(ctx context.Context, taskID string, req *clickup.UpdateTaskRequest) (*task.Task, error) {
	raw, err := o.clickup.UpdateTask(ctx, taskID, req)
	if err != nil {
		return nil, err
	}
	return o.normalizeAndRerun(ctx, raw)
}

// CloseTask marks the task complete, then re-runs the pipeline.
func (o *Orchestrator) CloseTask(ctx context.Context, taskID string) (*task.Task, error) {
	return o.UpdateTask(ctx, taskID, &clickup.UpdateTaskRequest{Status: "complete"})
}

// DeleteTask removes the task, then re-runs the pipeline.
func (o *Orchestrator) DeleteTask(ctx context.Context, taskID string) error {
	if err := o.clickup.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	o.rerun(ctx)
	return nil
}

func (o *Orchestrator) normalizeAndRerun(ctx context.Context, raw map[string]any) (*task.Task, error) {
	t, ok := task.Normalize(raw)
	if !ok {
		return nil, cerr.NewError(cerr.Internal, "server error", nil)
	}
	o.rerun(ctx)
	return t, nil
}

// rerun refreshes the reports after a write-through; a failed refresh leaves
// stale reports but never fails the write that triggered it.
func (o *Orchestrator) rerun(ctx context.Context) {
	if _, err := o.Run(ctx); err != nil {
		slog.Warn("pipeline re-run after task change failed", "error", err)
	}
}

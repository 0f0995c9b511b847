package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/teampulse/teampulse/internal/chat"
	"github.com/teampulse/teampulse/internal/clickup"
	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/internal/orchestrator"
	"github.com/teampulse/teampulse/internal/pushnotification"
	pushsubrepo "github.com/teampulse/teampulse/internal/pushsubscription/repositoryimpl"
	"github.com/teampulse/teampulse/internal/report"
	"github.com/teampulse/teampulse/internal/summarize"
	"github.com/teampulse/teampulse/internal/workspace"
	"github.com/teampulse/teampulse/pkg/storage"
)

// application wires the pipeline the same way the server does, minus the HTTP
// surface.
type application struct {
	env           *config.Env
	orch          *orchestrator.Orchestrator
	loader        *report.Loader
	clickupClient *clickup.Client
	chatFetcher   *chat.Fetcher
	summarizer    *summarize.HFClient
	workspaceRepo workspace.Repository
}

func newApp(env *config.Env) (*application, error) {
	var (
		store storage.Storage
		err   error
	)
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
	default:
		store, err = storage.NewLocal(env.StorageEnv.BaseDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	workspaceRepo := workspace.NewYAMLRepository(store)
	pushSubRepo := pushsubrepo.NewYAMLRepository(store)

	clickupEnv := config.ClickUpEnvFromEnv(env)
	clickupClient := clickup.NewClient(clickupEnv)
	chatFetcher := chat.NewFetcher(config.DiscordEnvFromEnv(env))

	summarizerEnv := config.SummarizerEnvFromEnv(env)
	summarizer, err := summarize.NewHFClient(summarizerEnv, summarize.NewRegistry())
	if err != nil {
		return nil, err
	}

	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSender := pushnotification.NewSender(vapidEnv, pushSubRepo)
	pushDispatcher := pushnotification.NewDispatcher(pushSender)

	orch := orchestrator.New(
		clickupClient,
		chatFetcher,
		summarizer,
		summarizer.Model(),
		workspaceRepo,
		report.NewEmitter(store),
		pushDispatcher,
		clickupEnv,
		summarizerEnv,
	)

	return &application{
		env:           env,
		orch:          orch,
		loader:        report.NewLoader(store),
		clickupClient: clickupClient,
		chatFetcher:   chatFetcher,
		summarizer:    summarizer,
		workspaceRepo: workspaceRepo,
	}, nil
}

func (a *application) setup(ctx context.Context) error {
	ws, err := workspace.Discover(ctx, a.clickupClient)
	if err != nil {
		return err
	}
	if err := a.workspaceRepo.Save(ctx, ws); err != nil {
		return err
	}
	fmt.Printf("Workspace saved: team=%s space=%s list=%s\n", ws.TeamName, ws.SpaceName, ws.ListName)
	return nil
}

func (a *application) run(ctx context.Context) error {
	result, err := a.orch.Run(ctx)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *application) stats(ctx context.Context) error {
	snap, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}
	agg := snap.Stats

	header := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	header.Fprintln(w, "EMPLOYEE\tTOTAL\tDONE\tPENDING\tOVERDUE\tDUE SOON\tRATE")
	for _, name := range sortedKeys(agg.EmployeeStats) {
		emp := agg.EmployeeStats[name]
		overdue := fmt.Sprint(emp.Overdue)
		if emp.Overdue > 0 {
			overdue = bad(overdue)
		}
		dueSoon := fmt.Sprint(emp.DueSoon)
		if emp.DueSoon > 0 {
			dueSoon = warn(dueSoon)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\t%.2f%%\n",
			name, emp.Total, emp.Completed, emp.Pending, overdue, dueSoon, emp.CompletionRate)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d employees, %d tasks\n", agg.TotalEmployees, agg.TotalTasks)
	return nil
}

func (a *application) summarize(ctx context.Context) error {
	messages, err := a.chatFetcher.History(ctx, 0)
	if err != nil {
		return err
	}
	corpus := chat.Corpus(messages)
	participants := make(map[string]int)
	for author, byAuthor := range chat.GroupByAuthor(messages) {
		participants[author] = len(byAuthor)
	}
	summary := &report.ChatSummary{
		Model:        a.summarizer.Model(),
		MessageCount: len(messages),
		Participants: participants,
		GeneratedAt:  time.Now().UTC(),
	}
	if corpus != "" {
		text, err := a.summarizer.Summarize(ctx, corpus, a.env.SummarizerEnv.MinLength, a.env.SummarizerEnv.MaxLength)
		if err != nil {
			return err
		}
		summary.Summary = text
	}
	return printJSON(summary)
}

func (a *application) models() error {
	registry := summarize.NewRegistry()
	header := color.New(color.FgCyan, color.Bold)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	header.Fprintln(w, "KEY\tMODEL\tSIZE\tPARAMS\tSPEED")
	keys := registry.Keys(summarize.KindSummarization)
	sort.Strings(keys)
	for _, key := range keys {
		model, err := registry.Model(summarize.KindSummarization, key)
		if err != nil {
			continue
		}
		spec := registry.Spec(model)
		size, params, speed := spec.Size, spec.Parameters, spec.Speed
		if size == "" {
			size, params, speed = "-", "-", "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", key, model, size, params, speed)
	}
	return w.Flush()
}

func (a *application) createTask(ctx context.Context) error {
	due, err := dueMillis(*taskCreateDue)
	if err != nil {
		return err
	}
	req := &clickup.CreateTaskRequest{
		Name:        *taskCreateName,
		Description: *taskCreateDesc,
		Status:      *taskCreateStatus,
		DueDate:     due,
	}
	if *taskCreatePriority != "" {
		req.Priority = clickup.PriorityCode(*taskCreatePriority)
	}
	t, err := a.orch.CreateTask(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(t)
}

func (a *application) updateTask(ctx context.Context) error {
	due, err := dueMillis(*taskUpdateDue)
	if err != nil {
		return err
	}
	req := &clickup.UpdateTaskRequest{
		Name:        *taskUpdateName,
		Description: *taskUpdateDesc,
		Status:      *taskUpdateStatus,
		DueDate:     due,
	}
	if *taskUpdatePriority != "" {
		req.Priority = clickup.PriorityCode(*taskUpdatePriority)
	}
	t, err := a.orch.UpdateTask(ctx, *taskUpdateID, req)
	if err != nil {
		return err
	}
	return printJSON(t)
}

func (a *application) closeTask(ctx context.Context) error {
	t, err := a.orch.CloseTask(ctx, *taskCloseID)
	if err != nil {
		return err
	}
	return printJSON(t)
}

func (a *application) deleteTask(ctx context.Context) error {
	if err := a.orch.DeleteTask(ctx, *taskDeleteID); err != nil {
		return err
	}
	fmt.Printf("Deleted task %s\n", *taskDeleteID)
	return nil
}

func (a *application) listTasks(ctx context.Context) error {
	snap, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	header.Fprintln(w, "ID\tNAME\tEMPLOYEE\tSTATUS\tDUE")
	for _, rec := range snap.Flatten() {
		due := "-"
		if rec.DueAt != nil {
			due = rec.DueAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rec.ID, rec.Name, rec.Employee, rec.Status, due)
	}
	return w.Flush()
}

func dueMillis(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, fmt.Errorf("due date must be RFC 3339: %w", err)
	}
	return t.UnixMilli(), nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

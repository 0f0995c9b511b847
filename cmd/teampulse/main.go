package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/pkg/clog"
)

var (
	app = kingpin.New("teampulse", "Team task aggregation and reporting tool")

	setupCmd = app.Command("setup", "Discover and persist the workspace selection")

	runCmd = app.Command("run", "Run the aggregation pipeline once")

	statsCmd = app.Command("stats", "Show per-employee statistics from the last run")

	summarizeCmd = app.Command("summarize", "Summarize the chat channel history")

	modelsCmd = app.Command("models", "List available summarization models")

	// Task commands
	taskCmd = app.Command("task", "Task management commands")

	taskCreateCmd      = taskCmd.Command("create", "Create a task")
	taskCreateName     = taskCreateCmd.Arg("name", "Task name").Required().String()
	taskCreateDesc     = taskCreateCmd.Flag("description", "Task description").String()
	taskCreateStatus   = taskCreateCmd.Flag("status", "Initial status").String()
	taskCreatePriority = taskCreateCmd.Flag("priority", "Priority (urgent, high, normal, low)").String()
	taskCreateDue      = taskCreateCmd.Flag("due", "Due date (RFC 3339)").String()

	taskUpdateCmd      = taskCmd.Command("update", "Update a task")
	taskUpdateID       = taskUpdateCmd.Arg("id", "Task ID").Required().String()
	taskUpdateName     = taskUpdateCmd.Flag("name", "New name").String()
	taskUpdateDesc     = taskUpdateCmd.Flag("description", "New description").String()
	taskUpdateStatus   = taskUpdateCmd.Flag("status", "New status").String()
	taskUpdatePriority = taskUpdateCmd.Flag("priority", "Priority (urgent, high, normal, low)").String()
	taskUpdateDue      = taskUpdateCmd.Flag("due", "Due date (RFC 3339)").String()

	taskCloseCmd = taskCmd.Command("close", "Mark a task complete")
	taskCloseID  = taskCloseCmd.Arg("id", "Task ID").Required().String()

	taskDeleteCmd = taskCmd.Command("delete", "Delete a task")
	taskDeleteID  = taskDeleteCmd.Arg("id", "Task ID").Required().String()

	taskListCmd = taskCmd.Command("list", "List tasks from the last run")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading environment: %v\n", err)
		os.Exit(1)
	}
	handler := clog.NewTextHandler(os.Stderr, clog.WithLevel(env.SlogLevel()))
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	a, err := newApp(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case setupCmd.FullCommand():
		err = a.setup(ctx)
	case runCmd.FullCommand():
		err = a.run(ctx)
	case statsCmd.FullCommand():
		err = a.stats(ctx)
	case summarizeCmd.FullCommand():
		err = a.summarize(ctx)
	case modelsCmd.FullCommand():
		err = a.models()
	case taskCreateCmd.FullCommand():
		err = a.createTask(ctx)
	case taskUpdateCmd.FullCommand():
		err = a.updateTask(ctx)
	case taskCloseCmd.FullCommand():
		err = a.closeTask(ctx)
	case taskDeleteCmd.FullCommand():
		err = a.deleteTask(ctx)
	case taskListCmd.FullCommand():
		err = a.listTasks(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teampulse/teampulse/internal/chat"
	"github.com/teampulse/teampulse/internal/clickup"
	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/internal/httpapi"
	"github.com/teampulse/teampulse/internal/orchestrator"
	"github.com/teampulse/teampulse/internal/pushnotification"
	pushsubrepo "github.com/teampulse/teampulse/internal/pushsubscription/repositoryimpl"
	"github.com/teampulse/teampulse/internal/report"
	"github.com/teampulse/teampulse/internal/summarize"
	"github.com/teampulse/teampulse/internal/workspace"
	"github.com/teampulse/teampulse/pkg/clog"
	"github.com/teampulse/teampulse/pkg/storage"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocal(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
	}

	// Setup repositories
	workspaceRepo := workspace.NewYAMLRepository(store)
	pushSubRepo := pushsubrepo.NewYAMLRepository(store)

	// Setup collaborator clients
	clickupEnv := config.ClickUpEnvFromEnv(env)
	clickupClient := clickup.NewClient(clickupEnv)
	chatFetcher := chat.NewFetcher(config.DiscordEnvFromEnv(env))

	summarizerEnv := config.SummarizerEnvFromEnv(env)
	summarizer, err := summarize.NewHFClient(summarizerEnv, summarize.NewRegistry())
	if err != nil {
		slog.Error("failed to create summarizer", "error", err)
		os.Exit(1)
	}

	// Setup push notification
	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSender := pushnotification.NewSender(vapidEnv, pushSubRepo)
	pushDispatcher := pushnotification.NewDispatcher(pushSender)

	// Setup pipeline
	emitter := report.NewEmitter(store)
	loader := report.NewLoader(store)
	orch := orchestrator.New(
		clickupClient,
		chatFetcher,
		summarizer,
		summarizer.Model(),
		workspaceRepo,
		emitter,
		pushDispatcher,
		clickupEnv,
		summarizerEnv,
	)

	srv := httpapi.NewServer(&env.BaseEnv, vapidEnv, orch, loader, pushSubRepo)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if local, ok := store.(*storage.Local); ok {
		if err := srv.WatchReports(ctx, local); err != nil {
			slog.Warn("failed to watch report directory", "error", err)
		}
	}

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

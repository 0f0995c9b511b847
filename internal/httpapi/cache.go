package httpapi

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/teampulse/teampulse/internal/report"
	"github.com/teampulse/teampulse/pkg/storage"
)

// dashboardCache holds the last composed dashboard document. Handlers
// invalidate it after any write-through; the report watcher invalidates it
// when the files change underneath the server.
type dashboardCache struct {
	mu sync.RWMutex
	d  *Dashboard
}

func (c *dashboardCache) get() *Dashboard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.d
}

func (c *dashboardCache) set(d *Dashboard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.d = d
}

func (c *dashboardCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.d = nil
}

// WatchReports invalidates the dashboard cache whenever the emitted report
// files change on disk, covering runs done by the CLI against the same store.
// Returns once the watcher is installed; watching stops when ctx is done.
func (s *Server) WatchReports(ctx context.Context, local *storage.Local) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	reportsDir := filepath.Join(local.BaseDir(), filepath.Dir(report.StatsKey))
	// The reports directory may not exist until the first run; watch the base
	// directory too and pick it up on creation.
	if err := watcher.Add(local.BaseDir()); err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(reportsDir); err != nil {
		slog.Debug("reports directory not watchable yet", "dir", reportsDir, "error", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op.Has(fsnotify.Create) && event.Name == reportsDir {
					if err := watcher.Add(reportsDir); err != nil {
						slog.Warn("failed to watch reports directory", "dir", reportsDir, "error", err)
					}
					continue
				}
				if !strings.HasPrefix(event.Name, reportsDir) {
					continue
				}
				slog.Debug("report files changed, invalidating dashboard cache", "file", event.Name, "op", event.Op)
				s.cache.invalidate()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("report watcher error", "error", err)
			}
		}
	}()
	return nil
}

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Local implements Storage on the local filesystem. Writes are atomic
// (temp file + rename) so a crashed run never leaves a torn report behind.
type Local struct {
	baseDir string
	mu      sync.RWMutex
}

// NewLocal creates a Local store rooted at baseDir, creating it if needed.
func NewLocal(baseDir string) (*Local, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base dir: %w", err)
	}
	return &Local{baseDir: abs}, nil
}

// BaseDir returns the absolute root of the store. Callers that need to watch
// the directory (e.g. with fsnotify) use this.
func (l *Local) BaseDir() string {
	return l.baseDir
}

func (l *Local) resolve(key string) string {
	return filepath.Join(l.baseDir, filepath.Clean(key))
}

func (l *Local) Read(_ context.Context, key string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	data, err := os.ReadFile(l.resolve(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (l *Local) Write(_ context.Context, key string, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.resolve(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", key, err)
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file for %s: %w", key, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.resolve(key)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (l *Local) List(_ context.Context, prefix string) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries, err := os.ReadDir(l.resolve(prefix))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		keys = append(keys, strings.TrimPrefix(filepath.Join(prefix, entry.Name()), "/"))
	}
	return keys, nil
}

func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, err := os.Stat(l.resolve(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return true, nil
}

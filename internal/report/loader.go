package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/teampulse/teampulse/internal/stats"
	"github.com/teampulse/teampulse/pkg/storage"
)

// Snapshot is the last emitted report pair. Consumers must tolerate either
// document being absent, so missing files load as empty sections.
type Snapshot struct {
	TasksByAssignee map[string][]TaskRecord `json:"tasks_by_assignee"`
	Stats           *stats.Aggregate        `json:"stats"`
}

// Flatten returns all task records in deterministic order: sorted assignee,
// then emitted order within each assignee.
func (s *Snapshot) Flatten() []TaskRecord {
	keys := make([]string, 0, len(s.TasksByAssignee))
	for key := range s.TasksByAssignee {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var flat []TaskRecord
	for _, key := range keys {
		flat = append(flat, s.TasksByAssignee[key]...)
	}
	if flat == nil {
		flat = []TaskRecord{}
	}
	return flat
}

type Loader struct {
	storage storage.Storage
}

func NewLoader(s storage.Storage) *Loader {
	return &Loader{storage: s}
}

// Load reads both report documents back. An absent document degrades to its
// empty value; only a malformed document or a storage failure is an error.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		TasksByAssignee: map[string][]TaskRecord{},
		Stats: &stats.Aggregate{
			EmployeeStats: map[string]*stats.Employee{},
		},
	}

	data, err := l.storage.Read(ctx, TasksKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load grouped tasks report: %w", err)
	default:
		if err := json.Unmarshal(data, &snap.TasksByAssignee); err != nil {
			return nil, fmt.Errorf("failed to parse grouped tasks report: %w", err)
		}
	}

	data, err = l.storage.Read(ctx, StatsKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load statistics report: %w", err)
	default:
		if err := json.Unmarshal(data, &snap.Stats); err != nil {
			return nil, fmt.Errorf("failed to parse statistics report: %w", err)
		}
	}

	return snap, nil
}

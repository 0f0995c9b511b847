package workspace

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/teampulse/teampulse/pkg/cerr"
	"github.com/teampulse/teampulse/pkg/storage"
)

const workspaceKey = "workspace.yaml"

type Repository interface {
	Load(ctx context.Context) (*Workspace, error)
	Save(ctx context.Context, w *Workspace) error
}

// YAMLRepository persists the workspace selection as a single YAML document.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func (r *YAMLRepository) Load(ctx context.Context) (*Workspace, error) {
	data, err := r.storage.Read(ctx, workspaceKey)
	if err != nil {
		return nil, cerr.WrapStorageReadError("workspace", err)
	}
	var w Workspace
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal workspace: %w", err))
	}
	return &w, nil
}

func (r *YAMLRepository) Save(ctx context.Context, w *Workspace) error {
	data, err := yaml.Marshal(w)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal workspace: %w", err))
	}
	if err := r.storage.Write(ctx, workspaceKey, data); err != nil {
		return cerr.WrapStorageWriteError("workspace", err)
	}
	return nil
}

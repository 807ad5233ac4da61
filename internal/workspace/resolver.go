// Package workspace resolves the active tenant and provisions the
// default workspace on first run.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"sprintboard/internal/models"
)

const (
	// PreferenceKey is where the active workspace is persisted.
	PreferenceKey = "active_workspace"
	// DefaultName names the workspace created on first run.
	DefaultName = "Default workspace"
)

var (
	// ErrNoWorkspace is returned when no workspace exists yet.
	ErrNoWorkspace = errors.New("no workspace available")
	// ErrUnknown is returned when selecting a workspace that does not exist.
	ErrUnknown = errors.New("unknown workspace")
)

// Store is the persistence the resolver needs.
type Store interface {
	ListWorkspaces(ctx context.Context) ([]models.Workspace, error)
	CreateWorkspaceIfNone(ctx context.Context, name, owner string) (models.Workspace, bool, error)
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// state is the persisted blob. Fields missing from older blobs keep
// their zero value.
type state struct {
	WorkspaceID string `json:"workspace_id"`
}

// Resolver tracks the single active workspace.
type Resolver struct {
	store  Store
	logger *slog.Logger
	mu     sync.Mutex
}

// New returns a resolver backed by store.
func New(store Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{store: store, logger: logger}
}

// EnsureDefault creates and selects a default workspace when none exist.
// When a workspace already exists it does nothing and reports false.
func (r *Resolver) EnsureDefault(ctx context.Context, owner string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, created, err := r.store.CreateWorkspaceIfNone(ctx, DefaultName, owner)
	if err != nil {
		return false, fmt.Errorf("provision workspace: %w", err)
	}
	if !created {
		return false, nil
	}
	r.logger.Info("provisioned default workspace", slog.String("workspace", ws.ID))
	if err := r.persist(ctx, ws.ID); err != nil {
		return true, err
	}
	return true, nil
}

// Active returns the active workspace. A persisted id that no longer
// exists falls back to the oldest workspace, which is then persisted.
func (r *Resolver) Active(ctx context.Context) (models.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.store.ListWorkspaces(ctx)
	if err != nil {
		return models.Workspace{}, fmt.Errorf("list workspaces: %w", err)
	}
	if len(all) == 0 {
		return models.Workspace{}, ErrNoWorkspace
	}

	st, err := r.load(ctx)
	if err != nil {
		return models.Workspace{}, err
	}
	for _, w := range all {
		if w.ID == st.WorkspaceID {
			return w, nil
		}
	}

	fallback := all[0]
	if st.WorkspaceID != "" {
		r.logger.Warn("active workspace missing, falling back",
			slog.String("stored", st.WorkspaceID), slog.String("workspace", fallback.ID))
	}
	if err := r.persist(ctx, fallback.ID); err != nil {
		return models.Workspace{}, err
	}
	return fallback, nil
}

// Select makes id the active workspace.
func (r *Resolver) Select(ctx context.Context, id string) (models.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.store.ListWorkspaces(ctx)
	if err != nil {
		return models.Workspace{}, fmt.Errorf("list workspaces: %w", err)
	}
	for _, w := range all {
		if w.ID == id {
			return w, r.persist(ctx, id)
		}
	}
	return models.Workspace{}, fmt.Errorf("workspace %s: %w", id, ErrUnknown)
}

func (r *Resolver) load(ctx context.Context) (state, error) {
	raw, ok, err := r.store.GetPreference(ctx, PreferenceKey)
	if err != nil {
		return state{}, fmt.Errorf("load active workspace: %w", err)
	}
	var st state
	if !ok {
		return st, nil
	}
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		r.logger.Warn("discarding unreadable workspace state", slog.String("error", err.Error()))
		return state{}, nil
	}
	return st, nil
}

func (r *Resolver) persist(ctx context.Context, id string) error {
	raw, err := json.Marshal(state{WorkspaceID: id})
	if err != nil {
		return fmt.Errorf("encode workspace state: %w", err)
	}
	if err := r.store.SetPreference(ctx, PreferenceKey, string(raw)); err != nil {
		return fmt.Errorf("persist active workspace: %w", err)
	}
	return nil
}

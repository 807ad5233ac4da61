// Package planner is the application layer between the HTTP handlers and
// the store. It resolves the active workspace, validates writes, and runs
// the board and metrics engines over a freshly loaded snapshot.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"sprintboard/internal/entity"
	"sprintboard/internal/events"
	"sprintboard/internal/models"
	"sprintboard/internal/storage/sqlite"
	"sprintboard/internal/workspace"
)

// Service exposes every use case of the planning board.
type Service struct {
	store    *sqlite.Store
	scope    *workspace.Resolver
	logger   *slog.Logger
	now      func() time.Time
	markdown goldmark.Markdown
}

// New wires a service over an opened store and a scope resolver.
func New(store *sqlite.Store, scope *workspace.Resolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:    store,
		scope:    scope,
		logger:   logger,
		now:      time.Now,
		markdown: newMarkdown(),
	}
}

func (s *Service) workspaceID(ctx context.Context) (string, error) {
	ws, err := s.scope.Active(ctx)
	if err != nil {
		return "", err
	}
	return ws.ID, nil
}

// Snapshot loads every collection of the active workspace.
func (s *Service) Snapshot(ctx context.Context) (*entity.Snapshot, error) {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return nil, err
	}
	return entity.Load(ctx, s.store, ws)
}

// Collection returns one collection of the active workspace together
// with the workspace it was read from. The workspaces collection is
// global and reported with an empty workspace id.
func (s *Service) Collection(ctx context.Context, name string) (any, string, error) {
	if name == models.CollectionWorkspaces {
		all, err := s.store.ListWorkspaces(ctx)
		return all, "", err
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, "", err
	}
	data, ok := snap.Collection(name)
	if !ok {
		return nil, "", fmt.Errorf("collection %q: %w", name, sqlite.ErrNotFound)
	}
	return data, snap.WorkspaceID, nil
}

// Hub is where store mutations are announced.
func (s *Service) Hub() *events.Hub {
	return s.store.Hub()
}

// ListWorkspaces returns every workspace, oldest first.
func (s *Service) ListWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	return s.store.ListWorkspaces(ctx)
}

// CreateWorkspace validates and persists a new workspace. It does not
// change the active one.
func (s *Service) CreateWorkspace(ctx context.Context, w models.Workspace) (models.Workspace, error) {
	w.Name = strings.TrimSpace(w.Name)
	if err := models.Validate(&w); err != nil {
		return models.Workspace{}, err
	}
	return s.store.CreateWorkspace(ctx, w.Name, w.Owner)
}

// DeleteWorkspace removes a workspace with all its data. When it was
// the active one the resolver falls back on the next read.
func (s *Service) DeleteWorkspace(ctx context.Context, id string) error {
	return s.store.DeleteWorkspace(ctx, id)
}

// ActiveWorkspace returns the workspace every other call is scoped to.
func (s *Service) ActiveWorkspace(ctx context.Context) (models.Workspace, error) {
	return s.scope.Active(ctx)
}

// SelectWorkspace switches the active workspace. Subscribers of the
// workspaces collection are notified so they can resubscribe.
func (s *Service) SelectWorkspace(ctx context.Context, id string) (models.Workspace, error) {
	ws, err := s.scope.Select(ctx, id)
	if err != nil {
		return models.Workspace{}, err
	}
	s.logger.Info("active workspace changed", slog.String("workspace", ws.ID))
	s.store.Hub().Publish(events.Change{Collection: models.CollectionWorkspaces})
	return ws, nil
}

// IsNotFound reports whether err means a missing record or workspace.
func IsNotFound(err error) bool {
	return errors.Is(err, sqlite.ErrNotFound) || errors.Is(err, workspace.ErrUnknown)
}

func invalid(field, msg string) error {
	return &models.ValidationError{Fields: map[string]string{field: msg}}
}

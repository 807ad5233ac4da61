package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"sprintboard/internal/models"
)

// ListWorkspaces retrieves all workspaces ordered by creation date.
func (s *Store) ListWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, owner, created_at FROM workspaces ORDER BY created_at ASC, name`)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := []models.Workspace{}
	for rows.Next() {
		var w models.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.Owner, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, w)
	}
	return workspaces, rows.Err()
}

// GetWorkspace fetches a workspace by id.
func (s *Store) GetWorkspace(ctx context.Context, id string) (models.Workspace, error) {
	var w models.Workspace
	err := s.db.QueryRowContext(ctx, `SELECT id, name, owner, created_at FROM workspaces WHERE id = ?`, id).
		Scan(&w.ID, &w.Name, &w.Owner, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Workspace{}, fmt.Errorf("workspace %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Workspace{}, fmt.Errorf("get workspace: %w", err)
	}
	return w, nil
}

// CreateWorkspace persists a workspace under a fresh UUID.
func (s *Store) CreateWorkspace(ctx context.Context, name, owner string) (models.Workspace, error) {
	if strings.TrimSpace(name) == "" {
		return models.Workspace{}, fmt.Errorf("workspace name must not be empty")
	}
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO workspaces(id, name, owner) VALUES(?, ?, ?)`, id, strings.TrimSpace(name), owner); err != nil {
		return models.Workspace{}, fmt.Errorf("insert workspace: %w", err)
	}
	s.publish(models.CollectionWorkspaces, "")
	return s.GetWorkspace(ctx, id)
}

// CreateWorkspaceIfNone creates a workspace only when the table is empty.
// The check and the insert share one transaction. The boolean reports
// whether a workspace was created.
func (s *Store) CreateWorkspaceIfNone(ctx context.Context, name, owner string) (models.Workspace, bool, error) {
	id := uuid.NewString()
	created := false
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM workspaces`).Scan(&count); err != nil {
			return fmt.Errorf("count workspaces: %w", err)
		}
		if count > 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO workspaces(id, name, owner) VALUES(?, ?, ?)`, id, name, owner); err != nil {
			return fmt.Errorf("insert workspace: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return models.Workspace{}, false, err
	}
	if !created {
		return models.Workspace{}, false, nil
	}

	s.publish(models.CollectionWorkspaces, "")
	w, err := s.GetWorkspace(ctx, id)
	return w, true, err
}

// DeleteWorkspace removes a workspace and, through cascades, all its data.
func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("workspace %s: %w", id, ErrNotFound)
	}
	s.publish(models.CollectionWorkspaces, "")
	return nil
}

// GetPreference reads a persisted client setting.
func (s *Store) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference: %w", err)
	}
	return value, true, nil
}

// SetPreference upserts a persisted client setting.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO preferences(key, value) VALUES(?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	if err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

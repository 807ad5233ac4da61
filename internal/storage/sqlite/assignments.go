package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sprintboard/internal/models"
)

// ListAssignments returns every task assignment of the workspace.
func (s *Store) ListAssignments(ctx context.Context, workspaceID string) ([]models.TaskAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, workspace_id, task_id, member_id, created_at
        FROM task_assignments WHERE workspace_id = ? ORDER BY task_id, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	out := []models.TaskAssignment{}
	for rows.Next() {
		var a models.TaskAssignment
		if err := rows.Scan(&a.ID, &a.WorkspaceID, &a.TaskID, &a.MemberID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Assign links a member to a task. Assigning twice returns the existing link.
func (s *Store) Assign(ctx context.Context, workspaceID string, taskID, memberID int64) (models.TaskAssignment, error) {
	if _, err := s.GetTask(ctx, workspaceID, taskID); err != nil {
		return models.TaskAssignment{}, err
	}
	if _, err := s.GetMember(ctx, workspaceID, memberID); err != nil {
		return models.TaskAssignment{}, err
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO task_assignments(workspace_id, task_id, member_id) VALUES(?, ?, ?)
        ON CONFLICT(task_id, member_id) DO NOTHING`, workspaceID, taskID, memberID)
	if err != nil {
		return models.TaskAssignment{}, fmt.Errorf("insert assignment: %w", err)
	}

	var a models.TaskAssignment
	err = s.db.QueryRowContext(ctx, `SELECT id, workspace_id, task_id, member_id, created_at FROM task_assignments
        WHERE task_id = ? AND member_id = ?`, taskID, memberID).Scan(&a.ID, &a.WorkspaceID, &a.TaskID, &a.MemberID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskAssignment{}, fmt.Errorf("assignment: %w", ErrNotFound)
	}
	if err != nil {
		return models.TaskAssignment{}, fmt.Errorf("get assignment: %w", err)
	}
	s.publish(models.CollectionAssignments, workspaceID)
	return a, nil
}

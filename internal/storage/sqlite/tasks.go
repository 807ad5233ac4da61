package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sprintboard/internal/board"
	"sprintboard/internal/models"
)

const taskColumns = `id, workspace_id, title, description, estimate_frontend, estimate_backend,
    estimate_qa, estimate_design, task_type, priority, status, order_index, start_date, end_date,
    objective, business_goal, user_impact, has_prototype, prototype_link, feature_id, created_at, updated_at`

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t                  models.Task
		fe, be, qa, design sql.NullInt64
		start, end         sql.NullTime
		feature            sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.WorkspaceID, &t.Title, &t.Description, &fe, &be, &qa, &design,
		&t.TaskType, &t.Priority, &t.Status, &t.OrderIndex, &start, &end,
		&t.Objective, &t.BusinessGoal, &t.UserImpact, &t.HasPrototype, &t.PrototypeLink, &feature,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	t.EstimateFrontend = nullInt(fe)
	t.EstimateBackend = nullInt(be)
	t.EstimateQA = nullInt(qa)
	t.EstimateDesign = nullInt(design)
	t.StartDate = timePtr(start)
	t.EndDate = timePtr(end)
	t.FeatureID = nullInt64(feature)
	return t, nil
}

// ListTasks returns the workspace's tasks ordered by status and order index.
func (s *Store) ListTasks(ctx context.Context, workspaceID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+`
        FROM tasks WHERE workspace_id = ? ORDER BY status, order_index, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, workspaceID string, id int64) (models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ? AND workspace_id = ?`, id, workspaceID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask inserts a task at the end of its status column.
func (s *Store) CreateTask(ctx context.Context, workspaceID string, t models.Task) (models.Task, error) {
	pos, err := s.NextTaskOrder(ctx, workspaceID, t.Status)
	if err != nil {
		return models.Task{}, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(workspace_id, title, description, estimate_frontend,
        estimate_backend, estimate_qa, estimate_design, task_type, priority, status, order_index, start_date,
        end_date, objective, business_goal, user_impact, has_prototype, prototype_link, feature_id)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		workspaceID, t.Title, t.Description, t.EstimateFrontend, t.EstimateBackend, t.EstimateQA, t.EstimateDesign,
		t.TaskType, t.Priority, t.Status, pos, t.StartDate, t.EndDate, t.Objective, t.BusinessGoal, t.UserImpact,
		t.HasPrototype, t.PrototypeLink, t.FeatureID)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}

	s.publish(models.CollectionTasks, workspaceID)
	return s.GetTask(ctx, workspaceID, id)
}

// NextTaskOrder returns the order index that appends to a status column.
func (s *Store) NextTaskOrder(ctx context.Context, workspaceID string, status models.TaskStatus) (int, error) {
	var position sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(order_index) FROM tasks WHERE workspace_id = ? AND status = ?`, workspaceID, status).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("select order: %w", err)
	}
	if position.Valid {
		return int(position.Int64) + 1, nil
	}
	return 0, nil
}

// ApplyTaskOrder writes the status and order index of every assignment
// in one transaction, so a renumbering never lands half applied.
func (s *Store) ApplyTaskOrder(ctx context.Context, workspaceID string, as []board.Assignment) error {
	if len(as) == 0 {
		return nil
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return writeTaskOrder(ctx, tx, workspaceID, as)
	})
	if err != nil {
		return err
	}

	s.publish(models.CollectionTasks, workspaceID)
	return nil
}

// PatchTask writes a partial task update together with the renumbering
// a status change causes, in one transaction.
func (s *Store) PatchTask(ctx context.Context, workspaceID string, id int64, fields map[string]any, as []board.Assignment) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := patchRow(ctx, tx, workspaceID, models.CollectionTasks, id, fields); err != nil {
			return err
		}
		return writeTaskOrder(ctx, tx, workspaceID, as)
	})
	if err != nil {
		return err
	}

	s.publish(models.CollectionTasks, workspaceID)
	return nil
}

// RemoveTask deletes a task and renumbers the column it leaves.
// sprintOrder closes the gaps its cascaded sprint links leave, keyed by
// sprint id.
func (s *Store) RemoveTask(ctx context.Context, workspaceID string, id int64, as []board.Assignment, sprintOrder map[int64][]board.Assignment) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := removeRow(ctx, tx, workspaceID, models.CollectionTasks, id); err != nil {
			return err
		}
		if err := writeTaskOrder(ctx, tx, workspaceID, as); err != nil {
			return err
		}
		for sprintID, links := range sprintOrder {
			if err := writeSprintTaskOrder(ctx, tx, workspaceID, sprintID, links); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishRemoval(models.CollectionTasks, workspaceID)
	return nil
}

func writeTaskOrder(ctx context.Context, tx *sql.Tx, workspaceID string, as []board.Assignment) error {
	if len(as) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `UPDATE tasks SET status = ?, order_index = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ? AND workspace_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare task order: %w", err)
	}
	defer stmt.Close()

	for _, a := range as {
		if _, err := stmt.ExecContext(ctx, a.Column, a.OrderIndex, a.ID, workspaceID); err != nil {
			return fmt.Errorf("update task %d order: %w", a.ID, err)
		}
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sprintboard/internal/board"
	"sprintboard/internal/models"
)

const sprintColumns = `id, workspace_id, name, squad_id, start_date, end_date, status, created_at, updated_at`

func scanSprint(row rowScanner) (models.Sprint, error) {
	var sp models.Sprint
	err := row.Scan(&sp.ID, &sp.WorkspaceID, &sp.Name, &sp.SquadID, &sp.StartDate, &sp.EndDate, &sp.Status, &sp.CreatedAt, &sp.UpdatedAt)
	return sp, err
}

// ListSprints returns the workspace's sprints, most recent start first.
func (s *Store) ListSprints(ctx context.Context, workspaceID string) ([]models.Sprint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE workspace_id = ? ORDER BY start_date DESC, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	defer rows.Close()

	sprints := []models.Sprint{}
	for rows.Next() {
		sp, err := scanSprint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sprint: %w", err)
		}
		sprints = append(sprints, sp)
	}
	return sprints, rows.Err()
}

// GetSprint fetches a single sprint by id.
func (s *Store) GetSprint(ctx context.Context, workspaceID string, id int64) (models.Sprint, error) {
	sp, err := scanSprint(s.db.QueryRowContext(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = ? AND workspace_id = ?`, id, workspaceID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Sprint{}, fmt.Errorf("sprint %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Sprint{}, fmt.Errorf("get sprint: %w", err)
	}
	return sp, nil
}

// CreateSprint persists a new sprint for an existing squad.
func (s *Store) CreateSprint(ctx context.Context, workspaceID string, sp models.Sprint) (models.Sprint, error) {
	if _, err := s.GetSquad(ctx, workspaceID, sp.SquadID); err != nil {
		return models.Sprint{}, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO sprints(workspace_id, name, squad_id, start_date, end_date, status)
        VALUES(?, ?, ?, ?, ?, ?)`, workspaceID, sp.Name, sp.SquadID, sp.StartDate, sp.EndDate, sp.Status)
	if err != nil {
		return models.Sprint{}, fmt.Errorf("insert sprint: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Sprint{}, fmt.Errorf("sprint id: %w", err)
	}
	s.publish(models.CollectionSprints, workspaceID)
	return s.GetSprint(ctx, workspaceID, id)
}

const sprintTaskColumns = `id, workspace_id, sprint_id, task_id, order_index, task_status, created_at`

func scanSprintTask(row rowScanner) (models.SprintTask, error) {
	var st models.SprintTask
	err := row.Scan(&st.ID, &st.WorkspaceID, &st.SprintID, &st.TaskID, &st.OrderIndex, &st.TaskStatus, &st.CreatedAt)
	return st, err
}

// ListSprintTasks returns every sprint link of the workspace.
func (s *Store) ListSprintTasks(ctx context.Context, workspaceID string) ([]models.SprintTask, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sprintTaskColumns+` FROM sprint_tasks
        WHERE workspace_id = ? ORDER BY sprint_id, task_status, order_index, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list sprint tasks: %w", err)
	}
	defer rows.Close()

	links := []models.SprintTask{}
	for rows.Next() {
		st, err := scanSprintTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sprint task: %w", err)
		}
		links = append(links, st)
	}
	return links, rows.Err()
}

// GetSprintTask fetches one sprint link.
func (s *Store) GetSprintTask(ctx context.Context, workspaceID string, id int64) (models.SprintTask, error) {
	st, err := scanSprintTask(s.db.QueryRowContext(ctx, `SELECT `+sprintTaskColumns+` FROM sprint_tasks WHERE id = ? AND workspace_id = ?`, id, workspaceID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SprintTask{}, fmt.Errorf("sprint task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.SprintTask{}, fmt.Errorf("get sprint task: %w", err)
	}
	return st, nil
}

// AddSprintTask links a task into a sprint at the end of the Todo column.
func (s *Store) AddSprintTask(ctx context.Context, workspaceID string, sprintID, taskID int64) (models.SprintTask, error) {
	if _, err := s.GetSprint(ctx, workspaceID, sprintID); err != nil {
		return models.SprintTask{}, err
	}
	if _, err := s.GetTask(ctx, workspaceID, taskID); err != nil {
		return models.SprintTask{}, err
	}

	var position sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(order_index) FROM sprint_tasks WHERE sprint_id = ? AND task_status = ?`,
		sprintID, models.SprintTaskTodo).Scan(&position)
	if err != nil {
		return models.SprintTask{}, fmt.Errorf("select order: %w", err)
	}
	next := 0
	if position.Valid {
		next = int(position.Int64) + 1
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO sprint_tasks(workspace_id, sprint_id, task_id, order_index, task_status)
        VALUES(?, ?, ?, ?, ?)`, workspaceID, sprintID, taskID, next, models.SprintTaskTodo)
	if err != nil {
		return models.SprintTask{}, fmt.Errorf("insert sprint task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.SprintTask{}, fmt.Errorf("sprint task id: %w", err)
	}
	s.publish(models.CollectionSprintTasks, workspaceID)
	return s.GetSprintTask(ctx, workspaceID, id)
}

// ApplySprintTaskOrder writes execution status and order index of the
// given sprint links in one transaction.
func (s *Store) ApplySprintTaskOrder(ctx context.Context, workspaceID string, sprintID int64, as []board.Assignment) error {
	if len(as) == 0 {
		return nil
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return writeSprintTaskOrder(ctx, tx, workspaceID, sprintID, as)
	})
	if err != nil {
		return err
	}

	s.publish(models.CollectionSprintTasks, workspaceID)
	return nil
}

// RemoveSprintTask deletes a sprint link and renumbers the sprint
// column it leaves.
func (s *Store) RemoveSprintTask(ctx context.Context, workspaceID string, sprintID, id int64, as []board.Assignment) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := removeRow(ctx, tx, workspaceID, models.CollectionSprintTasks, id); err != nil {
			return err
		}
		return writeSprintTaskOrder(ctx, tx, workspaceID, sprintID, as)
	})
	if err != nil {
		return err
	}

	s.publishRemoval(models.CollectionSprintTasks, workspaceID)
	return nil
}

func writeSprintTaskOrder(ctx context.Context, tx *sql.Tx, workspaceID string, sprintID int64, as []board.Assignment) error {
	if len(as) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `UPDATE sprint_tasks SET task_status = ?, order_index = ?
        WHERE id = ? AND sprint_id = ? AND workspace_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare sprint order: %w", err)
	}
	defer stmt.Close()

	for _, a := range as {
		if _, err := stmt.ExecContext(ctx, a.Column, a.OrderIndex, a.ID, sprintID, workspaceID); err != nil {
			return fmt.Errorf("update sprint task %d order: %w", a.ID, err)
		}
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sprintboard/internal/models"
)

const squadColumns = `id, workspace_id, name, description, status, created_at, updated_at`

func scanSquad(row rowScanner) (models.Squad, error) {
	var sq models.Squad
	err := row.Scan(&sq.ID, &sq.WorkspaceID, &sq.Name, &sq.Description, &sq.Status, &sq.CreatedAt, &sq.UpdatedAt)
	return sq, err
}

// ListSquads returns the workspace's squads ordered by name.
func (s *Store) ListSquads(ctx context.Context, workspaceID string) ([]models.Squad, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+squadColumns+` FROM squads WHERE workspace_id = ? ORDER BY name, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list squads: %w", err)
	}
	defer rows.Close()

	squads := []models.Squad{}
	for rows.Next() {
		sq, err := scanSquad(rows)
		if err != nil {
			return nil, fmt.Errorf("scan squad: %w", err)
		}
		squads = append(squads, sq)
	}
	return squads, rows.Err()
}

// GetSquad fetches a single squad by id.
func (s *Store) GetSquad(ctx context.Context, workspaceID string, id int64) (models.Squad, error) {
	sq, err := scanSquad(s.db.QueryRowContext(ctx, `SELECT `+squadColumns+` FROM squads WHERE id = ? AND workspace_id = ?`, id, workspaceID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Squad{}, fmt.Errorf("squad %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Squad{}, fmt.Errorf("get squad: %w", err)
	}
	return sq, nil
}

// CreateSquad persists a new squad.
func (s *Store) CreateSquad(ctx context.Context, workspaceID string, sq models.Squad) (models.Squad, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO squads(workspace_id, name, description, status) VALUES(?, ?, ?, ?)`,
		workspaceID, sq.Name, sq.Description, sq.Status)
	if err != nil {
		return models.Squad{}, fmt.Errorf("insert squad: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Squad{}, fmt.Errorf("squad id: %w", err)
	}
	s.publish(models.CollectionSquads, workspaceID)
	return s.GetSquad(ctx, workspaceID, id)
}

const memberColumns = `id, workspace_id, name, squad_id, capacity, specialty, status, created_at, updated_at`

func scanMember(row rowScanner) (models.TeamMember, error) {
	var m models.TeamMember
	err := row.Scan(&m.ID, &m.WorkspaceID, &m.Name, &m.SquadID, &m.Capacity, &m.Specialty, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// ListMembers returns the workspace's team members ordered by squad and name.
func (s *Store) ListMembers(ctx context.Context, workspaceID string) ([]models.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM team_members WHERE workspace_id = ? ORDER BY squad_id, name, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []models.TeamMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetMember fetches a single team member by id.
func (s *Store) GetMember(ctx context.Context, workspaceID string, id int64) (models.TeamMember, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM team_members WHERE id = ? AND workspace_id = ?`, id, workspaceID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TeamMember{}, fmt.Errorf("member %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.TeamMember{}, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// CreateMember persists a new team member inside an existing squad.
func (s *Store) CreateMember(ctx context.Context, workspaceID string, m models.TeamMember) (models.TeamMember, error) {
	if _, err := s.GetSquad(ctx, workspaceID, m.SquadID); err != nil {
		return models.TeamMember{}, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO team_members(workspace_id, name, squad_id, capacity, specialty, status)
        VALUES(?, ?, ?, ?, ?, ?)`, workspaceID, m.Name, m.SquadID, m.Capacity, m.Specialty, m.Status)
	if err != nil {
		return models.TeamMember{}, fmt.Errorf("insert member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.TeamMember{}, fmt.Errorf("member id: %w", err)
	}
	s.publish(models.CollectionMembers, workspaceID)
	return s.GetMember(ctx, workspaceID, id)
}

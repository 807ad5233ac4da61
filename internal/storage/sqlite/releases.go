package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"

	"sprintboard/internal/models"
)

const releaseColumns = `id, workspace_id, version, release_date, squad_id, status, description, notes, color, created_at, updated_at`

func scanRelease(row rowScanner) (models.Release, error) {
	var (
		r     models.Release
		squad sql.NullInt64
	)
	err := row.Scan(&r.ID, &r.WorkspaceID, &r.Version, &r.ReleaseDate, &squad, &r.Status, &r.Description, &r.Notes, &r.Color, &r.CreatedAt, &r.UpdatedAt)
	r.SquadID = nullInt64(squad)
	return r, err
}

// ListReleases returns releases ordered by release date.
func (s *Store) ListReleases(ctx context.Context, workspaceID string) ([]models.Release, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+releaseColumns+` FROM releases WHERE workspace_id = ? ORDER BY release_date, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	defer rows.Close()

	releases := []models.Release{}
	for rows.Next() {
		r, err := scanRelease(rows)
		if err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		releases = append(releases, r)
	}
	return releases, rows.Err()
}

// GetRelease fetches a single release by id.
func (s *Store) GetRelease(ctx context.Context, workspaceID string, id int64) (models.Release, error) {
	r, err := scanRelease(s.db.QueryRowContext(ctx, `SELECT `+releaseColumns+` FROM releases WHERE id = ? AND workspace_id = ?`, id, workspaceID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Release{}, fmt.Errorf("release %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Release{}, fmt.Errorf("get release: %w", err)
	}
	return r, nil
}

// CreateRelease persists a release, picking a palette color when none is set.
func (s *Store) CreateRelease(ctx context.Context, workspaceID string, r models.Release) (models.Release, error) {
	if r.Color == "" {
		r.Color = randomPaletteColor()
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO releases(workspace_id, version, release_date, squad_id, status, description, notes, color)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		workspaceID, r.Version, r.ReleaseDate, r.SquadID, r.Status, r.Description, r.Notes, r.Color)
	if err != nil {
		return models.Release{}, fmt.Errorf("insert release: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Release{}, fmt.Errorf("release id: %w", err)
	}
	s.publish(models.CollectionReleases, workspaceID)
	return s.GetRelease(ctx, workspaceID, id)
}

func randomPaletteColor() string {
	palette := []string{
		"#2563eb", // blue-600
		"#7c3aed", // violet-600
		"#dc2626", // red-600
		"#059669", // green-600
		"#ea580c", // orange-600
		"#d97706", // amber-600
		"#0ea5e9", // sky-500
	}
	return palette[rand.IntN(len(palette))]
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sprintboard/internal/models"
)

const documentColumns = `id, workspace_id, title, category, content, created_at, updated_at`

func scanDocument(row rowScanner) (models.Document, error) {
	var d models.Document
	err := row.Scan(&d.ID, &d.WorkspaceID, &d.Title, &d.Category, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// ListDocuments returns the documentation hub pages grouped by category.
func (s *Store) ListDocuments(ctx context.Context, workspaceID string) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE workspace_id = ? ORDER BY category, title, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetDocument fetches a single page.
func (s *Store) GetDocument(ctx context.Context, workspaceID string, id int64) (models.Document, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ? AND workspace_id = ?`, id, workspaceID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// CreateDocument persists a new page.
func (s *Store) CreateDocument(ctx context.Context, workspaceID string, d models.Document) (models.Document, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO documents(workspace_id, title, category, content) VALUES(?, ?, ?, ?)`,
		workspaceID, d.Title, d.Category, d.Content)
	if err != nil {
		return models.Document{}, fmt.Errorf("insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Document{}, fmt.Errorf("document id: %w", err)
	}
	s.publish(models.CollectionDocuments, workspaceID)
	return s.GetDocument(ctx, workspaceID, id)
}

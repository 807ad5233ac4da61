package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"sprintboard/internal/models"
)

// patchable whitelists the columns Patch may write per collection.
var patchable = map[string]map[string]bool{
	models.CollectionTasks: set("title", "description", "estimate_frontend", "estimate_backend",
		"estimate_qa", "estimate_design", "task_type", "priority", "status", "order_index",
		"start_date", "end_date", "objective", "business_goal", "user_impact", "has_prototype",
		"prototype_link", "feature_id"),
	models.CollectionSquads:      set("name", "description", "status"),
	models.CollectionMembers:     set("name", "squad_id", "capacity", "specialty", "status"),
	models.CollectionSprints:     set("name", "squad_id", "start_date", "end_date", "status"),
	models.CollectionSprintTasks: set("order_index", "task_status"),
	models.CollectionReleases:    set("version", "release_date", "squad_id", "status", "description", "notes", "color"),
	models.CollectionDocuments:   set("title", "category", "content"),
}

var touchesUpdatedAt = set(
	models.CollectionTasks,
	models.CollectionSquads,
	models.CollectionMembers,
	models.CollectionSprints,
	models.CollectionReleases,
	models.CollectionDocuments,
)

// cascades lists the collections a delete also empties through foreign
// keys, so their subscribers are told to reload.
var cascades = map[string][]string{
	models.CollectionSquads:  {models.CollectionMembers, models.CollectionAssignments, models.CollectionSprints, models.CollectionSprintTasks, models.CollectionReleases},
	models.CollectionMembers: {models.CollectionAssignments},
	models.CollectionTasks:   {models.CollectionSprintTasks, models.CollectionAssignments},
	models.CollectionSprints: {models.CollectionSprintTasks},
}

func set(items ...string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it] = true
	}
	return out
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Patch writes a partial update to one record. Unknown collections or
// columns are rejected before touching the database.
func (s *Store) Patch(ctx context.Context, workspaceID, collection string, id int64, fields map[string]any) error {
	wrote, err := patchRow(ctx, s.db, workspaceID, collection, id, fields)
	if err != nil || !wrote {
		return err
	}
	s.publish(collection, workspaceID)
	return nil
}

func patchRow(ctx context.Context, ex execer, workspaceID, collection string, id int64, fields map[string]any) (bool, error) {
	allowed, ok := patchable[collection]
	if !ok {
		return false, fmt.Errorf("patch: unknown collection %q", collection)
	}
	if len(fields) == 0 {
		return false, nil
	}

	columns := make([]string, 0, len(fields))
	for c := range fields {
		if !allowed[c] {
			return false, fmt.Errorf("patch %s: column %q is not writable", collection, c)
		}
		columns = append(columns, c)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns)+1)
	args := make([]any, 0, len(columns)+2)
	for _, c := range columns {
		assignments = append(assignments, c+" = ?")
		args = append(args, fields[c])
	}
	if touchesUpdatedAt[collection] {
		assignments = append(assignments, "updated_at = CURRENT_TIMESTAMP")
	}
	args = append(args, id, workspaceID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND workspace_id = ?", collection, strings.Join(assignments, ", "))
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("patch %s: %w", collection, err)
	}
	return true, expectRow(res, collection, id)
}

// Remove deletes one record. Dependent records go with it through
// foreign key cascades.
func (s *Store) Remove(ctx context.Context, workspaceID, collection string, id int64) error {
	if err := removeRow(ctx, s.db, workspaceID, collection, id); err != nil {
		return err
	}
	s.publishRemoval(collection, workspaceID)
	return nil
}

func removeRow(ctx context.Context, ex execer, workspaceID, collection string, id int64) error {
	if _, ok := patchable[collection]; !ok && collection != models.CollectionAssignments {
		return fmt.Errorf("remove: unknown collection %q", collection)
	}

	res, err := ex.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ? AND workspace_id = ?", collection), id, workspaceID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", collection, err)
	}
	return expectRow(res, collection, id)
}

func (s *Store) publishRemoval(collection, workspaceID string) {
	s.publish(collection, workspaceID)
	for _, dep := range cascades[collection] {
		s.publish(dep, workspaceID)
	}
}

// expectRow maps a write that matched nothing to ErrNotFound.
func expectRow(res sql.Result, collection string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", collection, id, ErrNotFound)
	}
	return nil
}

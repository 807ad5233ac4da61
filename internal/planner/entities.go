package planner

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"sprintboard/internal/board"
	"sprintboard/internal/models"
	"sprintboard/internal/storage/sqlite"
)

// patchEntity loads a record, applies a patch to it, validates the
// result, and writes only the changed columns.
func patchEntity[T any](ctx context.Context, s *Service, collection string, id int64,
	get func(context.Context, string, int64) (T, error),
	apply func(*T) map[string]any,
	check func(ws string, before, after T, fields map[string]any) error,
) (T, error) {
	var zero T
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return zero, err
	}
	before, err := get(ctx, ws, id)
	if err != nil {
		return zero, err
	}
	after := before
	fields := apply(&after)
	if err := models.Validate(&after); err != nil {
		return zero, err
	}
	if check != nil {
		if err := check(ws, before, after, fields); err != nil {
			return zero, err
		}
	}
	if err := s.store.Patch(ctx, ws, collection, id, fields); err != nil {
		return zero, err
	}
	return get(ctx, ws, id)
}

func (s *Service) remove(ctx context.Context, collection string, id int64) error {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return err
	}
	return s.store.Remove(ctx, ws, collection, id)
}

// requireSquad turns a dangling squad reference into a field error.
func (s *Service) requireSquad(ctx context.Context, ws string, id int64) error {
	_, err := s.store.GetSquad(ctx, ws, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return invalid("squad_id", "unknown squad")
	}
	return err
}

// CreateTask appends a new task to the end of its status column.
func (s *Service) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return models.Task{}, err
	}
	t.ApplyDefaults()
	if err := models.Validate(&t); err != nil {
		return models.Task{}, err
	}
	return s.store.CreateTask(ctx, ws, t)
}

// GetTask fetches one task of the active workspace.
func (s *Service) GetTask(ctx context.Context, id int64) (models.Task, error) {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return models.Task{}, err
	}
	return s.store.GetTask(ctx, ws, id)
}

// UpdateTask applies a partial update. A status change moves the task
// to the end of its new column and closes the gap it leaves behind.
func (s *Service) UpdateTask(ctx context.Context, id int64, p models.TaskPatch) (models.Task, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return models.Task{}, err
	}
	before, ok := snap.Task(id)
	if !ok {
		return models.Task{}, fmt.Errorf("task %d: %w", id, sqlite.ErrNotFound)
	}
	after := before
	fields := p.Apply(&after)
	if err := models.Validate(&after); err != nil {
		return models.Task{}, err
	}

	var order []board.Assignment
	if before.Status != after.Status {
		cards := board.TaskCards(snap.Tasks)
		as, ok := board.Apply(taskColumns, cards, board.Move{CardID: id, Destination: string(after.Status), Index: -1})
		if !ok {
			return models.Task{}, invalid("status", "unknown column")
		}
		order = board.Changed(cards, as)
	}
	if err := s.store.PatchTask(ctx, snap.WorkspaceID, id, fields, order); err != nil {
		return models.Task{}, err
	}
	return s.store.GetTask(ctx, snap.WorkspaceID, id)
}

// DeleteTask removes a task with its sprint links and assignments, and
// renumbers every column it leaves.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	cards := board.TaskCards(snap.Tasks)
	as, ok := board.Remove(taskColumns, cards, id)
	if !ok {
		return fmt.Errorf("task %d: %w", id, sqlite.ErrNotFound)
	}

	sprintOrder := map[int64][]board.Assignment{}
	for _, l := range snap.SprintTasks {
		if l.TaskID != id {
			continue
		}
		links := board.SprintCards(snap.SprintLinks(l.SprintID))
		if gap, ok := board.Remove(board.SprintColumns, links, l.ID); ok {
			sprintOrder[l.SprintID] = board.Changed(links, gap)
		}
	}
	return s.store.RemoveTask(ctx, snap.WorkspaceID, id, board.Changed(cards, as), sprintOrder)
}

// CreateSquad adds a squad to the active workspace.
func (s *Service) CreateSquad(ctx context.Context, sq models.Squad) (models.Squad, error) {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return models.Squad{}, err
	}
	sq.ApplyDefaults()
	if err := models.Validate(&sq); err != nil {
		return models.Squad{}, err
	}
	return s.store.CreateSquad(ctx, ws, sq)
}

// UpdateSquad applies a partial squad update.
func (s *Service) UpdateSquad(ctx context.Context, id int64, p models.SquadPatch) (models.Squad, error) {
	return patchEntity(ctx, s, models.CollectionSquads, id, s.store.GetSquad, p.Apply, nil)
}

// DeleteSquad removes a squad. Its members, sprints and releases'
// squad references go with it.
func (s *Service) DeleteSquad(ctx context.Context, id int64) error {
	return s.remove(ctx, models.CollectionSquads, id)
}

// CreateMember adds a team member to an existing squad.
func (s *Service) CreateMember(ctx context.Context, m models.TeamMember) (models.TeamMember, error) {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return models.TeamMember{}, err
	}
	m.ApplyDefaults()
	if err := models.Validate(&m); err != nil {
		return models.TeamMember{}, err
	}
	if err := s.requireSquad(ctx, ws, m.SquadID); err != nil {
		return models.TeamMember{}, err
	}
	return s.store.CreateMember(ctx, ws, m)
}

// UpdateMember applies a partial update. Moving a member checks the
// target squad exists.
func (s *Service) UpdateMember(ctx context.Context, id int64, p models.MemberPatch) (models.TeamMember, error) {
	return patchEntity(ctx, s, models.CollectionMembers, id, s.store.GetMember, p.Apply,
		func(ws string, before, after models.TeamMember, _ map[string]any) error {
			if before.SquadID == after.SquadID {
				return nil
			}
			return s.requireSquad(ctx, ws, after.SquadID)
		})
}

// DeleteMember removes a member and their task assignments.
func (s *Service) DeleteMember(ctx context.Context, id int64) error {
	return s.remove(ctx, models.CollectionMembers, id)
}

// CreateSprint adds a sprint to an existing squad.
func (s *Service) CreateSprint(ctx context.Context, sp models.Sprint) (models.Sprint, error) {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return models.Sprint{}, err
	}
	sp.ApplyDefaults()
	if err := models.Validate(&sp); err != nil {
		return models.Sprint{}, err
	}
	if err := s.requireSquad(ctx, ws, sp.SquadID); err != nil {
		return models.Sprint{}, err
	}
	return s.store.CreateSprint(ctx, ws, sp)
}

// UpdateSprint applies a partial sprint update.
func (s *Service) UpdateSprint(ctx context.Context, id int64, p models.SprintPatch) (models.Sprint, error) {
	return patchEntity(ctx, s, models.CollectionSprints, id, s.store.GetSprint, p.Apply,
		func(ws string, before, after models.Sprint, _ map[string]any) error {
			if before.SquadID == after.SquadID {
				return nil
			}
			return s.requireSquad(ctx, ws, after.SquadID)
		})
}

// DeleteSprint removes a sprint and its task links.
func (s *Service) DeleteSprint(ctx context.Context, id int64) error {
	return s.remove(ctx, models.CollectionSprints, id)
}

// AddToSprint links a task into a sprint's Todo column.
func (s *Service) AddToSprint(ctx context.Context, sprintID, taskID int64) (models.SprintTask, error) {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return models.SprintTask{}, err
	}
	if _, err := s.store.GetTask(ctx, ws, taskID); errors.Is(err, sqlite.ErrNotFound) {
		return models.SprintTask{}, invalid("task_id", "unknown task")
	}
	links, err := s.store.ListSprintTasks(ctx, ws)
	if err != nil {
		return models.SprintTask{}, err
	}
	for _, l := range links {
		if l.SprintID == sprintID && l.TaskID == taskID {
			return models.SprintTask{}, invalid("task_id", "task is already in this sprint")
		}
	}
	return s.store.AddSprintTask(ctx, ws, sprintID, taskID)
}

// RemoveFromSprint deletes a sprint link and renumbers the sprint
// column it leaves. The task itself is kept.
func (s *Service) RemoveFromSprint(ctx context.Context, linkID int64) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(snap.SprintTasks, func(l models.SprintTask) bool { return l.ID == linkID })
	if i < 0 {
		return fmt.Errorf("sprint task %d: %w", linkID, sqlite.ErrNotFound)
	}
	sprintID := snap.SprintTasks[i].SprintID
	cards := board.SprintCards(snap.SprintLinks(sprintID))
	as, _ := board.Remove(board.SprintColumns, cards, linkID)
	return s.store.RemoveSprintTask(ctx, snap.WorkspaceID, sprintID, linkID, board.Changed(cards, as))
}

// CreateRelease adds a release, optionally tied to a squad.
func (s *Service) CreateRelease(ctx context.Context, r models.Release) (models.Release, error) {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return models.Release{}, err
	}
	r.ApplyDefaults()
	if err := models.Validate(&r); err != nil {
		return models.Release{}, err
	}
	if r.SquadID != nil {
		if err := s.requireSquad(ctx, ws, *r.SquadID); err != nil {
			return models.Release{}, err
		}
	}
	return s.store.CreateRelease(ctx, ws, r)
}

// UpdateRelease applies a partial release update.
func (s *Service) UpdateRelease(ctx context.Context, id int64, p models.ReleasePatch) (models.Release, error) {
	return patchEntity(ctx, s, models.CollectionReleases, id, s.store.GetRelease, p.Apply,
		func(ws string, _, after models.Release, fields map[string]any) error {
			if _, ok := fields["squad_id"]; !ok || after.SquadID == nil {
				return nil
			}
			return s.requireSquad(ctx, ws, *after.SquadID)
		})
}

// DeleteRelease removes a release.
func (s *Service) DeleteRelease(ctx context.Context, id int64) error {
	return s.remove(ctx, models.CollectionReleases, id)
}

// CreateDocument adds a markdown document.
func (s *Service) CreateDocument(ctx context.Context, d models.Document) (models.Document, error) {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return models.Document{}, err
	}
	d.ApplyDefaults()
	if err := models.Validate(&d); err != nil {
		return models.Document{}, err
	}
	return s.store.CreateDocument(ctx, ws, d)
}

// GetDocument fetches one document of the active workspace.
func (s *Service) GetDocument(ctx context.Context, id int64) (models.Document, error) {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return models.Document{}, err
	}
	return s.store.GetDocument(ctx, ws, id)
}

// UpdateDocument applies a partial document update.
func (s *Service) UpdateDocument(ctx context.Context, id int64, p models.DocumentPatch) (models.Document, error) {
	return patchEntity(ctx, s, models.CollectionDocuments, id, s.store.GetDocument, p.Apply, nil)
}

// DeleteDocument removes a document.
func (s *Service) DeleteDocument(ctx context.Context, id int64) error {
	return s.remove(ctx, models.CollectionDocuments, id)
}

// Assign puts a member on a task. Assigning twice is not an error.
func (s *Service) Assign(ctx context.Context, a models.TaskAssignment) (models.TaskAssignment, error) {
	ws, err := s.workspaceID(ctx)
	if err != nil {
		return models.TaskAssignment{}, err
	}
	if err := models.Validate(&a); err != nil {
		return models.TaskAssignment{}, err
	}
	if _, err := s.store.GetTask(ctx, ws, a.TaskID); errors.Is(err, sqlite.ErrNotFound) {
		return models.TaskAssignment{}, invalid("task_id", "unknown task")
	}
	if _, err := s.store.GetMember(ctx, ws, a.MemberID); errors.Is(err, sqlite.ErrNotFound) {
		return models.TaskAssignment{}, invalid("member_id", "unknown member")
	}
	return s.store.Assign(ctx, ws, a.TaskID, a.MemberID)
}

// Unassign removes one assignment by id.
func (s *Service) Unassign(ctx context.Context, id int64) error {
	return s.remove(ctx, models.CollectionAssignments, id)
}

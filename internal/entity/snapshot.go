// Package entity holds the in-memory view of one workspace: every
// collection loaded wholesale, plus id indexes for lookups.
package entity

import (
	"context"
	"fmt"

	"sprintboard/internal/models"
)

// Source is the read side of the persistent store.
type Source interface {
	ListSquads(ctx context.Context, workspaceID string) ([]models.Squad, error)
	ListMembers(ctx context.Context, workspaceID string) ([]models.TeamMember, error)
	ListTasks(ctx context.Context, workspaceID string) ([]models.Task, error)
	ListSprints(ctx context.Context, workspaceID string) ([]models.Sprint, error)
	ListSprintTasks(ctx context.Context, workspaceID string) ([]models.SprintTask, error)
	ListAssignments(ctx context.Context, workspaceID string) ([]models.TaskAssignment, error)
	ListReleases(ctx context.Context, workspaceID string) ([]models.Release, error)
	ListDocuments(ctx context.Context, workspaceID string) ([]models.Document, error)
}

// Snapshot is an immutable copy of a workspace's collections. A new
// snapshot replaces the old one on every change; it is never patched.
type Snapshot struct {
	WorkspaceID string
	Squads      []models.Squad
	Members     []models.TeamMember
	Tasks       []models.Task
	Sprints     []models.Sprint
	SprintTasks []models.SprintTask
	Assignments []models.TaskAssignment
	Releases    []models.Release
	Documents   []models.Document

	tasks   map[int64]int
	sprints map[int64]int
	squads  map[int64]int
}

// Load reads every collection of the workspace.
func Load(ctx context.Context, src Source, workspaceID string) (*Snapshot, error) {
	s := &Snapshot{WorkspaceID: workspaceID}
	var err error
	if s.Squads, err = src.ListSquads(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("load squads: %w", err)
	}
	if s.Members, err = src.ListMembers(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	if s.Tasks, err = src.ListTasks(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if s.Sprints, err = src.ListSprints(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("load sprints: %w", err)
	}
	if s.SprintTasks, err = src.ListSprintTasks(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("load sprint tasks: %w", err)
	}
	if s.Assignments, err = src.ListAssignments(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	if s.Releases, err = src.ListReleases(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("load releases: %w", err)
	}
	if s.Documents, err = src.ListDocuments(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	s.index()
	return s, nil
}

func (s *Snapshot) index() {
	s.tasks = make(map[int64]int, len(s.Tasks))
	for i, t := range s.Tasks {
		s.tasks[t.ID] = i
	}
	s.sprints = make(map[int64]int, len(s.Sprints))
	for i, sp := range s.Sprints {
		s.sprints[sp.ID] = i
	}
	s.squads = make(map[int64]int, len(s.Squads))
	for i, sq := range s.Squads {
		s.squads[sq.ID] = i
	}
}

// Task looks a task up by id.
func (s *Snapshot) Task(id int64) (models.Task, bool) {
	i, ok := s.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return s.Tasks[i], true
}

// Sprint looks a sprint up by id.
func (s *Snapshot) Sprint(id int64) (models.Sprint, bool) {
	i, ok := s.sprints[id]
	if !ok {
		return models.Sprint{}, false
	}
	return s.Sprints[i], true
}

// Squad looks a squad up by id.
func (s *Snapshot) Squad(id int64) (models.Squad, bool) {
	i, ok := s.squads[id]
	if !ok {
		return models.Squad{}, false
	}
	return s.Squads[i], true
}

// SprintLinks returns the links of one sprint.
func (s *Snapshot) SprintLinks(sprintID int64) []models.SprintTask {
	var out []models.SprintTask
	for _, l := range s.SprintTasks {
		if l.SprintID == sprintID {
			out = append(out, l)
		}
	}
	return out
}

// SprintBacklog resolves the tasks of one sprint together with their
// links. Links pointing at missing tasks are skipped.
func (s *Snapshot) SprintBacklog(sprintID int64) ([]models.Task, map[int64]models.SprintTask) {
	links := s.SprintLinks(sprintID)
	tasks := make([]models.Task, 0, len(links))
	byTask := make(map[int64]models.SprintTask, len(links))
	for _, l := range links {
		t, ok := s.Task(l.TaskID)
		if !ok {
			continue
		}
		tasks = append(tasks, t)
		byTask[t.ID] = l
	}
	return tasks, byTask
}

// SquadMembers returns the members belonging to a squad.
func (s *Snapshot) SquadMembers(squadID int64) []models.TeamMember {
	var out []models.TeamMember
	for _, m := range s.Members {
		if m.SquadID == squadID {
			out = append(out, m)
		}
	}
	return out
}

// Assignees returns the member ids assigned to a task.
func (s *Snapshot) Assignees(taskID int64) []int64 {
	var out []int64
	for _, a := range s.Assignments {
		if a.TaskID == taskID {
			out = append(out, a.MemberID)
		}
	}
	return out
}

// Collection returns one collection by name, for subscription payloads.
func (s *Snapshot) Collection(name string) (any, bool) {
	switch name {
	case models.CollectionSquads:
		return s.Squads, true
	case models.CollectionMembers:
		return s.Members, true
	case models.CollectionTasks:
		return s.Tasks, true
	case models.CollectionSprints:
		return s.Sprints, true
	case models.CollectionSprintTasks:
		return s.SprintTasks, true
	case models.CollectionAssignments:
		return s.Assignments, true
	case models.CollectionReleases:
		return s.Releases, true
	case models.CollectionDocuments:
		return s.Documents, true
	}
	return nil, false
}

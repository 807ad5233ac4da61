package planner

import (
	"context"
	"fmt"
	"slices"

	"sprintboard/internal/board"
	"sprintboard/internal/entity"
	"sprintboard/internal/metrics"
	"sprintboard/internal/models"
	"sprintboard/internal/storage/sqlite"
)

// taskColumns spans both task boards, so a drag between them is a
// plain cross-column move.
var taskColumns = slices.Concat(board.ProductColumns, board.EngineeringColumns)

// Column is one rendered board column.
type Column[T any] struct {
	Status string `json:"status"`
	Points int    `json:"points"`
	Cards  []T    `json:"cards"`
}

// SprintCard is a task as it sits on a sprint board.
type SprintCard struct {
	Link      models.SprintTask `json:"link"`
	Task      models.Task       `json:"task"`
	Assignees []int64           `json:"assignees"`
}

// SprintBoard is the execution view of one sprint.
type SprintBoard struct {
	Sprint   models.Sprint        `json:"sprint"`
	Columns  []Column[SprintCard] `json:"columns"`
	Progress metrics.Progress     `json:"progress"`
}

func columnsOf[T any](names []string, parts map[string][]T, points func(T) int) []Column[T] {
	out := make([]Column[T], 0, len(names))
	for _, name := range names {
		col := Column[T]{Status: name, Cards: parts[name]}
		for _, c := range col.Cards {
			col.Points += points(c)
		}
		out = append(out, col)
	}
	return out
}

func taskBoard(columns []string, tasks []models.Task) []Column[models.Task] {
	parts := board.Partition(columns, tasks,
		func(t models.Task) string { return string(t.Status) },
		func(t models.Task) int { return t.OrderIndex })
	return columnsOf(columns, parts, models.Task.TotalEstimate)
}

// ProductBoard partitions the workspace's tasks into the discovery
// columns.
func (s *Service) ProductBoard(ctx context.Context) ([]Column[models.Task], error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return taskBoard(board.ProductColumns, snap.Tasks), nil
}

// EngineeringBoard partitions the workspace's tasks into the delivery
// columns.
func (s *Service) EngineeringBoard(ctx context.Context) ([]Column[models.Task], error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return taskBoard(board.EngineeringColumns, snap.Tasks), nil
}

// SprintBoard partitions a sprint's links into execution columns and
// attaches the sprint's progress figures.
func (s *Service) SprintBoard(ctx context.Context, sprintID int64) (SprintBoard, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return SprintBoard{}, err
	}
	sp, ok := snap.Sprint(sprintID)
	if !ok {
		return SprintBoard{}, fmt.Errorf("sprint %d: %w", sprintID, sqlite.ErrNotFound)
	}

	tasks, links := snap.SprintBacklog(sprintID)
	cards := make([]SprintCard, 0, len(tasks))
	for _, t := range tasks {
		cards = append(cards, SprintCard{Link: links[t.ID], Task: t, Assignees: snap.Assignees(t.ID)})
	}
	parts := board.Partition(board.SprintColumns, cards,
		func(c SprintCard) string { return string(c.Link.TaskStatus) },
		func(c SprintCard) int { return c.Link.OrderIndex })

	return SprintBoard{
		Sprint:   sp,
		Columns:  columnsOf(board.SprintColumns, parts, func(c SprintCard) int { return c.Task.TotalEstimate() }),
		Progress: s.progress(snap, sp),
	}, nil
}

// MoveTask applies a drag gesture on the task boards. It reports false
// when the gesture resolves to nothing, which is not an error.
func (s *Service) MoveTask(ctx context.Context, d board.Drop) (bool, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	cards := board.TaskCards(snap.Tasks)
	m, ok := board.ResolveDrop(taskColumns, cards, d)
	if !ok {
		return false, nil
	}
	return s.placeTask(ctx, snap, cards, m)
}

// PlaceTask moves a task to an explicit column and index.
func (s *Service) PlaceTask(ctx context.Context, m board.Move) (bool, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return s.placeTask(ctx, snap, board.TaskCards(snap.Tasks), m)
}

func (s *Service) placeTask(ctx context.Context, snap *entity.Snapshot, cards []board.Card, m board.Move) (bool, error) {
	as, ok := board.Apply(taskColumns, cards, m)
	if !ok {
		return false, nil
	}
	if err := s.store.ApplyTaskOrder(ctx, snap.WorkspaceID, board.Changed(cards, as)); err != nil {
		return false, fmt.Errorf("move task %d: %w", m.CardID, err)
	}
	return true, nil
}

// MoveSprintTask applies a drag gesture on a sprint board. Card ids are
// sprint link ids.
func (s *Service) MoveSprintTask(ctx context.Context, sprintID int64, d board.Drop) (bool, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := snap.Sprint(sprintID); !ok {
		return false, fmt.Errorf("sprint %d: %w", sprintID, sqlite.ErrNotFound)
	}
	cards := board.SprintCards(snap.SprintLinks(sprintID))
	m, ok := board.ResolveDrop(board.SprintColumns, cards, d)
	if !ok {
		return false, nil
	}
	as, ok := board.Apply(board.SprintColumns, cards, m)
	if !ok {
		return false, nil
	}
	if err := s.store.ApplySprintTaskOrder(ctx, snap.WorkspaceID, sprintID, board.Changed(cards, as)); err != nil {
		return false, fmt.Errorf("move sprint task %d: %w", m.CardID, err)
	}
	return true, nil
}

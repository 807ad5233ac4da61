package planner

import (
	"context"
	"fmt"

	"sprintboard/internal/entity"
	"sprintboard/internal/metrics"
	"sprintboard/internal/models"
	"sprintboard/internal/storage/sqlite"
)

// SquadCapacity is the capacity rollup of one squad for one sprint.
type SquadCapacity struct {
	Squad    models.Squad           `json:"squad"`
	SprintID int64                  `json:"sprint_id,omitempty"`
	Lines    []metrics.CapacityLine `json:"lines"`
}

// sprintDone counts a task as completed when its link in the sprint is
// in the Done column, whatever the task's own status.
func sprintDone(links map[int64]models.SprintTask) metrics.Done {
	return func(t models.Task) bool {
		return links[t.ID].TaskStatus == models.SprintTaskDone
	}
}

func (s *Service) progress(snap *entity.Snapshot, sp models.Sprint) metrics.Progress {
	tasks, links := snap.SprintBacklog(sp.ID)
	return metrics.SprintProgress(tasks, sprintDone(links), sp.StartDate, sp.EndDate, s.now())
}

// SprintProgress computes the dashboard figures of one sprint.
func (s *Service) SprintProgress(ctx context.Context, sprintID int64) (metrics.Progress, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return metrics.Progress{}, err
	}
	sp, ok := snap.Sprint(sprintID)
	if !ok {
		return metrics.Progress{}, fmt.Errorf("sprint %d: %w", sprintID, sqlite.ErrNotFound)
	}
	return s.progress(snap, sp), nil
}

// SquadCapacity rolls up member capacity against a sprint's planned
// points. With sprintID zero the squad's active sprint is used; a squad
// without one reports capacity against nothing planned.
func (s *Service) SquadCapacity(ctx context.Context, squadID, sprintID int64) (SquadCapacity, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return SquadCapacity{}, err
	}
	sq, ok := snap.Squad(squadID)
	if !ok {
		return SquadCapacity{}, fmt.Errorf("squad %d: %w", squadID, sqlite.ErrNotFound)
	}

	if sprintID == 0 {
		for _, sp := range snap.Sprints {
			if sp.SquadID == squadID && sp.Status == models.SprintActive {
				sprintID = sp.ID
				break
			}
		}
	} else if sp, ok := snap.Sprint(sprintID); !ok || sp.SquadID != squadID {
		return SquadCapacity{}, invalid("sprint", "sprint does not belong to this squad")
	}

	var tasks []models.Task
	if sprintID != 0 {
		tasks, _ = snap.SprintBacklog(sprintID)
	}
	return SquadCapacity{
		Squad:    sq,
		SprintID: sprintID,
		Lines:    metrics.CapacityRollup(snap.SquadMembers(squadID), tasks),
	}, nil
}

// Completion is the delivery figure shown on the engineering board.
type Completion struct {
	TotalPoints     int `json:"total_points"`
	CompletedPoints int `json:"completed_points"`
	Percentage      int `json:"percentage"`
}

// Completion counts tasks with the Done status against every task of
// the workspace.
func (s *Service) Completion(ctx context.Context) (Completion, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Completion{}, err
	}
	return Completion{
		TotalPoints:     metrics.TotalPoints(snap.Tasks),
		CompletedPoints: metrics.CompletedPoints(snap.Tasks, metrics.StatusDone),
		Percentage:      metrics.CompletionPercentage(snap.Tasks, metrics.StatusDone),
	}, nil
}

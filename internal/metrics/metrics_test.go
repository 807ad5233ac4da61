package metrics

import (
	"testing"
	"time"

	"sprintboard/internal/models"
)

func pts(v int) *int { return &v }

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: 1, EstimateFrontend: pts(5), EstimateBackend: pts(3), Status: models.TaskDone},
		{ID: 2, EstimateBackend: pts(8), Status: models.TaskInSprint},
		{ID: 3, EstimateQA: pts(2), EstimateDesign: pts(2), Status: models.TaskBacklog},
		{ID: 4, Status: models.TaskBacklog},
	}
}

func TestCompletionScenario(t *testing.T) {
	tasks := sampleTasks()

	if got := TotalPoints(tasks); got != 20 {
		t.Fatalf("TotalPoints = %d, want 20", got)
	}
	if got := CompletedPoints(tasks, StatusDone); got != 8 {
		t.Errorf("CompletedPoints = %d, want 8", got)
	}
	if got := CompletionPercentage(tasks, StatusDone); got != 40 {
		t.Errorf("CompletionPercentage = %d, want 40", got)
	}
}

func TestCompletedNeverExceedsTotal(t *testing.T) {
	all := func(models.Task) bool { return true }
	none := func(models.Task) bool { return false }
	for _, done := range []Done{all, none, StatusDone, nil} {
		tasks := sampleTasks()
		if c, tot := CompletedPoints(tasks, done), TotalPoints(tasks); c > tot {
			t.Errorf("completed %d > total %d", c, tot)
		}
	}
}

func TestZeroTotals(t *testing.T) {
	empty := []models.Task{{ID: 1, Status: models.TaskDone}}

	if got := TotalPoints(empty); got != 0 {
		t.Errorf("TotalPoints = %d, want 0", got)
	}
	if got := CompletionPercentage(empty, StatusDone); got != 0 {
		t.Errorf("CompletionPercentage = %d, want 0", got)
	}
	if got := CompletionPercentage(nil, StatusDone); got != 0 {
		t.Errorf("CompletionPercentage(nil) = %d, want 0", got)
	}
	for s, p := range BySpecialty(empty, StatusDone) {
		if p != (SpecialtyProgress{}) {
			t.Errorf("%s = %+v, want zero", s, p)
		}
	}
}

func TestPercentageRoundsHalfUp(t *testing.T) {
	tests := []struct{ part, whole, want int }{
		{1, 8, 13},  // 12.5
		{1, 3, 33},  // 33.3
		{2, 3, 67},  // 66.7
		{5, 5, 100}, // exact
		{3, 0, 0},
		{3, -1, 0},
	}
	for _, tt := range tests {
		if got := Percentage(tt.part, tt.whole); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestBySpecialty(t *testing.T) {
	got := BySpecialty(sampleTasks(), StatusDone)

	want := map[models.Specialty]SpecialtyProgress{
		models.SpecialtyFrontend: {Planned: 5, Completed: 5, Percentage: 100},
		models.SpecialtyBackend:  {Planned: 11, Completed: 3, Percentage: 27},
		models.SpecialtyQA:       {Planned: 2, Completed: 0, Percentage: 0},
		models.SpecialtyDesign:   {Planned: 2, Completed: 0, Percentage: 0},
	}
	for s, w := range want {
		if got[s] != w {
			t.Errorf("%s = %+v, want %+v", s, got[s], w)
		}
	}
}

func TestVelocityAndProjection(t *testing.T) {
	elapsed := DaysElapsed(10, 6)
	if elapsed != 4 {
		t.Fatalf("DaysElapsed = %d, want 4", elapsed)
	}
	v := Velocity(12, elapsed)
	if v != 3.0 {
		t.Errorf("Velocity = %v, want 3", v)
	}
	if got := ProjectedCompletion(12, v, 6); got != 30 {
		t.Errorf("ProjectedCompletion = %v, want 30", got)
	}
}

func TestVelocityWithoutElapsedDays(t *testing.T) {
	if got := Velocity(12, 0); got != 0 {
		t.Errorf("Velocity = %v, want 0", got)
	}
	if got := ProjectedCompletion(12, Velocity(12, 0), 0); got != 12 {
		t.Errorf("ProjectedCompletion = %v, want 12", got)
	}
	if got := DaysElapsed(5, 9); got != 0 {
		t.Errorf("DaysElapsed = %d, want 0", got)
	}
}

func TestIsBehindSchedule(t *testing.T) {
	if !IsBehindSchedule(18, 20, 2) {
		t.Error("projection below plan with days left should be behind")
	}
	if IsBehindSchedule(18, 20, 0) {
		t.Error("no days left is never behind")
	}
	if IsBehindSchedule(20, 20, 3) {
		t.Error("projection meeting plan is on schedule")
	}
}

func TestSprintProgress(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)

	tasks := []models.Task{
		{ID: 1, EstimateFrontend: pts(8), EstimateBackend: pts(2), Status: models.TaskDone},
		{ID: 2, EstimateBackend: pts(2), Status: models.TaskDone},
		{ID: 3, EstimateQA: pts(21), Status: models.TaskInSprint},
	}
	p := SprintProgress(tasks, StatusDone, start, end, now)

	if p.TotalDays != 10 || p.DaysRemaining != 6 || p.DaysElapsed != 4 {
		t.Fatalf("days = %d/%d/%d, want 10/6/4", p.TotalDays, p.DaysRemaining, p.DaysElapsed)
	}
	if p.CompletedPoints != 12 || p.TotalPoints != 33 {
		t.Errorf("points = %d/%d, want 12/33", p.CompletedPoints, p.TotalPoints)
	}
	if p.Velocity != 3 || p.ProjectedCompletion != 30 {
		t.Errorf("velocity %v projection %v, want 3 and 30", p.Velocity, p.ProjectedCompletion)
	}
	if !p.BehindSchedule {
		t.Error("30 projected of 33 planned should be behind schedule")
	}
}

func TestSprintProgressBeforeStart(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)

	p := SprintProgress(sampleTasks(), StatusDone, start, end, now)
	if p.DaysRemaining != 10 || p.DaysElapsed != 0 || p.Velocity != 0 {
		t.Errorf("progress = %+v", p)
	}
	if p.ProjectedCompletion != float64(p.CompletedPoints) {
		t.Errorf("projection %v, want %d", p.ProjectedCompletion, p.CompletedPoints)
	}
}

func TestCapacityRollup(t *testing.T) {
	members := []models.TeamMember{
		{Name: "a", Specialty: models.SpecialtyBackend, Capacity: 10, Status: models.StatusActive},
		{Name: "b", Specialty: models.SpecialtyBackend, Capacity: 6, Status: models.StatusActive},
		{Name: "c", Specialty: models.SpecialtyBackend, Capacity: 9, Status: models.StatusInactive},
		{Name: "d", Specialty: models.SpecialtyQA, Capacity: 4, Status: models.StatusActive},
	}
	lines := CapacityRollup(members, sampleTasks())
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}

	backend := lines[1]
	if backend.Specialty != models.SpecialtyBackend || backend.Members != 2 || backend.Capacity != 16 {
		t.Errorf("backend = %+v", backend)
	}
	if backend.Planned != 11 || backend.Remaining != 5 || backend.Utilization != 69 {
		t.Errorf("backend = %+v", backend)
	}

	design := lines[3]
	if design.Capacity != 0 || design.Utilization != 0 || design.Remaining != -2 {
		t.Errorf("design = %+v", design)
	}
}

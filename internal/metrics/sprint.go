package metrics

import (
	"time"

	"sprintboard/internal/models"
)

const day = 24 * time.Hour

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SprintDays is the number of calendar days between start and end.
func SprintDays(start, end time.Time) int {
	n := int(calendarDay(end).Sub(calendarDay(start)) / day)
	return max(0, n)
}

// DaysRemaining counts calendar days from now until end, never negative.
func DaysRemaining(end, now time.Time) int {
	n := int(calendarDay(end).Sub(calendarDay(now)) / day)
	return max(0, n)
}

// Progress is the figure set shown on a sprint dashboard.
type Progress struct {
	TotalPoints          int                                    `json:"total_points"`
	CompletedPoints      int                                    `json:"completed_points"`
	CompletionPercentage int                                    `json:"completion_percentage"`
	BySpecialty          map[models.Specialty]SpecialtyProgress `json:"by_specialty"`
	TotalDays            int                                    `json:"total_days"`
	DaysRemaining        int                                    `json:"days_remaining"`
	DaysElapsed          int                                    `json:"days_elapsed"`
	Velocity             float64                                `json:"velocity"`
	ProjectedCompletion  float64                                `json:"projected_completion"`
	BehindSchedule       bool                                   `json:"behind_schedule"`
}

// SprintProgress computes every dashboard figure for a sprint running
// from start to end as seen at now. Before the sprint starts the whole
// duration remains.
func SprintProgress(tasks []models.Task, done Done, start, end, now time.Time) Progress {
	total := SprintDays(start, end)
	remaining := min(DaysRemaining(end, now), total)
	elapsed := DaysElapsed(total, remaining)

	p := Progress{
		TotalPoints:     TotalPoints(tasks),
		CompletedPoints: CompletedPoints(tasks, done),
		BySpecialty:     BySpecialty(tasks, done),
		TotalDays:       total,
		DaysRemaining:   remaining,
		DaysElapsed:     elapsed,
	}
	p.CompletionPercentage = Percentage(p.CompletedPoints, p.TotalPoints)
	p.Velocity = Velocity(p.CompletedPoints, elapsed)
	p.ProjectedCompletion = ProjectedCompletion(p.CompletedPoints, p.Velocity, remaining)
	p.BehindSchedule = IsBehindSchedule(p.ProjectedCompletion, p.TotalPoints, remaining)
	return p
}

// CapacityLine compares member capacity with planned points for one
// specialty.
type CapacityLine struct {
	Specialty   models.Specialty `json:"specialty"`
	Members     int              `json:"members"`
	Capacity    int              `json:"capacity"`
	Planned     int              `json:"planned"`
	Remaining   int              `json:"remaining"`
	Utilization int              `json:"utilization"`
}

// CapacityRollup sums active member capacity per specialty against the
// planned points of tasks. Lines come back in specialty order.
func CapacityRollup(members []models.TeamMember, tasks []models.Task) []CapacityLine {
	planned := BySpecialty(tasks, nil)
	lines := make([]CapacityLine, 0, len(models.Specialties))
	for _, s := range models.Specialties {
		line := CapacityLine{Specialty: s, Planned: planned[s].Planned}
		for _, m := range members {
			if m.Status != models.StatusActive || m.Specialty != s {
				continue
			}
			line.Members++
			line.Capacity += m.Capacity
		}
		line.Remaining = line.Capacity - line.Planned
		line.Utilization = Percentage(line.Planned, line.Capacity)
		lines = append(lines, line)
	}
	return lines
}

// Package metrics computes point totals, completion and velocity figures
// from task collections. Every function is pure and total.
package metrics

import (
	"math"

	"sprintboard/internal/models"
)

// Done reports whether a task counts as completed for a given view.
type Done func(models.Task) bool

// StatusDone treats tasks with the engineering Done status as completed.
func StatusDone(t models.Task) bool {
	return t.Status == models.TaskDone
}

// TotalPoints sums every estimate of every task. Unset estimates are zero.
func TotalPoints(tasks []models.Task) int {
	total := 0
	for _, t := range tasks {
		total += t.TotalEstimate()
	}
	return total
}

// CompletedPoints sums the estimates of the tasks satisfying done.
func CompletedPoints(tasks []models.Task, done Done) int {
	total := 0
	for _, t := range tasks {
		if done != nil && done(t) {
			total += t.TotalEstimate()
		}
	}
	return total
}

// Percentage returns round(part/whole*100) rounding halves up, or 0 when
// whole is not positive.
func Percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Floor(float64(part)*100/float64(whole) + 0.5))
}

// CompletionPercentage is the completed share of all planned points.
func CompletionPercentage(tasks []models.Task, done Done) int {
	return Percentage(CompletedPoints(tasks, done), TotalPoints(tasks))
}

// SpecialtyProgress holds the planned and completed points of one specialty.
type SpecialtyProgress struct {
	Planned    int `json:"planned"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// BySpecialty breaks points down per estimate field. All four
// specialties are always present.
func BySpecialty(tasks []models.Task, done Done) map[models.Specialty]SpecialtyProgress {
	out := make(map[models.Specialty]SpecialtyProgress, len(models.Specialties))
	for _, s := range models.Specialties {
		var p SpecialtyProgress
		for _, t := range tasks {
			v := t.Estimate(s)
			p.Planned += v
			if done != nil && done(t) {
				p.Completed += v
			}
		}
		p.Percentage = Percentage(p.Completed, p.Planned)
		out[s] = p
	}
	return out
}

// Velocity is completed points per elapsed day, 0 before the first day.
func Velocity(completed, daysElapsed int) float64 {
	if daysElapsed <= 0 {
		return 0
	}
	return float64(completed) / float64(daysElapsed)
}

// DaysElapsed is max(0, totalDays-daysRemaining).
func DaysElapsed(totalDays, daysRemaining int) int {
	return max(0, totalDays-daysRemaining)
}

// ProjectedCompletion extrapolates completed points to the sprint end.
func ProjectedCompletion(completed int, velocity float64, daysRemaining int) float64 {
	if daysRemaining <= 0 {
		return float64(completed)
	}
	return float64(completed) + velocity*float64(daysRemaining)
}

// IsBehindSchedule reports whether the projection falls short of the
// plan while there is still time left.
func IsBehindSchedule(projected float64, planned, daysRemaining int) bool {
	return daysRemaining > 0 && projected < float64(planned)
}

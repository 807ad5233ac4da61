// Package board groups cards into ordered columns and turns drag
// gestures into the order_index assignments to persist.
package board

import (
	"slices"

	"sprintboard/internal/models"
)

// Column sets rendered by the boards.
var (
	SprintColumns = []string{
		string(models.SprintTaskTodo),
		string(models.SprintTaskInProgress),
		string(models.SprintTaskDone),
		string(models.SprintTaskBlocked),
	}
	ProductColumns = []string{
		string(models.TaskDiscovery),
		string(models.TaskRefinement),
		string(models.TaskReadyForEng),
	}
	EngineeringColumns = []string{
		string(models.TaskBacklog),
		string(models.TaskInSprint),
		string(models.TaskDone),
		string(models.TaskArchived),
	}
)

// Partition maps every known column to the items whose key matches it,
// ordered by order index. Items sharing an order index keep their input
// order. Items whose key matches no column are dropped from every column.
func Partition[T any](columns []string, items []T, key func(T) string, order func(T) int) map[string][]T {
	out := make(map[string][]T, len(columns))
	for _, c := range columns {
		out[c] = []T{}
	}
	for _, it := range items {
		k := key(it)
		if _, ok := out[k]; !ok {
			continue
		}
		out[k] = append(out[k], it)
	}
	for c := range out {
		slices.SortStableFunc(out[c], func(a, b T) int {
			return order(a) - order(b)
		})
	}
	return out
}

// Card is the minimal shape the reorder engine works on.
type Card struct {
	ID         int64  `json:"id"`
	Column     string `json:"column"`
	OrderIndex int    `json:"order_index"`
}

// TaskCards projects tasks onto their status column.
func TaskCards(tasks []models.Task) []Card {
	cards := make([]Card, len(tasks))
	for i, t := range tasks {
		cards[i] = Card{ID: t.ID, Column: string(t.Status), OrderIndex: t.OrderIndex}
	}
	return cards
}

// SprintCards projects sprint links onto their execution column. The
// card id is the link id, not the task id.
func SprintCards(links []models.SprintTask) []Card {
	cards := make([]Card, len(links))
	for i, l := range links {
		cards[i] = Card{ID: l.ID, Column: string(l.TaskStatus), OrderIndex: l.OrderIndex}
	}
	return cards
}

func partitionCards(columns []string, cards []Card) map[string][]Card {
	return Partition(columns, cards,
		func(c Card) string { return c.Column },
		func(c Card) int { return c.OrderIndex })
}

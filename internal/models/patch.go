package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Optional distinguishes an absent JSON key from an explicit null, so
// a patch can clear nullable fields.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a set Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// TaskPatch is a partial task update. Nil pointers and unset optionals
// leave the field untouched. Status and order are changed through board
// moves, but Status may also be patched directly (it is appended to the
// end of its new column by the caller).
type TaskPatch struct {
	Title            *string             `json:"title"`
	Description      *string             `json:"description"`
	EstimateFrontend Optional[int]       `json:"estimate_frontend"`
	EstimateBackend  Optional[int]       `json:"estimate_backend"`
	EstimateQA       Optional[int]       `json:"estimate_qa"`
	EstimateDesign   Optional[int]       `json:"estimate_design"`
	TaskType         *TaskType           `json:"task_type"`
	Priority         *Priority           `json:"priority"`
	Status           *TaskStatus         `json:"status"`
	StartDate        Optional[time.Time] `json:"start_date"`
	EndDate          Optional[time.Time] `json:"end_date"`
	Objective        *string             `json:"objective"`
	BusinessGoal     *string             `json:"business_goal"`
	UserImpact       *string             `json:"user_impact"`
	HasPrototype     *bool               `json:"has_prototype"`
	PrototypeLink    *string             `json:"prototype_link"`
	FeatureID        Optional[int64]     `json:"feature_id"`
}

// Apply copies the set fields onto t and returns the changed columns.
func (p TaskPatch) Apply(t *Task) map[string]any {
	f := map[string]any{}
	setString(f, "title", p.Title, &t.Title)
	setString(f, "description", p.Description, &t.Description)
	setOptional(f, "estimate_frontend", p.EstimateFrontend, &t.EstimateFrontend)
	setOptional(f, "estimate_backend", p.EstimateBackend, &t.EstimateBackend)
	setOptional(f, "estimate_qa", p.EstimateQA, &t.EstimateQA)
	setOptional(f, "estimate_design", p.EstimateDesign, &t.EstimateDesign)
	setValue(f, "task_type", p.TaskType, &t.TaskType)
	setValue(f, "priority", p.Priority, &t.Priority)
	setValue(f, "status", p.Status, &t.Status)
	setOptional(f, "start_date", p.StartDate, &t.StartDate)
	setOptional(f, "end_date", p.EndDate, &t.EndDate)
	setString(f, "objective", p.Objective, &t.Objective)
	setString(f, "business_goal", p.BusinessGoal, &t.BusinessGoal)
	setString(f, "user_impact", p.UserImpact, &t.UserImpact)
	setValue(f, "has_prototype", p.HasPrototype, &t.HasPrototype)
	setString(f, "prototype_link", p.PrototypeLink, &t.PrototypeLink)
	setOptional(f, "feature_id", p.FeatureID, &t.FeatureID)
	return f
}

type SquadPatch struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Status      *ActiveStatus `json:"status"`
}

func (p SquadPatch) Apply(s *Squad) map[string]any {
	f := map[string]any{}
	setString(f, "name", p.Name, &s.Name)
	setString(f, "description", p.Description, &s.Description)
	setValue(f, "status", p.Status, &s.Status)
	return f
}

type MemberPatch struct {
	Name      *string       `json:"name"`
	SquadID   *int64        `json:"squad_id"`
	Capacity  *int          `json:"capacity"`
	Specialty *Specialty    `json:"specialty"`
	Status    *ActiveStatus `json:"status"`
}

func (p MemberPatch) Apply(m *TeamMember) map[string]any {
	f := map[string]any{}
	setString(f, "name", p.Name, &m.Name)
	setValue(f, "squad_id", p.SquadID, &m.SquadID)
	setValue(f, "capacity", p.Capacity, &m.Capacity)
	setValue(f, "specialty", p.Specialty, &m.Specialty)
	setValue(f, "status", p.Status, &m.Status)
	return f
}

type SprintPatch struct {
	Name      *string       `json:"name"`
	SquadID   *int64        `json:"squad_id"`
	StartDate *time.Time    `json:"start_date"`
	EndDate   *time.Time    `json:"end_date"`
	Status    *SprintStatus `json:"status"`
}

func (p SprintPatch) Apply(s *Sprint) map[string]any {
	f := map[string]any{}
	setString(f, "name", p.Name, &s.Name)
	setValue(f, "squad_id", p.SquadID, &s.SquadID)
	setValue(f, "start_date", p.StartDate, &s.StartDate)
	setValue(f, "end_date", p.EndDate, &s.EndDate)
	setValue(f, "status", p.Status, &s.Status)
	return f
}

type ReleasePatch struct {
	Version     *string         `json:"version"`
	ReleaseDate *time.Time      `json:"release_date"`
	SquadID     Optional[int64] `json:"squad_id"`
	Status      *ReleaseStatus  `json:"status"`
	Description *string         `json:"description"`
	Notes       *string         `json:"notes"`
	Color       *string         `json:"color"`
}

func (p ReleasePatch) Apply(r *Release) map[string]any {
	f := map[string]any{}
	setString(f, "version", p.Version, &r.Version)
	setValue(f, "release_date", p.ReleaseDate, &r.ReleaseDate)
	setOptional(f, "squad_id", p.SquadID, &r.SquadID)
	setValue(f, "status", p.Status, &r.Status)
	setString(f, "description", p.Description, &r.Description)
	setString(f, "notes", p.Notes, &r.Notes)
	setString(f, "color", p.Color, &r.Color)
	return f
}

type DocumentPatch struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
	Content  *string `json:"content"`
}

func (p DocumentPatch) Apply(d *Document) map[string]any {
	f := map[string]any{}
	setString(f, "title", p.Title, &d.Title)
	setString(f, "category", p.Category, &d.Category)
	setString(f, "content", p.Content, &d.Content)
	return f
}

func setString(f map[string]any, column string, src *string, dst *string) {
	if src == nil {
		return
	}
	*dst = *src
	f[column] = *src
}

func setValue[T any](f map[string]any, column string, src *T, dst *T) {
	if src == nil {
		return
	}
	*dst = *src
	f[column] = *src
}

func setOptional[T any](f map[string]any, column string, src Optional[T], dst **T) {
	if !src.Set {
		return
	}
	*dst = src.Value
	if src.Value == nil {
		f[column] = nil
		return
	}
	f[column] = *src.Value
}

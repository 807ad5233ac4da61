package models

import "time"

// Workspace is the tenant that scopes every other collection.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=80"`
	Owner     string    `json:"owner" validate:"max=120"`
	CreatedAt time.Time `json:"created_at"`
}

// Squad groups team members working on the same sprints.
type Squad struct {
	ID          int64        `json:"id"`
	WorkspaceID string       `json:"workspace_id"`
	Name        string       `json:"name" validate:"required,max=80"`
	Description string       `json:"description" validate:"max=500"`
	Status      ActiveStatus `json:"status" validate:"oneof=Active Inactive"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TeamMember is a person with a per-sprint point capacity.
type TeamMember struct {
	ID          int64        `json:"id"`
	WorkspaceID string       `json:"workspace_id"`
	Name        string       `json:"name" validate:"required,max=120"`
	SquadID     int64        `json:"squad_id" validate:"required"`
	Capacity    int          `json:"capacity" validate:"gt=0"`
	Specialty   Specialty    `json:"specialty" validate:"oneof=Frontend Backend QA Design"`
	Status      ActiveStatus `json:"status" validate:"oneof=Active Inactive"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Task is a backlog item. Status tracks the product and engineering
// lifecycle; per-sprint execution state lives on SprintTask.
type Task struct {
	ID               int64      `json:"id"`
	WorkspaceID      string     `json:"workspace_id"`
	Title            string     `json:"title" validate:"required,max=200"`
	Description      string     `json:"description" validate:"max=5000"`
	EstimateFrontend *int       `json:"estimate_frontend" validate:"omitempty,oneof=1 2 3 5 8 13 21"`
	EstimateBackend  *int       `json:"estimate_backend" validate:"omitempty,oneof=1 2 3 5 8 13 21"`
	EstimateQA       *int       `json:"estimate_qa" validate:"omitempty,oneof=1 2 3 5 8 13 21"`
	EstimateDesign   *int       `json:"estimate_design" validate:"omitempty,oneof=1 2 3 5 8 13 21"`
	TaskType         TaskType   `json:"task_type" validate:"oneof=Feature Bug TechDebt Spike"`
	Priority         Priority   `json:"priority" validate:"oneof=High Medium Low"`
	Status           TaskStatus `json:"status" validate:"oneof=Discovery Refinement ReadyForEng Backlog InSprint Done Archived"`
	OrderIndex       int        `json:"order_index"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Objective        string     `json:"objective" validate:"max=1000"`
	BusinessGoal     string     `json:"business_goal" validate:"max=1000"`
	UserImpact       string     `json:"user_impact" validate:"max=1000"`
	HasPrototype     bool       `json:"has_prototype"`
	PrototypeLink    string     `json:"prototype_link" validate:"omitempty,url"`
	FeatureID        *int64     `json:"feature_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Estimate returns the estimate for one specialty, zero when unset.
func (t Task) Estimate(s Specialty) int {
	var v *int
	switch s {
	case SpecialtyFrontend:
		v = t.EstimateFrontend
	case SpecialtyBackend:
		v = t.EstimateBackend
	case SpecialtyQA:
		v = t.EstimateQA
	case SpecialtyDesign:
		v = t.EstimateDesign
	}
	if v == nil {
		return 0
	}
	return *v
}

// TotalEstimate sums all four estimates, treating unset ones as zero.
func (t Task) TotalEstimate() int {
	total := 0
	for _, s := range Specialties {
		total += t.Estimate(s)
	}
	return total
}

// Sprint is a time box for one squad.
type Sprint struct {
	ID          int64        `json:"id"`
	WorkspaceID string       `json:"workspace_id"`
	Name        string       `json:"name" validate:"required,max=120"`
	SquadID     int64        `json:"squad_id" validate:"required"`
	StartDate   time.Time    `json:"start_date" validate:"required"`
	EndDate     time.Time    `json:"end_date" validate:"required"`
	Status      SprintStatus `json:"status" validate:"oneof=Planning Active Completed Cancelled"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// SprintTask links a task into a sprint board. TaskStatus is the
// per-sprint execution state and is independent of Task.Status.
type SprintTask struct {
	ID          int64            `json:"id"`
	WorkspaceID string           `json:"workspace_id"`
	SprintID    int64            `json:"sprint_id"`
	TaskID      int64            `json:"task_id"`
	OrderIndex  int              `json:"order_index"`
	TaskStatus  SprintTaskStatus `json:"task_status" validate:"oneof=Todo InProgress Done Blocked"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TaskAssignment assigns a team member to a task.
type TaskAssignment struct {
	ID          int64     `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	TaskID      int64     `json:"task_id" validate:"required"`
	MemberID    int64     `json:"member_id" validate:"required"`
	CreatedAt   time.Time `json:"created_at"`
}

// Release is a planned version shipment.
type Release struct {
	ID          int64         `json:"id"`
	WorkspaceID string        `json:"workspace_id"`
	Version     string        `json:"version" validate:"required,max=40"`
	ReleaseDate time.Time     `json:"release_date" validate:"required"`
	SquadID     *int64        `json:"squad_id"`
	Status      ReleaseStatus `json:"status" validate:"oneof=Planned InProgress Released Cancelled"`
	Description string        `json:"description" validate:"max=2000"`
	Notes       string        `json:"notes" validate:"max=5000"`
	Color       string        `json:"color" validate:"omitempty,hexcolor"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Document is a page in the documentation hub. Content is markdown.
type Document struct {
	ID          int64     `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Category    string    `json:"category" validate:"max=60"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

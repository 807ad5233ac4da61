package models

// Specialty tags both member skills and per-task estimate fields.
type Specialty string

const (
	SpecialtyFrontend Specialty = "Frontend"
	SpecialtyBackend  Specialty = "Backend"
	SpecialtyQA       Specialty = "QA"
	SpecialtyDesign   Specialty = "Design"
)

// Specialties lists every specialty in display order.
var Specialties = []Specialty{SpecialtyFrontend, SpecialtyBackend, SpecialtyQA, SpecialtyDesign}

type TaskType string

const (
	TaskTypeFeature  TaskType = "Feature"
	TaskTypeBug      TaskType = "Bug"
	TaskTypeTechDebt TaskType = "TechDebt"
	TaskTypeSpike    TaskType = "Spike"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// TaskStatus covers the product lifecycle (Discovery, Refinement,
// ReadyForEng) followed by the engineering lifecycle.
type TaskStatus string

const (
	TaskDiscovery   TaskStatus = "Discovery"
	TaskRefinement  TaskStatus = "Refinement"
	TaskReadyForEng TaskStatus = "ReadyForEng"
	TaskBacklog     TaskStatus = "Backlog"
	TaskInSprint    TaskStatus = "InSprint"
	TaskDone        TaskStatus = "Done"
	TaskArchived    TaskStatus = "Archived"
)

// IsProduct reports whether the status belongs to the product lifecycle.
func (s TaskStatus) IsProduct() bool {
	return s == TaskDiscovery || s == TaskRefinement || s == TaskReadyForEng
}

// SprintTaskStatus is the execution state of a task inside one sprint.
type SprintTaskStatus string

const (
	SprintTaskTodo       SprintTaskStatus = "Todo"
	SprintTaskInProgress SprintTaskStatus = "InProgress"
	SprintTaskDone       SprintTaskStatus = "Done"
	SprintTaskBlocked    SprintTaskStatus = "Blocked"
)

type SprintStatus string

const (
	SprintPlanning  SprintStatus = "Planning"
	SprintActive    SprintStatus = "Active"
	SprintCompleted SprintStatus = "Completed"
	SprintCancelled SprintStatus = "Cancelled"
)

type ActiveStatus string

const (
	StatusActive   ActiveStatus = "Active"
	StatusInactive ActiveStatus = "Inactive"
)

type ReleaseStatus string

const (
	ReleasePlanned    ReleaseStatus = "Planned"
	ReleaseInProgress ReleaseStatus = "InProgress"
	ReleaseReleased   ReleaseStatus = "Released"
	ReleaseCancelled  ReleaseStatus = "Cancelled"
)

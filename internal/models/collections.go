package models

// Collection names shared by the store, the change hub and the
// subscription stream.
const (
	CollectionWorkspaces  = "workspaces"
	CollectionSquads      = "squads"
	CollectionMembers     = "team_members"
	CollectionTasks       = "tasks"
	CollectionSprints     = "sprints"
	CollectionSprintTasks = "sprint_tasks"
	CollectionAssignments = "task_assignments"
	CollectionReleases    = "releases"
	CollectionDocuments   = "documents"
)

// ScopedCollections lists every workspace scoped collection.
var ScopedCollections = []string{
	CollectionSquads,
	CollectionMembers,
	CollectionTasks,
	CollectionSprints,
	CollectionSprintTasks,
	CollectionAssignments,
	CollectionReleases,
	CollectionDocuments,
}

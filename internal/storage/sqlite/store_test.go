package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sprintboard/internal/board"
	"sprintboard/internal/events"
	"sprintboard/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "test.db"), nil, events.NewHub())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedWorkspace(t *testing.T, store *Store) string {
	t.Helper()
	ws, err := store.CreateWorkspace(context.Background(), "Team", "owner@example.com")
	if err != nil {
		t.Fatalf("CreateWorkspace: %v", err)
	}
	return ws.ID
}

func intp(v int) *int { return &v }

func seedTask(t *testing.T, store *Store, ws, title string, status models.TaskStatus) models.Task {
	t.Helper()
	task := models.Task{Title: title, Status: status, EstimateBackend: intp(3)}
	task.ApplyDefaults()
	created, err := store.CreateTask(context.Background(), ws, task)
	if err != nil {
		t.Fatalf("CreateTask(%s): %v", title, err)
	}
	return created
}

func TestMigrationStatus(t *testing.T) {
	store := openTestStore(t)
	status, err := store.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus: %v", err)
	}
	if status.CurrentVersion != 2 || status.LatestVersion != 2 || status.Pending || status.Dirty {
		t.Errorf("status = %+v, want version 2 fully applied", status)
	}
	if err := store.Migrate(); err != nil {
		t.Errorf("second Migrate: %v", err)
	}
}

func TestCreateTaskAppendsToColumn(t *testing.T) {
	store := openTestStore(t)
	ws := seedWorkspace(t, store)

	a := seedTask(t, store, ws, "a", models.TaskBacklog)
	b := seedTask(t, store, ws, "b", models.TaskBacklog)
	c := seedTask(t, store, ws, "c", models.TaskDiscovery)

	if a.OrderIndex != 0 || b.OrderIndex != 1 || c.OrderIndex != 0 {
		t.Errorf("order indexes = %d %d %d, want 0 1 0", a.OrderIndex, b.OrderIndex, c.OrderIndex)
	}
	if a.EstimateBackend == nil || *a.EstimateBackend != 3 || a.EstimateQA != nil {
		t.Errorf("estimates not round-tripped: %+v", a)
	}
}

func TestWorkspaceIsolation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ws1 := seedWorkspace(t, store)
	ws2 := seedWorkspace(t, store)

	task := seedTask(t, store, ws1, "private", models.TaskBacklog)

	other, err := store.ListTasks(ctx, ws2)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("ws2 sees %d tasks, want 0", len(other))
	}
	if _, err := store.GetTask(ctx, ws2, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask across workspaces = %v, want ErrNotFound", err)
	}
	if err := store.Patch(ctx, ws2, models.CollectionTasks, task.ID, map[string]any{"title": "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Patch across workspaces = %v, want ErrNotFound", err)
	}
}

func TestPatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ws := seedWorkspace(t, store)
	task := seedTask(t, store, ws, "a", models.TaskBacklog)

	err := store.Patch(ctx, ws, models.CollectionTasks, task.ID, map[string]any{
		"title":            "renamed",
		"estimate_backend": nil,
		"estimate_qa":      5,
		"priority":         models.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	got, err := store.GetTask(ctx, ws, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "renamed" || got.EstimateBackend != nil || got.EstimateQA == nil || *got.EstimateQA != 5 || got.Priority != models.PriorityHigh {
		t.Errorf("patched task = %+v", got)
	}

	if err := store.Patch(ctx, ws, models.CollectionTasks, task.ID, map[string]any{"workspace_id": "evil"}); err == nil {
		t.Error("expected non-whitelisted column to be rejected")
	}
	if err := store.Patch(ctx, ws, "widgets", task.ID, map[string]any{"title": "x"}); err == nil {
		t.Error("expected unknown collection to be rejected")
	}
}

func TestDeleteCascades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ws := seedWorkspace(t, store)

	squad, err := store.CreateSquad(ctx, ws, models.Squad{Name: "Core", Status: models.StatusActive})
	if err != nil {
		t.Fatalf("CreateSquad: %v", err)
	}
	member, err := store.CreateMember(ctx, ws, models.TeamMember{Name: "Ana", SquadID: squad.ID, Capacity: 8,
		Specialty: models.SpecialtyBackend, Status: models.StatusActive})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	task := seedTask(t, store, ws, "a", models.TaskInSprint)
	sprint, err := store.CreateSprint(ctx, ws, models.Sprint{Name: "S1", SquadID: squad.ID,
		StartDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC),
		Status: models.SprintActive})
	if err != nil {
		t.Fatalf("CreateSprint: %v", err)
	}
	if _, err := store.AddSprintTask(ctx, ws, sprint.ID, task.ID); err != nil {
		t.Fatalf("AddSprintTask: %v", err)
	}
	if _, err := store.Assign(ctx, ws, task.ID, member.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	if err := store.Remove(ctx, ws, models.CollectionTasks, task.ID); err != nil {
		t.Fatalf("Remove task: %v", err)
	}
	links, _ := store.ListSprintTasks(ctx, ws)
	assignments, _ := store.ListAssignments(ctx, ws)
	if len(links) != 0 || len(assignments) != 0 {
		t.Errorf("after task delete: %d links, %d assignments; want 0", len(links), len(assignments))
	}

	if err := store.Remove(ctx, ws, models.CollectionSquads, squad.ID); err != nil {
		t.Fatalf("Remove squad: %v", err)
	}
	members, _ := store.ListMembers(ctx, ws)
	if len(members) != 0 {
		t.Errorf("after squad delete: %d members, want 0", len(members))
	}
	if err := store.Remove(ctx, ws, models.CollectionSquads, squad.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove = %v, want ErrNotFound", err)
	}
}

func TestApplyTaskOrderIsAtomic(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ws := seedWorkspace(t, store)
	a := seedTask(t, store, ws, "a", models.TaskBacklog)
	b := seedTask(t, store, ws, "b", models.TaskBacklog)

	err := store.ApplyTaskOrder(ctx, ws, []board.Assignment{
		{ID: b.ID, Column: string(models.TaskBacklog), OrderIndex: 0},
		{ID: a.ID, Column: string(models.TaskDone), OrderIndex: 0},
	})
	if err != nil {
		t.Fatalf("ApplyTaskOrder: %v", err)
	}
	gotA, _ := store.GetTask(ctx, ws, a.ID)
	gotB, _ := store.GetTask(ctx, ws, b.ID)
	if gotA.Status != models.TaskDone || gotA.OrderIndex != 0 || gotB.OrderIndex != 0 {
		t.Errorf("a = %s/%d, b = %d", gotA.Status, gotA.OrderIndex, gotB.OrderIndex)
	}
}

func TestPatchTaskWritesOrderInSameTransaction(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ws := seedWorkspace(t, store)
	a := seedTask(t, store, ws, "a", models.TaskBacklog)
	b := seedTask(t, store, ws, "b", models.TaskBacklog)

	err := store.PatchTask(ctx, ws, a.ID, map[string]any{"title": "a2"}, []board.Assignment{
		{ID: a.ID, Column: string(models.TaskDone), OrderIndex: 0},
		{ID: b.ID, Column: string(models.TaskBacklog), OrderIndex: 0},
	})
	if err != nil {
		t.Fatalf("PatchTask: %v", err)
	}
	gotA, _ := store.GetTask(ctx, ws, a.ID)
	gotB, _ := store.GetTask(ctx, ws, b.ID)
	if gotA.Title != "a2" || gotA.Status != models.TaskDone || gotB.OrderIndex != 0 {
		t.Errorf("a = %s %s/%d, b = %d", gotA.Title, gotA.Status, gotA.OrderIndex, gotB.OrderIndex)
	}

	err = store.PatchTask(ctx, ws, 999, map[string]any{"title": "x"}, []board.Assignment{
		{ID: b.ID, Column: string(models.TaskBacklog), OrderIndex: 7},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("PatchTask(999) = %v, want ErrNotFound", err)
	}
	if gotB, _ = store.GetTask(ctx, ws, b.ID); gotB.OrderIndex != 0 {
		t.Errorf("order written despite failed patch: %d", gotB.OrderIndex)
	}
}

func TestRemoveTaskRenumbers(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ws := seedWorkspace(t, store)
	a := seedTask(t, store, ws, "a", models.TaskBacklog)
	b := seedTask(t, store, ws, "b", models.TaskBacklog)

	if err := store.RemoveTask(ctx, ws, a.ID, []board.Assignment{
		{ID: b.ID, Column: string(models.TaskBacklog), OrderIndex: 0},
	}, nil); err != nil {
		t.Fatalf("RemoveTask: %v", err)
	}
	if _, err := store.GetTask(ctx, ws, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask after remove = %v", err)
	}
	if gotB, _ := store.GetTask(ctx, ws, b.ID); gotB.OrderIndex != 0 {
		t.Errorf("b order = %d, want 0", gotB.OrderIndex)
	}
	if err := store.RemoveTask(ctx, ws, a.ID, nil, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveTask = %v, want ErrNotFound", err)
	}
}

func TestCreateWorkspaceIfNone(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, created, err := store.CreateWorkspaceIfNone(ctx, "Default workspace", "")
	if err != nil || !created || first.ID == "" {
		t.Fatalf("first call = %+v, %v, %v", first, created, err)
	}
	_, created, err = store.CreateWorkspaceIfNone(ctx, "Default workspace", "")
	if err != nil || created {
		t.Fatalf("second call created=%v err=%v, want no-op", created, err)
	}
	all, _ := store.ListWorkspaces(ctx)
	if len(all) != 1 {
		t.Errorf("got %d workspaces, want 1", len(all))
	}
}

func TestPreferences(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.GetPreference(ctx, "k"); ok || err != nil {
		t.Fatalf("missing key = %v, %v", ok, err)
	}
	if err := store.SetPreference(ctx, "k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetPreference(ctx, "k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := store.GetPreference(ctx, "k"); !ok || v != "v2" {
		t.Errorf("GetPreference = %q, %v", v, ok)
	}
}

func TestMutationsPublishChanges(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws := seedWorkspace(t, store)

	ch := store.Hub().Subscribe(ctx, models.CollectionSprintTasks, ws)
	task := seedTask(t, store, ws, "a", models.TaskBacklog)

	select {
	case <-ch:
		t.Fatal("sprint_tasks subscriber notified about a task insert")
	default:
	}

	if err := store.Remove(ctx, ws, models.CollectionTasks, task.ID); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-ch:
		if c.Collection != models.CollectionSprintTasks {
			t.Errorf("change = %+v", c)
		}
	default:
		t.Fatal("task delete did not notify cascaded sprint_tasks subscribers")
	}
}

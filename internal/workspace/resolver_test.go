package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"sprintboard/internal/events"
	"sprintboard/internal/models"
	"sprintboard/internal/storage/sqlite"
)

func newResolver(t *testing.T) (*Resolver, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "ws.db"), nil, events.NewHub())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store, nil), store
}

func TestEnsureDefaultIsIdempotent(t *testing.T) {
	r, store := newResolver(t)
	ctx := context.Background()

	created, err := r.EnsureDefault(ctx, "me")
	if err != nil || !created {
		t.Fatalf("first EnsureDefault = %v, %v", created, err)
	}
	created, err = r.EnsureDefault(ctx, "me")
	if err != nil || created {
		t.Fatalf("second EnsureDefault = %v, %v; want no-op", created, err)
	}

	all, err := store.ListWorkspaces(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Name != DefaultName {
		t.Fatalf("workspaces = %+v, want exactly the default one", all)
	}
	active, err := r.Active(ctx)
	if err != nil || active.ID != all[0].ID {
		t.Errorf("Active = %+v, %v; want the provisioned workspace", active, err)
	}
}

func TestEnsureDefaultSkipsWhenWorkspaceExists(t *testing.T) {
	r, store := newResolver(t)
	ctx := context.Background()
	if _, err := store.CreateWorkspace(ctx, "Existing", ""); err != nil {
		t.Fatal(err)
	}
	if created, err := r.EnsureDefault(ctx, ""); err != nil || created {
		t.Fatalf("EnsureDefault = %v, %v; want no-op", created, err)
	}
	all, _ := store.ListWorkspaces(ctx)
	if len(all) != 1 {
		t.Errorf("got %d workspaces, want 1", len(all))
	}
}

func TestActiveWithoutWorkspaces(t *testing.T) {
	r, _ := newResolver(t)
	if _, err := r.Active(context.Background()); !errors.Is(err, ErrNoWorkspace) {
		t.Fatalf("Active = %v, want ErrNoWorkspace", err)
	}
}

func TestSelectPersistsAcrossResolvers(t *testing.T) {
	r, store := newResolver(t)
	ctx := context.Background()
	first, _ := store.CreateWorkspace(ctx, "First", "")
	second, _ := store.CreateWorkspace(ctx, "Second", "")

	if _, err := r.Select(ctx, second.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}
	reloaded := New(store, nil)
	active, err := reloaded.Active(ctx)
	if err != nil || active.ID != second.ID {
		t.Errorf("Active after reload = %+v, %v; want %s", active, err, second.ID)
	}

	if _, err := r.Select(ctx, "missing"); !errors.Is(err, ErrUnknown) {
		t.Errorf("Select(missing) = %v, want ErrUnknown", err)
	}

	if err := store.DeleteWorkspace(ctx, second.ID); err != nil {
		t.Fatal(err)
	}
	active, err = r.Active(ctx)
	if err != nil || active.ID != first.ID {
		t.Errorf("Active after delete = %+v, %v; want fallback to %s", active, err, first.ID)
	}
}

type memStore struct {
	workspaces []models.Workspace
	prefs      map[string]string
}

func (m *memStore) ListWorkspaces(context.Context) ([]models.Workspace, error) {
	return m.workspaces, nil
}
func (m *memStore) CreateWorkspaceIfNone(_ context.Context, name, owner string) (models.Workspace, bool, error) {
	if len(m.workspaces) > 0 {
		return models.Workspace{}, false, nil
	}
	w := models.Workspace{ID: "generated", Name: name, Owner: owner}
	m.workspaces = append(m.workspaces, w)
	return w, true, nil
}
func (m *memStore) GetPreference(_ context.Context, key string) (string, bool, error) {
	v, ok := m.prefs[key]
	return v, ok, nil
}
func (m *memStore) SetPreference(_ context.Context, key, value string) error {
	m.prefs[key] = value
	return nil
}

func TestActiveToleratesLegacyState(t *testing.T) {
	store := &memStore{
		workspaces: []models.Workspace{{ID: "a"}, {ID: "b"}},
		prefs:      map[string]string{PreferenceKey: "not json"},
	}
	r := New(store, nil)
	active, err := r.Active(context.Background())
	if err != nil || active.ID != "a" {
		t.Fatalf("Active = %+v, %v; want fallback to a", active, err)
	}
	if store.prefs[PreferenceKey] != `{"workspace_id":"a"}` {
		t.Errorf("persisted state = %q", store.prefs[PreferenceKey])
	}

	store.prefs[PreferenceKey] = `{}`
	if active, _ := r.Active(context.Background()); active.ID != "a" {
		t.Errorf("Active with empty blob = %+v", active)
	}
}

package feeds

import (
	"path/filepath"
	"testing"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "subs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSeedOnlyWhenEmpty(t *testing.T) {
	store := openTestStore(t)

	defaults := []domain.Feed{
		{ID: "a", URL: "https://a/rss", Title: "Alpha"},
		{ID: "b", URL: "https://b/rss", Title: "Beta"},
	}
	if err := store.Seed(defaults); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if err := store.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	// Re-seeding a non-empty store must not resurrect removed defaults.
	if err := store.Seed(defaults); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != "b" {
		t.Errorf("list = %+v, want only feed b", list)
	}
}

func TestStoreAddListRemove(t *testing.T) {
	store := openTestStore(t)

	feedsIn := []domain.Feed{
		{ID: "z", URL: "https://z/rss", Title: "Zulu"},
		{ID: "m", URL: "https://m/rss", Title: "Mike"},
		{ID: "a", URL: "https://a/rss", Title: "Alpha"},
	}
	for _, f := range feedsIn {
		if err := store.Add(f); err != nil {
			t.Fatalf("Add(%s): %v", f.ID, err)
		}
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list = %d feeds, want 3", len(list))
	}
	if list[0].Title != "Alpha" || list[1].Title != "Mike" || list[2].Title != "Zulu" {
		t.Errorf("list not ordered by title: %+v", list)
	}

	if err := store.Remove("m"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	list, _ = store.List()
	if len(list) != 2 {
		t.Errorf("list = %d feeds after removal, want 2", len(list))
	}
}

func TestStoreAddValidates(t *testing.T) {
	store := openTestStore(t)

	if err := store.Add(domain.Feed{ID: "", URL: "https://x", Title: "X"}); err == nil {
		t.Error("Add with empty id: err = nil")
	}
	if err := store.Add(domain.Feed{ID: "x", URL: "", Title: "X"}); err == nil {
		t.Error("Add with empty url: err = nil")
	}
	if err := store.Add(domain.Feed{ID: "x", URL: "https://x", Title: "  "}); err == nil {
		t.Error("Add with blank title: err = nil")
	}
}

func TestStoreAddUpsertsByID(t *testing.T) {
	store := openTestStore(t)

	if err := store.Add(domain.Feed{ID: "x", URL: "https://x/rss", Title: "Old Title"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add(domain.Feed{ID: "x", URL: "https://x/rss", Title: "New Title"}); err != nil {
		t.Fatalf("Add again: %v", err)
	}

	list, _ := store.List()
	if len(list) != 1 {
		t.Fatalf("list = %d feeds, want 1", len(list))
	}
	if list[0].Title != "New Title" {
		t.Errorf("Title = %q, want the updated value", list[0].Title)
	}
}

func TestStoreOnChangeNotifies(t *testing.T) {
	store := openTestStore(t)

	var events int
	store.OnChange(func() { events++ })

	if err := store.Add(domain.Feed{ID: "x", URL: "https://x/rss", Title: "X"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Remove("x"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if events != 2 {
		t.Errorf("change events = %d, want 2", events)
	}

	// Seeding and listing are not user mutations and stay silent.
	if err := store.Seed([]domain.Feed{{ID: "y", URL: "https://y/rss", Title: "Y"}}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if events != 2 {
		t.Errorf("change events after seed = %d, want 2", events)
	}
}

func TestStoreReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Add(domain.Feed{ID: "x", URL: "https://x/rss", Title: "X"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	list, err := reopened.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != "x" {
		t.Errorf("list = %+v, want the persisted feed", list)
	}
}

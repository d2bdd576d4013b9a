package artifact

import (
	"errors"
	"os"
	"testing"
)

func TestDirStore_RoundTrip(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save("run-1", "script.md", []byte("# Episode")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(store.Path("run-1", "script.md")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	got, err := store.Get("run-1", "script.md")
	if err != nil || string(got) != "# Episode" {
		t.Fatalf("get mismatch: %q %v", got, err)
	}
	ids, err := store.List("run-1")
	if err != nil || len(ids) != 1 || ids[0] != "script.md" {
		t.Fatalf("list mismatch: %v %v", ids, err)
	}
	if err := store.Delete("run-1", "script.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get("run-1", "script.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDirStore_UnknownRunListsEmpty(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ids, err := store.List("missing")
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected empty list, got %v %v", ids, err)
	}
}

func TestDirStore_RejectsTraversal(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"../x", "a/b", "", ".."} {
		if err := store.Save("run-1", id, []byte("x")); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID for %q, got %v", id, err)
		}
	}
}

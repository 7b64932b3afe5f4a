package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
)

// newTestStorage creates a Storage instance backed by a temporary SQLite
// database and a logger writing into the test's temp directory.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dir := t.TempDir()
	cfg := &model.Config{
		DatabaseType: "sqlite",
		DatabaseDir:  filepath.Join(dir, "db"),
		DatabaseFile: "test.db",
		LogFolder:    filepath.Join(dir, "logs"),
		CommandLog:   "commands.log",
		ErrorLog:     "errors.log",
		InfoLog:      "info.log",
	}

	logger, err := log.NewLogger(cfg, log.LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })

	store, err := NewStorage(cfg, logger)
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestOutlineSaveLoad(t *testing.T) {
	store := newTestStorage(t)

	outline := model.NewOutline()
	outline.Chapters = append(outline.Chapters, &model.Chapter{
		ID:       "c1",
		Title:    "Introduction",
		Expanded: true,
		Subchapters: []*model.Subchapter{
			{ID: "s1", Title: "Background"},
		},
	})
	outline.CurrentChapter = "c1"
	outline.CurrentSubchapter = "s1"

	if err := store.OutlineSave("alice", outline); err != nil {
		t.Fatalf("OutlineSave() error = %v", err)
	}

	loaded, err := store.OutlineLoad("alice")
	if err != nil {
		t.Fatalf("OutlineLoad() error = %v", err)
	}
	if len(loaded.Chapters) != 1 {
		t.Fatalf("OutlineLoad() chapters = %d, want 1", len(loaded.Chapters))
	}
	if loaded.Chapters[0].Title != "Introduction" {
		t.Errorf("OutlineLoad() chapter title = %q, want %q", loaded.Chapters[0].Title, "Introduction")
	}
	if len(loaded.Chapters[0].Subchapters) != 1 || loaded.Chapters[0].Subchapters[0].ID != "s1" {
		t.Errorf("OutlineLoad() subchapters not preserved: %+v", loaded.Chapters[0].Subchapters)
	}
	if loaded.CurrentChapter != "c1" || loaded.CurrentSubchapter != "s1" {
		t.Errorf("OutlineLoad() selection = (%q, %q), want (c1, s1)", loaded.CurrentChapter, loaded.CurrentSubchapter)
	}
}

func TestOutlineSaveUpsert(t *testing.T) {
	store := newTestStorage(t)

	outline := model.NewOutline()
	outline.Chapters = append(outline.Chapters, &model.Chapter{ID: "c1", Title: "First"})
	if err := store.OutlineSave("alice", outline); err != nil {
		t.Fatalf("OutlineSave() error = %v", err)
	}

	outline.Chapters[0].Title = "Renamed"
	outline.Chapters = append(outline.Chapters, &model.Chapter{ID: "c2", Title: "Second"})
	if err := store.OutlineSave("alice", outline); err != nil {
		t.Fatalf("OutlineSave() second error = %v", err)
	}

	loaded, err := store.OutlineLoad("alice")
	if err != nil {
		t.Fatalf("OutlineLoad() error = %v", err)
	}
	if len(loaded.Chapters) != 2 {
		t.Fatalf("OutlineLoad() chapters = %d, want 2", len(loaded.Chapters))
	}
	if loaded.Chapters[0].Title != "Renamed" {
		t.Errorf("OutlineLoad() chapter title = %q, want %q", loaded.Chapters[0].Title, "Renamed")
	}
}

func TestOutlineLoadNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.OutlineLoad("nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("OutlineLoad() error = %v, want ErrNotFound", err)
	}
}

func TestOutlineDelete(t *testing.T) {
	store := newTestStorage(t)

	outline := model.NewOutline()
	if err := store.OutlineSave("alice", outline); err != nil {
		t.Fatalf("OutlineSave() error = %v", err)
	}
	if err := store.OutlineDelete("alice"); err != nil {
		t.Fatalf("OutlineDelete() error = %v", err)
	}
	if _, err := store.OutlineLoad("alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("OutlineLoad() after delete error = %v, want ErrNotFound", err)
	}
}

func TestOutlinePerOwnerIsolation(t *testing.T) {
	store := newTestStorage(t)

	a := model.NewOutline()
	a.Chapters = append(a.Chapters, &model.Chapter{ID: "c1", Title: "Alice's"})
	b := model.NewOutline()
	b.Chapters = append(b.Chapters, &model.Chapter{ID: "c2", Title: "Bob's"})

	if err := store.OutlineSave("alice", a); err != nil {
		t.Fatalf("OutlineSave(alice) error = %v", err)
	}
	if err := store.OutlineSave("bob", b); err != nil {
		t.Fatalf("OutlineSave(bob) error = %v", err)
	}

	loaded, err := store.OutlineLoad("alice")
	if err != nil {
		t.Fatalf("OutlineLoad(alice) error = %v", err)
	}
	if loaded.Chapters[0].Title != "Alice's" {
		t.Errorf("OutlineLoad(alice) chapter = %q, want %q", loaded.Chapters[0].Title, "Alice's")
	}
}

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chapterforge/local-app/src/pkg/event"
	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
)

func newTestLogger(t *testing.T) *log.Logger {
	t.Helper()

	cfg := &model.Config{
		LogFolder:  t.TempDir(),
		CommandLog: "commands.log",
		ErrorLog:   "errors.log",
		InfoLog:    "info.log",
	}
	logger, err := log.NewLogger(cfg, log.LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })
	return logger
}

func TestIsWatchedExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"arch.png", true},
		{"photo.JPG", true},
		{"paper.pdf", true},
		{"talk.pptx", true},
		{"slides.odp", true},
		{"notes.txt", false},
		{"archive.zip", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		if got := isWatchedExtension(tt.path); got != tt.want {
			t.Errorf("isWatchedExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestStartSeedsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	logger := newTestLogger(t)

	if err := os.WriteFile(filepath.Join(dir, "arch.png"), []byte("png"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("txt"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	iw, err := NewInboxWatcher(dir, event.NewEventManager(logger), logger)
	if err != nil {
		t.Fatalf("NewInboxWatcher() error = %v", err)
	}
	t.Cleanup(func() { _ = iw.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := iw.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	pending := iw.Pending()
	if len(pending) != 1 {
		t.Fatalf("Pending() = %v, want one seeded file", pending)
	}
	if pending[0] != filepath.Join(dir, "arch.png") {
		t.Errorf("Pending() = %v, want arch.png", pending)
	}
}

func TestWatcherPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	logger := newTestLogger(t)

	iw, err := NewInboxWatcher(dir, event.NewEventManager(logger), logger)
	if err != nil {
		t.Fatalf("NewInboxWatcher() error = %v", err)
	}
	t.Cleanup(func() { _ = iw.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := iw.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	path := filepath.Join(dir, "paper.pdf")
	if err := os.WriteFile(path, []byte("pdf"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if len(iw.Pending()) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Pending() = %v, new file never appeared", iw.Pending())
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestAttachmentStoredForgetsFile(t *testing.T) {
	dir := t.TempDir()
	logger := newTestLogger(t)
	eventManager := event.NewEventManager(logger)

	iw, err := NewInboxWatcher(dir, eventManager, logger)
	if err != nil {
		t.Fatalf("NewInboxWatcher() error = %v", err)
	}
	t.Cleanup(func() { _ = iw.Stop() })

	path := filepath.Join(dir, "arch.png")
	iw.add(path)
	if len(iw.Pending()) != 1 {
		t.Fatal("add() did not record the file")
	}

	eventManager.Publish(event.Event{Type: event.AttachmentStored, Data: path})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if len(iw.Pending()) == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Pending() = %v, stored file never forgotten", iw.Pending())
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestPendingSorted(t *testing.T) {
	dir := t.TempDir()
	logger := newTestLogger(t)

	iw, err := NewInboxWatcher(dir, event.NewEventManager(logger), logger)
	if err != nil {
		t.Fatalf("NewInboxWatcher() error = %v", err)
	}
	t.Cleanup(func() { _ = iw.Stop() })

	iw.add(filepath.Join(dir, "b.png"))
	iw.add(filepath.Join(dir, "a.png"))
	iw.add(filepath.Join(dir, "c.pdf"))

	pending := iw.Pending()
	if len(pending) != 3 {
		t.Fatalf("Pending() = %d entries, want 3", len(pending))
	}
	for i := 1; i < len(pending); i++ {
		if pending[i-1] > pending[i] {
			t.Errorf("Pending() not sorted: %v", pending)
		}
	}
}

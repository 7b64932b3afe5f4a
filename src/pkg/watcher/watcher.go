// Package watcher monitors the attachment inbox directory so freshly
// dropped files can be attached by name from a session.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"chapterforge/local-app/src/pkg/event"
	"chapterforge/local-app/src/pkg/log"
)

// watchedExtensions are the attachment file types announced from the inbox.
var watchedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".pdf", ".ppt", ".pptx", ".odp"}

// InboxWatcher tracks candidate attachment files in the inbox directory.
// Files already present at start are listed too; stored attachments are
// forgotten through the AttachmentStored event.
type InboxWatcher struct {
	watcher *fsnotify.Watcher
	dir     string
	mu      sync.RWMutex
	pending map[string]struct{}
	logger  *log.Logger
}

// NewInboxWatcher creates a watcher for the given inbox directory, creating
// the directory if needed.
func NewInboxWatcher(dir string, eventManager *event.EventManager, logger *log.Logger) (*InboxWatcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	iw := &InboxWatcher{
		watcher: w,
		dir:     dir,
		pending: make(map[string]struct{}),
		logger:  logger,
	}

	eventManager.Subscribe(event.AttachmentStored, iw.handleAttachmentStored)
	return iw, nil
}

// Start seeds the pending set with existing inbox files and begins
// monitoring the directory until the context is cancelled.
func (iw *InboxWatcher) Start(ctx context.Context) error {
	entries, err := os.ReadDir(iw.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && isWatchedExtension(entry.Name()) {
			iw.add(filepath.Join(iw.dir, entry.Name()))
		}
	}

	if err := iw.watcher.Add(iw.dir); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-iw.watcher.Events:
				if !ok {
					return
				}
				if !isWatchedExtension(ev.Name) {
					continue
				}
				switch {
				case ev.Op&fsnotify.Create == fsnotify.Create, ev.Op&fsnotify.Write == fsnotify.Write:
					iw.add(ev.Name)
					iw.logger.Info(ctx, "Inbox file available", log.Fields{"path": ev.Name})
				case ev.Op&fsnotify.Remove == fsnotify.Remove, ev.Op&fsnotify.Rename == fsnotify.Rename:
					iw.Forget(ev.Name)
				}
			case err, ok := <-iw.watcher.Errors:
				if !ok {
					return
				}
				iw.logger.Warn(ctx, "Inbox watcher error", log.Fields{"error": err})
			}
		}
	}()

	iw.logger.Info(ctx, "Inbox watcher started", log.Fields{"dir": iw.dir})
	return nil
}

// Stop stops the watcher.
func (iw *InboxWatcher) Stop() error {
	return iw.watcher.Close()
}

// Pending returns the sorted list of inbox files not yet attached.
func (iw *InboxWatcher) Pending() []string {
	iw.mu.RLock()
	defer iw.mu.RUnlock()
	files := make([]string, 0, len(iw.pending))
	for path := range iw.pending {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// Forget drops a path from the pending set.
func (iw *InboxWatcher) Forget(path string) {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	delete(iw.pending, path)
}

// add records a path in the pending set.
func (iw *InboxWatcher) add(path string) {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	iw.pending[path] = struct{}{}
}

// handleAttachmentStored forgets a file once it has been attached.
func (iw *InboxWatcher) handleAttachmentStored(e event.Event) {
	if path, ok := e.Data.(string); ok {
		iw.Forget(path)
	}
}

// isWatchedExtension reports whether the file is an attachment candidate.
func isWatchedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, watched := range watchedExtensions {
		if ext == watched {
			return true
		}
	}
	return false
}

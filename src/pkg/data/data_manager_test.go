package data

import (
	"context"
	"path/filepath"
	"testing"

	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
	"chapterforge/local-app/src/pkg/storage"
)

// newTestDataManager wires a DataManager over a real temporary SQLite
// database, the way the application runs.
func newTestDataManager(t *testing.T) *DataManager {
	t.Helper()

	dir := t.TempDir()
	cfg := &model.Config{
		DatabaseType:      "sqlite",
		DatabaseDir:       filepath.Join(dir, "db"),
		DatabaseFile:      "test.db",
		LogFolder:         filepath.Join(dir, "logs"),
		CommandLog:        "commands.log",
		ErrorLog:          "errors.log",
		InfoLog:           "info.log",
		DefaultUser:       "tester",
		DefaultUserActive: true,
		ExportDir:         dir,
	}

	logger, err := log.NewLogger(cfg, log.LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })

	store, err := storage.NewStorage(cfg, logger)
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	payloads := storage.SelectPayloadStore(context.Background(), store.BlobStore, logger)
	dm, err := NewDataManager(store.UserStore, store.OutlineStore, payloads, cfg, logger)
	if err != nil {
		t.Fatalf("NewDataManager() error = %v", err)
	}
	return dm
}

func TestNewDataManagerCreatesDefaultUser(t *testing.T) {
	dm := newTestDataManager(t)

	users, err := dm.UserManager.UserGet(model.UserInfo{Username: "tester"}, model.UserFilter{Username: true})
	if err != nil {
		t.Fatalf("UserGet() error = %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("UserGet() users = %d, want 1", len(users))
	}
}

func TestUserAuthenticate(t *testing.T) {
	dm := newTestDataManager(t)

	if _, err := dm.UserManager.UserAdd("alice", "secret", true); err != nil {
		t.Fatalf("UserAdd() error = %v", err)
	}

	ok, err := dm.UserManager.UserAuthenticate("alice", "secret")
	if err != nil {
		t.Fatalf("UserAuthenticate() error = %v", err)
	}
	if !ok {
		t.Error("UserAuthenticate() = false with correct password")
	}

	ok, err = dm.UserManager.UserAuthenticate("alice", "wrong")
	if err != nil {
		t.Fatalf("UserAuthenticate() error = %v", err)
	}
	if ok {
		t.Error("UserAuthenticate() = true with wrong password")
	}

	ok, err = dm.UserManager.UserAuthenticate("nobody", "secret")
	if err != nil {
		t.Fatalf("UserAuthenticate() unknown user error = %v", err)
	}
	if ok {
		t.Error("UserAuthenticate() = true for unknown user")
	}
}

func TestUserAddDuplicate(t *testing.T) {
	dm := newTestDataManager(t)

	if _, err := dm.UserManager.UserAdd("alice", "secret", true); err != nil {
		t.Fatalf("UserAdd() error = %v", err)
	}
	if _, err := dm.UserManager.UserAdd("alice", "other", true); err == nil {
		t.Error("UserAdd() duplicate username succeeded")
	}
}

// TestOutlineRoundTrip builds a small outline with attachments, reloads it
// from storage and verifies that structure, selection and payloads survive.
func TestOutlineRoundTrip(t *testing.T) {
	dm := newTestDataManager(t)
	owner := "tester"

	outline, err := dm.OutlineManager.OutlineLoad(owner)
	if err != nil {
		t.Fatalf("OutlineLoad() error = %v", err)
	}

	chapter, err := dm.OutlineManager.ChapterAdd(owner, outline, "Methods", "")
	if err != nil {
		t.Fatalf("ChapterAdd() error = %v", err)
	}
	subchapter, err := dm.OutlineManager.SubchapterAdd(owner, outline, chapter.ID, "Pipeline", "")
	if err != nil {
		t.Fatalf("SubchapterAdd() error = %v", err)
	}
	if err := dm.OutlineManager.Select(owner, outline, chapter.ID, subchapter.ID); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	ref := model.NodeRef{ChapterID: chapter.ID, SubchapterID: subchapter.ID}
	if _, err := dm.AttachmentManager.DiagramSave(owner, outline, ref, model.DiagramInfo{
		Title:  "Flow",
		Kind:   model.DiagramText,
		Source: "graph TD; A-->B",
	}); err != nil {
		t.Fatalf("DiagramSave() error = %v", err)
	}
	imageDiagram, err := dm.AttachmentManager.DiagramSave(owner, outline, ref, model.DiagramInfo{
		Title:   "Arch",
		Kind:    model.DiagramImage,
		Payload: "data:image/png;base64,aGVsbG8=",
	})
	if err != nil {
		t.Fatalf("DiagramSave() image error = %v", err)
	}

	// Reload from storage and verify everything survived.
	reloaded, err := dm.OutlineManager.OutlineLoad(owner)
	if err != nil {
		t.Fatalf("OutlineLoad() reload error = %v", err)
	}
	if len(reloaded.Chapters) != 1 {
		t.Fatalf("reload chapters = %d, want 1", len(reloaded.Chapters))
	}
	if reloaded.CurrentChapter != chapter.ID || reloaded.CurrentSubchapter != subchapter.ID {
		t.Errorf("reload selection = (%q, %q)", reloaded.CurrentChapter, reloaded.CurrentSubchapter)
	}

	sub := reloaded.Chapters[0].Subchapters[0]
	if len(sub.Diagrams) != 2 {
		t.Fatalf("reload diagrams = %d, want 2", len(sub.Diagrams))
	}
	if sub.Diagrams[0].Source != "graph TD; A-->B" {
		t.Errorf("reload text diagram source = %q", sub.Diagrams[0].Source)
	}

	// The image payload resolves through the payload store.
	payload, err := dm.PayloadStore.Resolve(context.Background(), sub.Diagrams[1].Payload)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if payload != "data:image/png;base64,aGVsbG8=" {
		t.Errorf("Resolve() = %q", payload)
	}
	if sub.Diagrams[1].ID != imageDiagram.ID {
		t.Errorf("reload image diagram id = %q, want %q", sub.Diagrams[1].ID, imageDiagram.ID)
	}
}

func TestOutlineExportImport(t *testing.T) {
	dm := newTestDataManager(t)
	owner := "tester"

	outline, _ := dm.OutlineManager.OutlineLoad(owner)
	chapter, err := dm.OutlineManager.ChapterAdd(owner, outline, "Results", "findings")
	if err != nil {
		t.Fatalf("ChapterAdd() error = %v", err)
	}
	if _, err := dm.OutlineManager.SubchapterAdd(owner, outline, chapter.ID, "Tables", ""); err != nil {
		t.Fatalf("SubchapterAdd() error = %v", err)
	}

	for _, format := range []string{"json", "xml"} {
		t.Run(format, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "outline."+format)
			if err := dm.OutlineExport(outline, filename, format); err != nil {
				t.Fatalf("OutlineExport() error = %v", err)
			}

			users, err := dm.UserManager.UserGet(model.UserInfo{Username: owner}, model.UserFilter{Username: true})
			if err != nil || len(users) == 0 {
				t.Fatalf("UserGet() error = %v", err)
			}

			imported, err := dm.OutlineImport(users[0], filename, format)
			if err != nil {
				t.Fatalf("OutlineImport() error = %v", err)
			}
			if len(imported.Chapters) != 1 {
				t.Fatalf("OutlineImport() chapters = %d, want 1", len(imported.Chapters))
			}
			if imported.Chapters[0].Title != "Results" {
				t.Errorf("OutlineImport() chapter title = %q", imported.Chapters[0].Title)
			}
			if len(imported.Chapters[0].Subchapters) != 1 {
				t.Errorf("OutlineImport() subchapters = %d, want 1", len(imported.Chapters[0].Subchapters))
			}
		})
	}
}

func TestValidateOutline(t *testing.T) {
	dm := newTestDataManager(t)

	tests := []struct {
		name    string
		outline *model.Outline
		wantErr bool
	}{
		{
			name:    "empty outline",
			outline: model.NewOutline(),
			wantErr: false,
		},
		{
			name: "valid tree with selection",
			outline: &model.Outline{
				Chapters: []*model.Chapter{
					{ID: "c1", Title: "One", Subchapters: []*model.Subchapter{{ID: "s1", Title: "Sub"}}},
				},
				CurrentChapter:    "c1",
				CurrentSubchapter: "s1",
			},
			wantErr: false,
		},
		{
			name: "duplicate chapter ids",
			outline: &model.Outline{
				Chapters: []*model.Chapter{{ID: "c1"}, {ID: "c1"}},
			},
			wantErr: true,
		},
		{
			name: "empty identifier",
			outline: &model.Outline{
				Chapters: []*model.Chapter{{ID: ""}},
			},
			wantErr: true,
		},
		{
			name: "selection references missing chapter",
			outline: &model.Outline{
				Chapters:       []*model.Chapter{{ID: "c1"}},
				CurrentChapter: "c2",
			},
			wantErr: true,
		},
		{
			name: "subchapter selected in wrong chapter",
			outline: &model.Outline{
				Chapters: []*model.Chapter{
					{ID: "c1", Subchapters: []*model.Subchapter{{ID: "s1"}}},
					{ID: "c2"},
				},
				CurrentChapter:    "c2",
				CurrentSubchapter: "s1",
			},
			wantErr: true,
		},
		{
			name: "subchapter selected without chapter",
			outline: &model.Outline{
				Chapters: []*model.Chapter{
					{ID: "c1", Subchapters: []*model.Subchapter{{ID: "s1"}}},
				},
				CurrentSubchapter: "s1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dm.validateOutline(tt.outline)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateOutline() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package session

import (
	"testing"

	"chapterforge/local-app/src/pkg/model"
)

func testOutline() *model.Outline {
	return &model.Outline{
		Chapters: []*model.Chapter{
			{
				ID:    "aaa111",
				Title: "One",
				Subchapters: []*model.Subchapter{
					{ID: "sub111", Title: "One-One"},
					{ID: "sub222", Title: "One-Two"},
				},
			},
			{ID: "bbb222", Title: "Two"},
		},
	}
}

func TestChapterByArg(t *testing.T) {
	outline := testOutline()

	tests := []struct {
		name    string
		arg     string
		wantID  string
		wantErr bool
	}{
		{name: "by index", arg: "2", wantID: "bbb222"},
		{name: "by exact id", arg: "aaa111", wantID: "aaa111"},
		{name: "by unique prefix", arg: "bbb", wantID: "bbb222"},
		{name: "index out of range", arg: "3", wantErr: true},
		{name: "zero index", arg: "0", wantErr: true},
		{name: "unknown id", arg: "zzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chapter, err := chapterByArg(outline, tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Error("chapterByArg() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("chapterByArg() error = %v", err)
			}
			if chapter.ID != tt.wantID {
				t.Errorf("chapterByArg() = %s, want %s", chapter.ID, tt.wantID)
			}
		})
	}
}

func TestSubchapterByArg(t *testing.T) {
	chapter := testOutline().Chapters[0]

	sub, err := subchapterByArg(chapter, "1")
	if err != nil {
		t.Fatalf("subchapterByArg() error = %v", err)
	}
	if sub.ID != "sub111" {
		t.Errorf("subchapterByArg() = %s, want sub111", sub.ID)
	}

	// "sub" matches both subchapters.
	if _, err := subchapterByArg(chapter, "sub"); err == nil {
		t.Error("subchapterByArg() ambiguous prefix succeeded")
	}

	if _, err := subchapterByArg(chapter, "missing"); err == nil {
		t.Error("subchapterByArg() unknown id succeeded")
	}
}

func TestCurrentRef(t *testing.T) {
	session := &model.Session{Outline: testOutline()}

	if _, err := currentRef(session); err == nil {
		t.Error("currentRef() without selection succeeded")
	}

	session.Outline.CurrentChapter = "aaa111"
	ref, err := currentRef(session)
	if err != nil {
		t.Fatalf("currentRef() error = %v", err)
	}
	if ref.ChapterID != "aaa111" || ref.SubchapterID != "" {
		t.Errorf("currentRef() = %+v", ref)
	}

	session.Outline.CurrentSubchapter = "sub111"
	ref, err = currentRef(session)
	if err != nil {
		t.Fatalf("currentRef() error = %v", err)
	}
	if ref.SubchapterID != "sub111" {
		t.Errorf("currentRef() subchapter = %q, want sub111", ref.SubchapterID)
	}
}

func TestSelectedAttachments(t *testing.T) {
	outline := testOutline()
	outline.Chapters[0].Diagrams = []*model.Diagram{{ID: "d1", Title: "Flow", Kind: model.DiagramText, Source: "x"}}
	outline.Chapters[0].Subchapters[0].Documents = []*model.Document{{ID: "doc1", Title: "Paper"}}
	session := &model.Session{Outline: outline}

	// Chapter selected: chapter-level attachments.
	outline.CurrentChapter = "aaa111"
	attachments, err := selectedAttachments(session)
	if err != nil {
		t.Fatalf("selectedAttachments() error = %v", err)
	}
	if len(attachments.Diagrams) != 1 || len(attachments.Documents) != 0 {
		t.Errorf("selectedAttachments() chapter = %d diagrams, %d documents", len(attachments.Diagrams), len(attachments.Documents))
	}

	// Subchapter selected: subchapter-level attachments.
	outline.CurrentSubchapter = "sub111"
	attachments, err = selectedAttachments(session)
	if err != nil {
		t.Fatalf("selectedAttachments() error = %v", err)
	}
	if len(attachments.Diagrams) != 0 || len(attachments.Documents) != 1 {
		t.Errorf("selectedAttachments() subchapter = %d diagrams, %d documents", len(attachments.Diagrams), len(attachments.Documents))
	}
}

func TestDiagramByArg(t *testing.T) {
	outline := testOutline()
	outline.CurrentChapter = "aaa111"
	outline.Chapters[0].Diagrams = []*model.Diagram{
		{ID: "dg1", Title: "Flow", Kind: model.DiagramText, Source: "x"},
		{ID: "dg2", Title: "Arch", Kind: model.DiagramImage},
	}
	session := &model.Session{Outline: outline}

	tests := []struct {
		name    string
		arg     string
		wantID  string
		wantErr bool
	}{
		{name: "by index", arg: "2", wantID: "dg2"},
		{name: "by id", arg: "dg1", wantID: "dg1"},
		{name: "by title", arg: "Arch", wantID: "dg2"},
		{name: "ambiguous prefix", arg: "dg", wantErr: true},
		{name: "unknown", arg: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diagram, err := diagramByArg(session, tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Error("diagramByArg() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("diagramByArg() error = %v", err)
			}
			if diagram.ID != tt.wantID {
				t.Errorf("diagramByArg() = %s, want %s", diagram.ID, tt.wantID)
			}
		})
	}
}

func TestRequireUser(t *testing.T) {
	session := &model.Session{}
	if err := requireUser(session); err == nil {
		t.Error("requireUser() without user succeeded")
	}

	session.User = &model.User{Username: "alice"}
	if err := requireUser(session); err != nil {
		t.Errorf("requireUser() error = %v", err)
	}

	if err := requireOutline(session); err == nil {
		t.Error("requireOutline() without outline succeeded")
	}
	session.Outline = model.NewOutline()
	if err := requireOutline(session); err != nil {
		t.Errorf("requireOutline() error = %v", err)
	}
}

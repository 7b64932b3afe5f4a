package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"chapterforge/local-app/src/pkg/model"
)

// requireUser ensures a user is selected in the session.
func requireUser(session *model.Session) error {
	if session.User == nil {
		return errors.New("no user selected, select a user first")
	}
	return nil
}

// requireOutline ensures a user is selected and its outline is loaded.
func requireOutline(session *model.Session) error {
	if err := requireUser(session); err != nil {
		return err
	}
	if session.Outline == nil {
		return errors.New("no outline loaded")
	}
	return nil
}

// currentRef builds a node reference from the session's current selection.
func currentRef(session *model.Session) (model.NodeRef, error) {
	if session.Outline == nil || session.Outline.CurrentChapter == "" {
		return model.NodeRef{}, errors.New("no chapter selected")
	}
	return model.NodeRef{
		ChapterID:    session.Outline.CurrentChapter,
		SubchapterID: session.Outline.CurrentSubchapter,
	}, nil
}

// chapterByArg resolves a chapter from a 1-based list index, an exact ID
// or a unique ID prefix.
func chapterByArg(outline *model.Outline, arg string) (*model.Chapter, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(outline.Chapters) {
			return nil, fmt.Errorf("chapter index out of range: %d", n)
		}
		return outline.Chapters[n-1], nil
	}
	if chapter := outline.ChapterFind(arg); chapter != nil {
		return chapter, nil
	}
	var match *model.Chapter
	for _, chapter := range outline.Chapters {
		if strings.HasPrefix(chapter.ID, arg) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous chapter: %s", arg)
			}
			match = chapter
		}
	}
	if match == nil {
		return nil, fmt.Errorf("chapter not found: %s", arg)
	}
	return match, nil
}

// subchapterByArg resolves a subchapter of the given chapter by 1-based
// index, exact ID or unique ID prefix.
func subchapterByArg(chapter *model.Chapter, arg string) (*model.Subchapter, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(chapter.Subchapters) {
			return nil, fmt.Errorf("subchapter index out of range: %d", n)
		}
		return chapter.Subchapters[n-1], nil
	}
	var match *model.Subchapter
	for _, sub := range chapter.Subchapters {
		if sub.ID == arg {
			return sub, nil
		}
		if strings.HasPrefix(sub.ID, arg) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous subchapter: %s", arg)
			}
			match = sub
		}
	}
	if match == nil {
		return nil, fmt.Errorf("subchapter not found: %s", arg)
	}
	return match, nil
}

// selectedAttachments returns the attachment lists of the currently
// selected node.
func selectedAttachments(session *model.Session) (*model.Attachments, error) {
	ref, err := currentRef(session)
	if err != nil {
		return nil, err
	}
	chapter := session.Outline.ChapterFind(ref.ChapterID)
	if chapter == nil {
		return nil, fmt.Errorf("chapter not found: %s", ref.ChapterID)
	}
	if ref.SubchapterID == "" {
		return &model.Attachments{Diagrams: chapter.Diagrams, Documents: chapter.Documents}, nil
	}
	sub := chapter.SubchapterFind(ref.SubchapterID)
	if sub == nil {
		return nil, fmt.Errorf("subchapter not found: %s", ref.SubchapterID)
	}
	return &model.Attachments{Diagrams: sub.Diagrams, Documents: sub.Documents}, nil
}

// diagramByArg resolves a diagram on the current node by 1-based index,
// exact ID, unique ID prefix or exact title.
func diagramByArg(session *model.Session, arg string) (*model.Diagram, error) {
	attachments, err := selectedAttachments(session)
	if err != nil {
		return nil, err
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(attachments.Diagrams) {
			return nil, fmt.Errorf("diagram index out of range: %d", n)
		}
		return attachments.Diagrams[n-1], nil
	}
	var match *model.Diagram
	for _, diagram := range attachments.Diagrams {
		if diagram.ID == arg || diagram.Title == arg {
			return diagram, nil
		}
		if strings.HasPrefix(diagram.ID, arg) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous diagram: %s", arg)
			}
			match = diagram
		}
	}
	if match == nil {
		return nil, fmt.Errorf("diagram not found: %s", arg)
	}
	return match, nil
}

// documentByArg resolves a document on the current node by 1-based index,
// exact ID, unique ID prefix or exact title.
func documentByArg(session *model.Session, arg string) (*model.Document, error) {
	attachments, err := selectedAttachments(session)
	if err != nil {
		return nil, err
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(attachments.Documents) {
			return nil, fmt.Errorf("document index out of range: %d", n)
		}
		return attachments.Documents[n-1], nil
	}
	var match *model.Document
	for _, doc := range attachments.Documents {
		if doc.ID == arg || doc.Title == arg {
			return doc, nil
		}
		if strings.HasPrefix(doc.ID, arg) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous document: %s", arg)
			}
			match = doc
		}
	}
	if match == nil {
		return nil, fmt.Errorf("document not found: %s", arg)
	}
	return match, nil
}

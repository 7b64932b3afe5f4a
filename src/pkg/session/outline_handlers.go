package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"chapterforge/local-app/src/pkg/model"
)

// initOutlineCommandHandlers returns the outline command handlers
func initOutlineCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"view":   handleOutlineView,
		"export": handleOutlineExport,
		"import": handleOutlineImport,
	}
}

// initInboxCommandHandlers returns the inbox command handlers
func initInboxCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"list": handleInboxList,
	}
}

// initSystemCommandHandlers returns the system command handlers
func initSystemCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"exit": handleSystemExit,
		"quit": handleSystemExit,
	}
}

// handleOutlineView handles the outline view command, rendering the whole
// tree as indented text. Collapsed chapters show only their title.
func handleOutlineView(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if len(session.Outline.Chapters) == 0 {
		return "Outline is empty", nil
	}

	var sb strings.Builder
	for i, chapter := range session.Outline.Chapters {
		marker := " "
		if chapter.ID == session.Outline.CurrentChapter {
			marker = "*"
		}
		state := "-"
		if chapter.Expanded {
			state = "+"
		}
		fmt.Fprintf(&sb, "%s %s %d. %s\n", marker, state, i+1, chapter.Title)
		if !chapter.Expanded {
			continue
		}
		for j, sub := range chapter.Subchapters {
			subMarker := " "
			if sub.ID == session.Outline.CurrentSubchapter {
				subMarker = "*"
			}
			fmt.Fprintf(&sb, "%s     %d.%d %s\n", subMarker, i+1, j+1, sub.Title)
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// handleOutlineExport handles the outline export command. JSON and XML
// exports dump the document; HTML export renders it through the exporter.
func handleOutlineExport(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: outline export <filename> [json|xml|html]")
	}
	filename := cmd.Args[0]
	format := "json"
	if len(cmd.Args) > 1 {
		format = cmd.Args[1]
	}
	if !filepath.IsAbs(filename) {
		filename = filepath.Join(sm.dataManager.Config.ExportDir, filename)
	}

	switch format {
	case "json", "xml":
		if err := sm.dataManager.OutlineExport(session.Outline, filename, format); err != nil {
			return nil, err
		}
	case "html":
		if err := sm.exporter.ExportFile(context.Background(), session.Outline, filename); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
	return fmt.Sprintf("Outline exported to %s", filename), nil
}

// handleOutlineImport handles the outline import command, replacing the
// session's outline with the validated imported document.
func handleOutlineImport(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireUser(session); err != nil {
		return nil, err
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: outline import <filename> [json|xml]")
	}
	filename := cmd.Args[0]
	format := "json"
	if len(cmd.Args) > 1 {
		format = cmd.Args[1]
	}
	if !filepath.IsAbs(filename) {
		filename = filepath.Join(sm.dataManager.Config.ExportDir, filename)
	}

	outline, err := sm.dataManager.OutlineImport(session.User, filename, format)
	if err != nil {
		return nil, err
	}
	session.Outline = outline
	return fmt.Sprintf("Outline imported from %s (%d chapters)", filename, len(outline.Chapters)), nil
}

// handleInboxList handles the inbox list command, showing files dropped in
// the attachment inbox that have not been attached yet.
func handleInboxList(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if sm.inbox == nil {
		return nil, errors.New("inbox watching is disabled")
	}
	pending := sm.inbox.Pending()
	if len(pending) == 0 {
		return "Inbox is empty", nil
	}

	var sb strings.Builder
	for i, path := range pending {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, path)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// handleSystemExit handles the system exit command
func handleSystemExit(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	return "exit", nil
}

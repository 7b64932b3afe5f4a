package session

import (
	"errors"
	"fmt"
	"strings"

	"chapterforge/local-app/src/pkg/model"
)

// initChapterCommandHandlers returns the chapter command handlers
func initChapterCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"add":    handleChapterAdd,
		"rename": handleChapterRename,
		"delete": handleChapterDelete,
		"select": handleChapterSelect,
		"expand": handleChapterExpand,
		"list":   handleChapterList,
		"view":   handleChapterView,
	}
}

// initSubchapterCommandHandlers returns the subchapter command handlers
func initSubchapterCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"add":    handleSubchapterAdd,
		"rename": handleSubchapterRename,
		"delete": handleSubchapterDelete,
		"select": handleSubchapterSelect,
		"list":   handleSubchapterList,
	}
}

// handleChapterAdd handles the chapter add command
func handleChapterAdd(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: chapter add <title> [description]")
	}
	title := cmd.Args[0]
	description := ""
	if len(cmd.Args) > 1 {
		description = strings.Join(cmd.Args[1:], " ")
	}

	chapter, err := sm.dataManager.OutlineManager.ChapterAdd(session.User.Username, session.Outline, title, description)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Chapter '%s' added: %s", chapter.Title, chapter.ID), nil
}

// handleChapterRename handles the chapter rename command, operating on the
// currently selected chapter.
func handleChapterRename(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if session.Outline.CurrentChapter == "" {
		return nil, errors.New("no chapter selected")
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: chapter rename <title> [description]")
	}
	title := cmd.Args[0]
	description := ""
	if len(cmd.Args) > 1 {
		description = strings.Join(cmd.Args[1:], " ")
	}

	ref := model.NodeRef{ChapterID: session.Outline.CurrentChapter}
	if err := sm.dataManager.OutlineManager.NodeRename(session.User.Username, session.Outline, ref, title, description); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Chapter renamed to '%s'", title), nil
}

// handleChapterDelete handles the chapter delete command
func handleChapterDelete(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: chapter delete <chapter>")
	}

	chapter, err := chapterByArg(session.Outline, cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := sm.dataManager.OutlineManager.ChapterDelete(session.User.Username, session.Outline, chapter.ID); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Chapter '%s' deleted", chapter.Title), nil
}

// handleChapterSelect handles the chapter select command. Selecting a
// chapter clears any subchapter selection; no argument clears the selection.
func handleChapterSelect(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if len(cmd.Args) == 0 {
		if err := sm.dataManager.OutlineManager.Select(session.User.Username, session.Outline, "", ""); err != nil {
			return nil, err
		}
		return "Selection cleared", nil
	}

	chapter, err := chapterByArg(session.Outline, cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := sm.dataManager.OutlineManager.Select(session.User.Username, session.Outline, chapter.ID, ""); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Selected chapter: %s", chapter.Title), nil
}

// handleChapterExpand handles the chapter expand command, toggling the
// expansion flag of a chapter (default: the selected one).
func handleChapterExpand(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}

	chapterID := session.Outline.CurrentChapter
	if len(cmd.Args) > 0 {
		chapter, err := chapterByArg(session.Outline, cmd.Args[0])
		if err != nil {
			return nil, err
		}
		chapterID = chapter.ID
	}
	if chapterID == "" {
		return nil, errors.New("no chapter selected")
	}

	expanded, err := sm.dataManager.OutlineManager.ChapterExpandToggle(session.User.Username, session.Outline, chapterID)
	if err != nil {
		return nil, err
	}
	if expanded {
		return "Chapter expanded", nil
	}
	return "Chapter collapsed", nil
}

// handleChapterList handles the chapter list command
func handleChapterList(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if len(session.Outline.Chapters) == 0 {
		return "No chapters", nil
	}

	var sb strings.Builder
	for i, chapter := range session.Outline.Chapters {
		marker := " "
		if chapter.ID == session.Outline.CurrentChapter {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %d. %s (%d subchapters)\n", marker, i+1, chapter.Title, len(chapter.Subchapters))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// handleChapterView handles the chapter view command, showing the selected
// chapter with its subchapters and attachment counts.
func handleChapterView(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}

	var chapter *model.Chapter
	if len(cmd.Args) > 0 {
		var err error
		chapter, err = chapterByArg(session.Outline, cmd.Args[0])
		if err != nil {
			return nil, err
		}
	} else {
		if session.Outline.CurrentChapter == "" {
			return nil, errors.New("no chapter selected")
		}
		chapter = session.Outline.ChapterFind(session.Outline.CurrentChapter)
		if chapter == nil {
			return nil, errors.New("selected chapter no longer exists")
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Chapter: %s\n", chapter.Title)
	if chapter.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", chapter.Description)
	}
	fmt.Fprintf(&sb, "Diagrams: %d, Documents: %d\n", len(chapter.Diagrams), len(chapter.Documents))
	for i, sub := range chapter.Subchapters {
		marker := " "
		if sub.ID == session.Outline.CurrentSubchapter {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s  %d.%d %s (%d diagrams, %d documents)\n", marker, chapterIndex(session.Outline, chapter.ID), i+1, sub.Title, len(sub.Diagrams), len(sub.Documents))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// handleSubchapterAdd handles the subchapter add command, adding under the
// currently selected chapter.
func handleSubchapterAdd(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: subchapter add <title> [description]")
	}
	title := cmd.Args[0]
	description := ""
	if len(cmd.Args) > 1 {
		description = strings.Join(cmd.Args[1:], " ")
	}

	subchapter, err := sm.dataManager.OutlineManager.SubchapterAdd(session.User.Username, session.Outline, session.Outline.CurrentChapter, title, description)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Subchapter '%s' added: %s", subchapter.Title, subchapter.ID), nil
}

// handleSubchapterRename handles the subchapter rename command, operating on
// the currently selected subchapter.
func handleSubchapterRename(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if session.Outline.CurrentSubchapter == "" {
		return nil, errors.New("no subchapter selected")
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: subchapter rename <title> [description]")
	}
	title := cmd.Args[0]
	description := ""
	if len(cmd.Args) > 1 {
		description = strings.Join(cmd.Args[1:], " ")
	}

	ref := model.NodeRef{ChapterID: session.Outline.CurrentChapter, SubchapterID: session.Outline.CurrentSubchapter}
	if err := sm.dataManager.OutlineManager.NodeRename(session.User.Username, session.Outline, ref, title, description); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Subchapter renamed to '%s'", title), nil
}

// handleSubchapterDelete handles the subchapter delete command
func handleSubchapterDelete(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if session.Outline.CurrentChapter == "" {
		return nil, errors.New("no chapter selected")
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: subchapter delete <subchapter>")
	}

	chapter := session.Outline.ChapterFind(session.Outline.CurrentChapter)
	if chapter == nil {
		return nil, errors.New("selected chapter no longer exists")
	}
	subchapter, err := subchapterByArg(chapter, cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := sm.dataManager.OutlineManager.SubchapterDelete(session.User.Username, session.Outline, chapter.ID, subchapter.ID); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Subchapter '%s' deleted", subchapter.Title), nil
}

// handleSubchapterSelect handles the subchapter select command. The
// subchapter must belong to the currently selected chapter.
func handleSubchapterSelect(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if session.Outline.CurrentChapter == "" {
		return nil, errors.New("no chapter selected")
	}
	if len(cmd.Args) == 0 {
		if err := sm.dataManager.OutlineManager.Select(session.User.Username, session.Outline, session.Outline.CurrentChapter, ""); err != nil {
			return nil, err
		}
		return "Subchapter selection cleared", nil
	}

	chapter := session.Outline.ChapterFind(session.Outline.CurrentChapter)
	if chapter == nil {
		return nil, errors.New("selected chapter no longer exists")
	}
	subchapter, err := subchapterByArg(chapter, cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := sm.dataManager.OutlineManager.Select(session.User.Username, session.Outline, chapter.ID, subchapter.ID); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Selected subchapter: %s", subchapter.Title), nil
}

// handleSubchapterList handles the subchapter list command
func handleSubchapterList(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if session.Outline.CurrentChapter == "" {
		return nil, errors.New("no chapter selected")
	}
	chapter := session.Outline.ChapterFind(session.Outline.CurrentChapter)
	if chapter == nil {
		return nil, errors.New("selected chapter no longer exists")
	}
	if len(chapter.Subchapters) == 0 {
		return "No subchapters", nil
	}

	var sb strings.Builder
	for i, sub := range chapter.Subchapters {
		marker := " "
		if sub.ID == session.Outline.CurrentSubchapter {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %d. %s\n", marker, i+1, sub.Title)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// chapterIndex returns the 1-based position of a chapter in the outline.
func chapterIndex(outline *model.Outline, id string) int {
	for i, chapter := range outline.Chapters {
		if chapter.ID == id {
			return i + 1
		}
	}
	return 0
}

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chapterforge/local-app/src/pkg/model"
)

// initDiagramCommandHandlers returns the diagram command handlers
func initDiagramCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"add":    handleDiagramAdd,
		"update": handleDiagramUpdate,
		"delete": handleDiagramDelete,
		"view":   handleDiagramView,
		"list":   handleDiagramList,
	}
}

// initDocumentCommandHandlers returns the document command handlers
func initDocumentCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"add":    handleDocumentAdd,
		"update": handleDocumentUpdate,
		"delete": handleDocumentDelete,
		"view":   handleDocumentView,
		"list":   handleDocumentList,
	}
}

// handleDiagramAdd handles the diagram add command. Text diagrams take their
// source inline, image diagrams take a file path.
func handleDiagramAdd(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	ref, err := currentRef(session)
	if err != nil {
		return nil, err
	}
	if len(cmd.Args) < 3 {
		return nil, errors.New("usage: diagram add text <title> <source> | diagram add image <title> <file>")
	}

	info := model.DiagramInfo{
		Kind:  model.DiagramKind(cmd.Args[0]),
		Title: cmd.Args[1],
	}
	switch info.Kind {
	case model.DiagramText:
		info.Source = strings.Join(cmd.Args[2:], " ")
	case model.DiagramImage:
		info.FilePath = cmd.Args[2]
	}

	diagram, err := sm.dataManager.AttachmentManager.DiagramSave(session.User.Username, session.Outline, ref, info)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Diagram '%s' added: %s", diagram.Title, diagram.ID), nil
}

// handleDiagramUpdate handles the diagram update command, replacing an
// existing diagram's content in place.
func handleDiagramUpdate(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	ref, err := currentRef(session)
	if err != nil {
		return nil, err
	}
	if len(cmd.Args) < 2 {
		return nil, errors.New("usage: diagram update <diagram> <source-or-file>")
	}

	existing, err := diagramByArg(session, cmd.Args[0])
	if err != nil {
		return nil, err
	}

	info := model.DiagramInfo{
		ID:          existing.ID,
		Title:       existing.Title,
		Description: existing.Description,
		Kind:        existing.Kind,
	}
	switch existing.Kind {
	case model.DiagramText:
		info.Source = strings.Join(cmd.Args[1:], " ")
	case model.DiagramImage:
		info.FilePath = cmd.Args[1]
	}

	diagram, err := sm.dataManager.AttachmentManager.DiagramSave(session.User.Username, session.Outline, ref, info)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Diagram '%s' updated", diagram.Title), nil
}

// handleDiagramDelete handles the diagram delete command
func handleDiagramDelete(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	ref, err := currentRef(session)
	if err != nil {
		return nil, err
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: diagram delete <diagram>")
	}

	diagram, err := diagramByArg(session, cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := sm.dataManager.AttachmentManager.DiagramDelete(session.User.Username, session.Outline, ref, diagram.ID); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Diagram '%s' deleted", diagram.Title), nil
}

// handleDiagramView handles the diagram view command, resolving the payload
// through the renderer boundary.
func handleDiagramView(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: diagram view <diagram>")
	}

	diagram, err := diagramByArg(session, cmd.Args[0])
	if err != nil {
		return nil, err
	}
	content, err := sm.resolver.DiagramContent(context.Background(), diagram)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Diagram: %s (%s)\n", diagram.Title, diagram.Kind)
	if diagram.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", diagram.Description)
	}
	if diagram.Kind == model.DiagramImage {
		fmt.Fprintf(&sb, "Payload: %d bytes (data URI)", len(content))
	} else {
		sb.WriteString(content)
	}
	return sb.String(), nil
}

// handleDiagramList handles the diagram list command
func handleDiagramList(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	attachments, err := selectedAttachments(session)
	if err != nil {
		return nil, err
	}
	if len(attachments.Diagrams) == 0 {
		return "No diagrams", nil
	}

	var sb strings.Builder
	for i, diagram := range attachments.Diagrams {
		location := "inline"
		if diagram.Payload.BlobID != "" {
			location = "stored"
		}
		if diagram.Kind == model.DiagramText {
			location = "text"
		}
		fmt.Fprintf(&sb, "%d. %s (%s, %s)\n", i+1, diagram.Title, diagram.Kind, location)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// handleDocumentAdd handles the document add command
func handleDocumentAdd(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	ref, err := currentRef(session)
	if err != nil {
		return nil, err
	}
	if len(cmd.Args) < 2 {
		return nil, errors.New("usage: document add <title> <file> [description]")
	}

	info := model.DocumentInfo{
		Title:    cmd.Args[0],
		FilePath: cmd.Args[1],
	}
	if len(cmd.Args) > 2 {
		info.Description = strings.Join(cmd.Args[2:], " ")
	}

	document, err := sm.dataManager.AttachmentManager.DocumentSave(session.User.Username, session.Outline, ref, info)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Document '%s' added: %s (%s)", document.Title, document.ID, document.Kind), nil
}

// handleDocumentUpdate handles the document update command, replacing an
// existing document's file in place.
func handleDocumentUpdate(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	ref, err := currentRef(session)
	if err != nil {
		return nil, err
	}
	if len(cmd.Args) < 2 {
		return nil, errors.New("usage: document update <document> <file>")
	}

	existing, err := documentByArg(session, cmd.Args[0])
	if err != nil {
		return nil, err
	}

	info := model.DocumentInfo{
		ID:          existing.ID,
		Title:       existing.Title,
		Description: existing.Description,
		IssueDate:   existing.IssueDate,
		FilePath:    cmd.Args[1],
	}

	document, err := sm.dataManager.AttachmentManager.DocumentSave(session.User.Username, session.Outline, ref, info)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Document '%s' updated", document.Title), nil
}

// handleDocumentDelete handles the document delete command
func handleDocumentDelete(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	ref, err := currentRef(session)
	if err != nil {
		return nil, err
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: document delete <document>")
	}

	document, err := documentByArg(session, cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := sm.dataManager.AttachmentManager.DocumentDelete(session.User.Username, session.Outline, ref, document.ID); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Document '%s' deleted", document.Title), nil
}

// handleDocumentView handles the document view command
func handleDocumentView(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: document view <document>")
	}

	document, err := documentByArg(session, cmd.Args[0])
	if err != nil {
		return nil, err
	}
	content, err := sm.resolver.DocumentContent(context.Background(), document)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Document: %s (%s, %s)\n", document.Title, document.Kind, document.MIMEType)
	if document.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", document.Description)
	}
	fmt.Fprintf(&sb, "Issued: %s\n", document.IssueDate.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Payload: %d bytes (data URI)", len(content))
	return sb.String(), nil
}

// handleDocumentList handles the document list command
func handleDocumentList(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireOutline(session); err != nil {
		return nil, err
	}
	attachments, err := selectedAttachments(session)
	if err != nil {
		return nil, err
	}
	if len(attachments.Documents) == 0 {
		return "No documents", nil
	}

	var sb strings.Builder
	for i, document := range attachments.Documents {
		location := "inline"
		if document.Payload.BlobID != "" {
			location = "stored"
		}
		fmt.Fprintf(&sb, "%d. %s (%s, %s, issued %s)\n", i+1, document.Title, document.Kind, location, document.IssueDate.Format("2006-01-02"))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

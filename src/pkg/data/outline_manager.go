// Package data provides data management functionality for the Chapterforge
// application. This file contains operations on the outline tree.
package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"chapterforge/local-app/src/pkg/event"
	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
	"chapterforge/local-app/src/pkg/storage"
)

// OutlineOperations defines the interface for outline tree operations.
type OutlineOperations interface {
	OutlineLoad(owner string) (*model.Outline, error)
	ChapterAdd(owner string, outline *model.Outline, title, description string) (*model.Chapter, error)
	SubchapterAdd(owner string, outline *model.Outline, chapterID, title, description string) (*model.Subchapter, error)
	NodeRename(owner string, outline *model.Outline, ref model.NodeRef, title, description string) error
	ChapterDelete(owner string, outline *model.Outline, id string) error
	SubchapterDelete(owner string, outline *model.Outline, chapterID, id string) error
	Select(owner string, outline *model.Outline, chapterID, subchapterID string) error
	AttachmentsList(outline *model.Outline, ref model.NodeRef) (model.Attachments, error)
}

// OutlineManager handles all outline tree operations. Every mutating
// operation ends by persisting the full serialized tree.
type OutlineManager struct {
	outlineStore storage.OutlineStore
	payloads     storage.PayloadStore
	eventManager *event.EventManager
	logger       *log.Logger
}

// NewOutlineManager creates a new OutlineManager instance.
func NewOutlineManager(outlineStore storage.OutlineStore, payloads storage.PayloadStore, eventManager *event.EventManager, logger *log.Logger) (*OutlineManager, error) {
	ctx := context.Background()
	logger.Info(ctx, "Creating new OutlineManager", nil)

	if outlineStore == nil {
		logger.Error(ctx, "OutlineStore not initialized", nil)
		return nil, fmt.Errorf("outlineStore not initialized")
	}
	if payloads == nil {
		logger.Error(ctx, "PayloadStore not initialized", nil)
		return nil, fmt.Errorf("payloadStore not initialized")
	}
	if eventManager == nil {
		logger.Error(ctx, "EventManager not initialized", nil)
		return nil, fmt.Errorf("eventManager not initialized")
	}

	om := &OutlineManager{
		outlineStore: outlineStore,
		payloads:     payloads,
		eventManager: eventManager,
		logger:       logger,
	}

	logger.Info(ctx, "OutlineManager created successfully", nil)
	return om, nil
}

// OutlineLoad retrieves the owner's outline document, returning an empty
// outline when none has been persisted yet.
func (om *OutlineManager) OutlineLoad(owner string) (*model.Outline, error) {
	ctx := context.Background()
	om.logger.Info(ctx, "Loading outline", log.Fields{"owner": owner})

	outline, err := om.outlineStore.OutlineLoad(owner)
	if errors.Is(err, storage.ErrNotFound) {
		om.logger.Debug(ctx, "No stored outline, starting empty", log.Fields{"owner": owner})
		return model.NewOutline(), nil
	}
	if err != nil {
		om.logger.Error(ctx, "Failed to load outline", log.Fields{"error": err, "owner": owner})
		return nil, fmt.Errorf("failed to load outline: %w", err)
	}
	return outline, nil
}

// ChapterAdd creates a new chapter with a fresh identifier and persists the
// outline.
func (om *OutlineManager) ChapterAdd(owner string, outline *model.Outline, title, description string) (*model.Chapter, error) {
	ctx := context.Background()
	om.logger.Info(ctx, "Adding chapter", log.Fields{"owner": owner, "title": title})

	if title == "" {
		return nil, &ValidationError{Field: "title"}
	}

	chapter := &model.Chapter{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Expanded:    true,
	}
	outline.Chapters = append(outline.Chapters, chapter)

	if err := om.outlineStore.OutlineSave(owner, outline); err != nil {
		return nil, fmt.Errorf("failed to persist outline: %w", err)
	}

	om.logger.Info(ctx, "Chapter added successfully", log.Fields{"chapterID": chapter.ID})
	return chapter, nil
}

// SubchapterAdd creates a new subchapter under the given chapter. It fails
// when no chapter context exists.
func (om *OutlineManager) SubchapterAdd(owner string, outline *model.Outline, chapterID, title, description string) (*model.Subchapter, error) {
	ctx := context.Background()
	om.logger.Info(ctx, "Adding subchapter", log.Fields{"owner": owner, "chapterID": chapterID, "title": title})

	if chapterID == "" {
		om.logger.Warn(ctx, "Subchapter add without chapter context", nil)
		return nil, errors.New("no chapter selected")
	}
	if title == "" {
		return nil, &ValidationError{Field: "title"}
	}

	chapter := outline.ChapterFind(chapterID)
	if chapter == nil {
		om.logger.Warn(ctx, "Chapter not found", log.Fields{"chapterID": chapterID})
		return nil, fmt.Errorf("chapter %s: %w", chapterID, storage.ErrNotFound)
	}

	subchapter := &model.Subchapter{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
	}
	chapter.Subchapters = append(chapter.Subchapters, subchapter)

	if err := om.outlineStore.OutlineSave(owner, outline); err != nil {
		return nil, fmt.Errorf("failed to persist outline: %w", err)
	}

	om.logger.Info(ctx, "Subchapter added successfully", log.Fields{"subchapterID": subchapter.ID})
	return subchapter, nil
}

// NodeRename updates title and description of a chapter or subchapter.
func (om *OutlineManager) NodeRename(owner string, outline *model.Outline, ref model.NodeRef, title, description string) error {
	ctx := context.Background()
	om.logger.Info(ctx, "Renaming node", log.Fields{"owner": owner, "chapterID": ref.ChapterID, "subchapterID": ref.SubchapterID})

	if title == "" {
		return &ValidationError{Field: "title"}
	}

	chapter := outline.ChapterFind(ref.ChapterID)
	if chapter == nil {
		return fmt.Errorf("chapter %s: %w", ref.ChapterID, storage.ErrNotFound)
	}

	if ref.SubchapterID == "" {
		chapter.Title = title
		chapter.Description = description
	} else {
		subchapter := chapter.SubchapterFind(ref.SubchapterID)
		if subchapter == nil {
			return fmt.Errorf("subchapter %s: %w", ref.SubchapterID, storage.ErrNotFound)
		}
		subchapter.Title = title
		subchapter.Description = description
	}

	if err := om.outlineStore.OutlineSave(owner, outline); err != nil {
		return fmt.Errorf("failed to persist outline: %w", err)
	}
	return nil
}

// ChapterDelete removes a chapter and cascades to all owned subchapters,
// diagrams and documents, discarding each blob-store payload best-effort.
// Deleting an unknown chapter is a no-op.
func (om *OutlineManager) ChapterDelete(owner string, outline *model.Outline, id string) error {
	ctx := context.Background()
	om.logger.Info(ctx, "Deleting chapter", log.Fields{"owner": owner, "chapterID": id})

	chapter := outline.ChapterFind(id)
	if chapter == nil {
		om.logger.Warn(ctx, "Chapter not found, nothing to delete", log.Fields{"chapterID": id})
		return nil
	}

	om.discardAttachments(ctx, chapter.Diagrams, chapter.Documents)
	for _, subchapter := range chapter.Subchapters {
		om.discardAttachments(ctx, subchapter.Diagrams, subchapter.Documents)
	}

	kept := outline.Chapters[:0]
	for _, c := range outline.Chapters {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	outline.Chapters = kept

	if outline.CurrentChapter == id {
		outline.CurrentChapter = ""
		outline.CurrentSubchapter = ""
	}

	if err := om.outlineStore.OutlineSave(owner, outline); err != nil {
		return fmt.Errorf("failed to persist outline: %w", err)
	}

	om.eventManager.Publish(event.Event{Type: event.ChapterDeleted, Data: id})
	om.logger.Info(ctx, "Chapter deleted successfully", log.Fields{"chapterID": id})
	return nil
}

// SubchapterDelete removes a subchapter and its attachments from a chapter.
// Deleting an unknown subchapter is a no-op.
func (om *OutlineManager) SubchapterDelete(owner string, outline *model.Outline, chapterID, id string) error {
	ctx := context.Background()
	om.logger.Info(ctx, "Deleting subchapter", log.Fields{"owner": owner, "chapterID": chapterID, "subchapterID": id})

	chapter := outline.ChapterFind(chapterID)
	if chapter == nil {
		om.logger.Warn(ctx, "Chapter not found, nothing to delete", log.Fields{"chapterID": chapterID})
		return nil
	}
	subchapter := chapter.SubchapterFind(id)
	if subchapter == nil {
		om.logger.Warn(ctx, "Subchapter not found, nothing to delete", log.Fields{"subchapterID": id})
		return nil
	}

	om.discardAttachments(ctx, subchapter.Diagrams, subchapter.Documents)

	kept := chapter.Subchapters[:0]
	for _, s := range chapter.Subchapters {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	chapter.Subchapters = kept

	if outline.CurrentSubchapter == id {
		outline.CurrentSubchapter = ""
	}

	if err := om.outlineStore.OutlineSave(owner, outline); err != nil {
		return fmt.Errorf("failed to persist outline: %w", err)
	}

	om.eventManager.Publish(event.Event{Type: event.SubchapterDeleted, Data: id})
	return nil
}

// Select updates the current selection. Selecting a chapter always clears
// the subchapter selection first; a subchapter can only be selected together
// with its owning chapter. An empty chapterID clears the selection entirely.
func (om *OutlineManager) Select(owner string, outline *model.Outline, chapterID, subchapterID string) error {
	ctx := context.Background()
	om.logger.Info(ctx, "Selecting node", log.Fields{"owner": owner, "chapterID": chapterID, "subchapterID": subchapterID})

	if chapterID == "" {
		outline.CurrentChapter = ""
		outline.CurrentSubchapter = ""
		if err := om.outlineStore.OutlineSave(owner, outline); err != nil {
			return fmt.Errorf("failed to persist outline: %w", err)
		}
		return nil
	}

	chapter := outline.ChapterFind(chapterID)
	if chapter == nil {
		return fmt.Errorf("chapter %s: %w", chapterID, storage.ErrNotFound)
	}

	outline.CurrentChapter = chapterID
	outline.CurrentSubchapter = ""

	if subchapterID != "" {
		if chapter.SubchapterFind(subchapterID) == nil {
			// Keep the chapter selection; the invalid subchapter is reported.
			if err := om.outlineStore.OutlineSave(owner, outline); err != nil {
				return fmt.Errorf("failed to persist outline: %w", err)
			}
			return fmt.Errorf("subchapter %s: %w", subchapterID, storage.ErrNotFound)
		}
		outline.CurrentSubchapter = subchapterID
	}

	if err := om.outlineStore.OutlineSave(owner, outline); err != nil {
		return fmt.Errorf("failed to persist outline: %w", err)
	}
	return nil
}

// ChapterExpandToggle flips a chapter's expansion flag and persists.
func (om *OutlineManager) ChapterExpandToggle(owner string, outline *model.Outline, id string) (bool, error) {
	chapter := outline.ChapterFind(id)
	if chapter == nil {
		return false, fmt.Errorf("chapter %s: %w", id, storage.ErrNotFound)
	}
	chapter.Expanded = !chapter.Expanded
	if err := om.outlineStore.OutlineSave(owner, outline); err != nil {
		return false, fmt.Errorf("failed to persist outline: %w", err)
	}
	return chapter.Expanded, nil
}

// AttachmentsList returns the diagrams and documents of the referenced node.
func (om *OutlineManager) AttachmentsList(outline *model.Outline, ref model.NodeRef) (model.Attachments, error) {
	diagrams, documents, err := nodeAttachments(outline, ref)
	if err != nil {
		return model.Attachments{}, err
	}
	return model.Attachments{Diagrams: *diagrams, Documents: *documents}, nil
}

// discardAttachments requests blob-store deletion for every attachment that
// holds a blob identifier. Failures are logged, never propagated.
func (om *OutlineManager) discardAttachments(ctx context.Context, diagrams []*model.Diagram, documents []*model.Document) {
	for _, d := range diagrams {
		if err := om.payloads.Discard(ctx, d.Payload); err != nil {
			om.logger.Warn(ctx, "Failed to discard diagram payload", log.Fields{"error": err, "diagramID": d.ID})
		}
	}
	for _, d := range documents {
		if err := om.payloads.Discard(ctx, d.Payload); err != nil {
			om.logger.Warn(ctx, "Failed to discard document payload", log.Fields{"error": err, "documentID": d.ID})
		}
	}
}

// handleUserDeleted removes the deleted user's outline document together
// with all blob payloads it references.
func (om *OutlineManager) handleUserDeleted(e event.Event) {
	ctx := context.Background()
	owner, ok := e.Data.(string)
	if !ok {
		om.logger.Error(ctx, "Unexpected UserDeleted event payload", log.Fields{"data": e.Data})
		return
	}
	om.logger.Info(ctx, "Cleaning up outline for deleted user", log.Fields{"owner": owner})

	outline, err := om.outlineStore.OutlineLoad(owner)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			om.logger.Error(ctx, "Failed to load outline for cleanup", log.Fields{"error": err, "owner": owner})
		}
		return
	}
	for _, chapter := range outline.Chapters {
		om.discardAttachments(ctx, chapter.Diagrams, chapter.Documents)
		for _, subchapter := range chapter.Subchapters {
			om.discardAttachments(ctx, subchapter.Diagrams, subchapter.Documents)
		}
	}
	if err := om.outlineStore.OutlineDelete(owner); err != nil {
		om.logger.Error(ctx, "Failed to delete outline", log.Fields{"error": err, "owner": owner})
	}
}

// nodeAttachments returns mutable access to the diagram and document
// sequences of the referenced chapter or subchapter.
func nodeAttachments(outline *model.Outline, ref model.NodeRef) (*[]*model.Diagram, *[]*model.Document, error) {
	chapter := outline.ChapterFind(ref.ChapterID)
	if chapter == nil {
		return nil, nil, fmt.Errorf("chapter %s: %w", ref.ChapterID, storage.ErrNotFound)
	}
	if ref.SubchapterID == "" {
		return &chapter.Diagrams, &chapter.Documents, nil
	}
	subchapter := chapter.SubchapterFind(ref.SubchapterID)
	if subchapter == nil {
		return nil, nil, fmt.Errorf("subchapter %s: %w", ref.SubchapterID, storage.ErrNotFound)
	}
	return &subchapter.Diagrams, &subchapter.Documents, nil
}

// Package data provides data management functionality for the Chapterforge
// application. This file implements the attachment save protocol.
package data

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"chapterforge/local-app/src/pkg/event"
	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
	"chapterforge/local-app/src/pkg/storage"
)

// AttachmentOperations defines the interface for diagram and document
// operations on outline nodes.
type AttachmentOperations interface {
	DiagramSave(owner string, outline *model.Outline, ref model.NodeRef, info model.DiagramInfo) (*model.Diagram, error)
	DiagramDelete(owner string, outline *model.Outline, ref model.NodeRef, id string) error
	DocumentSave(owner string, outline *model.Outline, ref model.NodeRef, info model.DocumentInfo) (*model.Document, error)
	DocumentDelete(owner string, outline *model.Outline, ref model.NodeRef, id string) error
}

// AttachmentManager handles diagram and document attachments. Saving follows
// a fixed protocol: validate, encode, persist the payload through the
// payload store, record the returned reference, append or replace in the
// owning node, persist the outline root.
type AttachmentManager struct {
	outlineStore storage.OutlineStore
	payloads     storage.PayloadStore
	eventManager *event.EventManager
	logger       *log.Logger
}

// NewAttachmentManager creates a new AttachmentManager instance.
func NewAttachmentManager(outlineStore storage.OutlineStore, payloads storage.PayloadStore, eventManager *event.EventManager, logger *log.Logger) (*AttachmentManager, error) {
	ctx := context.Background()
	logger.Info(ctx, "Creating new AttachmentManager", nil)

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

	am := &AttachmentManager{
		outlineStore: outlineStore,
		payloads:     payloads,
		eventManager: eventManager,
		logger:       logger,
	}

	logger.Info(ctx, "AttachmentManager created successfully", nil)
	return am, nil
}

// DiagramSave validates and stores a diagram on the referenced node. An info
// with a set ID replaces the existing diagram, otherwise a new one is
// appended under a fresh identifier.
func (am *AttachmentManager) DiagramSave(owner string, outline *model.Outline, ref model.NodeRef, info model.DiagramInfo) (*model.Diagram, error) {
	ctx := context.Background()
	am.logger.Info(ctx, "Saving diagram", log.Fields{"owner": owner, "title": info.Title, "kind": info.Kind})

	// Validation happens before any I/O.
	if info.Title == "" {
		return nil, &ValidationError{Field: "title"}
	}
	if !info.Kind.Valid() {
		return nil, &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown diagram kind %q", info.Kind)}
	}
	switch info.Kind {
	case model.DiagramText:
		if info.Source == "" {
			return nil, &ValidationError{Field: "source"}
		}
	case model.DiagramImage:
		if info.Payload == "" && info.FilePath == "" {
			return nil, &ValidationError{Field: "file"}
		}
	}

	diagrams, _, err := nodeAttachments(outline, ref)
	if err != nil {
		return nil, err
	}

	diagram := &model.Diagram{
		ID:          info.ID,
		Title:       info.Title,
		Description: info.Description,
		Kind:        info.Kind,
	}
	if diagram.ID == "" {
		diagram.ID = uuid.NewString()
	}

	switch info.Kind {
	case model.DiagramText:
		diagram.Source = info.Source
	case model.DiagramImage:
		payload, err := am.encodedPayload(info.Payload, info.FilePath, "")
		if err != nil {
			return nil, err
		}
		diagram.Payload = am.payloads.Persist(ctx, payload)
	}

	if replaced := replaceOrAppendDiagram(diagrams, diagram); replaced != nil && replaced.Payload.BlobID != diagram.Payload.BlobID {
		if err := am.payloads.Discard(ctx, replaced.Payload); err != nil {
			am.logger.Warn(ctx, "Failed to discard replaced diagram payload", log.Fields{"error": err, "diagramID": diagram.ID})
		}
	}

	if err := am.outlineStore.OutlineSave(owner, outline); err != nil {
		return nil, fmt.Errorf("failed to persist outline: %w", err)
	}

	if info.FilePath != "" {
		am.eventManager.Publish(event.Event{Type: event.AttachmentStored, Data: info.FilePath})
	}

	am.logger.Info(ctx, "Diagram saved successfully", log.Fields{"diagramID": diagram.ID})
	return diagram, nil
}

// DiagramDelete removes a diagram from the referenced node and requests
// deletion of its blob entry best-effort. Unknown IDs are a no-op.
func (am *AttachmentManager) DiagramDelete(owner string, outline *model.Outline, ref model.NodeRef, id string) error {
	ctx := context.Background()
	am.logger.Info(ctx, "Deleting diagram", log.Fields{"owner": owner, "diagramID": id})

	diagrams, _, err := nodeAttachments(outline, ref)
	if err != nil {
		return err
	}

	found := false
	kept := (*diagrams)[:0]
	for _, d := range *diagrams {
		if d.ID == id {
			found = true
			if err := am.payloads.Discard(ctx, d.Payload); err != nil {
				am.logger.Warn(ctx, "Failed to discard diagram payload", log.Fields{"error": err, "diagramID": d.ID})
			}
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		am.logger.Warn(ctx, "Diagram not found, nothing to delete", log.Fields{"diagramID": id})
		return nil
	}
	*diagrams = kept

	if err := am.outlineStore.OutlineSave(owner, outline); err != nil {
		return fmt.Errorf("failed to persist outline: %w", err)
	}

	am.eventManager.Publish(event.Event{Type: event.AttachmentDeleted, Data: id})
	return nil
}

// DocumentSave validates and stores a document on the referenced node,
// deriving the document kind from its MIME type.
func (am *AttachmentManager) DocumentSave(owner string, outline *model.Outline, ref model.NodeRef, info model.DocumentInfo) (*model.Document, error) {
	ctx := context.Background()
	am.logger.Info(ctx, "Saving document", log.Fields{"owner": owner, "title": info.Title, "mimeType": info.MIMEType})

	// Validation happens before any I/O.
	if info.Title == "" {
		return nil, &ValidationError{Field: "title"}
	}
	if info.Payload == "" && info.FilePath == "" {
		return nil, &ValidationError{Field: "file"}
	}

	mimeType := info.MIMEType
	if mimeType == "" && info.FilePath != "" {
		mimeType = mimeTypeOf(info.FilePath)
	}
	kind, err := model.DocumentKindFromMIME(mimeType)
	if err != nil {
		return nil, &ValidationError{Field: "mime_type", Reason: err.Error()}
	}

	_, documents, err := nodeAttachments(outline, ref)
	if err != nil {
		return nil, err
	}

	payload, err := am.encodedPayload(info.Payload, info.FilePath, mimeType)
	if err != nil {
		return nil, err
	}

	document := &model.Document{
		ID:          info.ID,
		Title:       info.Title,
		Description: info.Description,
		Kind:        kind,
		MIMEType:    mimeType,
		IssueDate:   info.IssueDate,
	}
	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	if document.IssueDate.IsZero() {
		document.IssueDate = time.Now()
	}
	document.Payload = am.payloads.Persist(ctx, payload)

	if replaced := replaceOrAppendDocument(documents, document); replaced != nil && replaced.Payload.BlobID != document.Payload.BlobID {
		if err := am.payloads.Discard(ctx, replaced.Payload); err != nil {
			am.logger.Warn(ctx, "Failed to discard replaced document payload", log.Fields{"error": err, "documentID": document.ID})
		}
	}

	if err := am.outlineStore.OutlineSave(owner, outline); err != nil {
		return nil, fmt.Errorf("failed to persist outline: %w", err)
	}

	if info.FilePath != "" {
		am.eventManager.Publish(event.Event{Type: event.AttachmentStored, Data: info.FilePath})
	}

	am.logger.Info(ctx, "Document saved successfully", log.Fields{"documentID": document.ID})
	return document, nil
}

// DocumentDelete removes a document from the referenced node and requests
// deletion of its blob entry best-effort. Unknown IDs are a no-op.
func (am *AttachmentManager) DocumentDelete(owner string, outline *model.Outline, ref model.NodeRef, id string) error {
	ctx := context.Background()
	am.logger.Info(ctx, "Deleting document", log.Fields{"owner": owner, "documentID": id})

	_, documents, err := nodeAttachments(outline, ref)
	if err != nil {
		return err
	}

	found := false
	kept := (*documents)[:0]
	for _, d := range *documents {
		if d.ID == id {
			found = true
			if err := am.payloads.Discard(ctx, d.Payload); err != nil {
				am.logger.Warn(ctx, "Failed to discard document payload", log.Fields{"error": err, "documentID": d.ID})
			}
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		am.logger.Warn(ctx, "Document not found, nothing to delete", log.Fields{"documentID": id})
		return nil
	}
	*documents = kept

	if err := am.outlineStore.OutlineSave(owner, outline); err != nil {
		return fmt.Errorf("failed to persist outline: %w", err)
	}

	am.eventManager.Publish(event.Event{Type: event.AttachmentDeleted, Data: id})
	return nil
}

// encodedPayload returns the data-URI form of an attachment payload: the
// pre-encoded payload when the caller supplied one, otherwise the file at
// path read fully and encoded.
func (am *AttachmentManager) encodedPayload(payload, path, mimeType string) (string, error) {
	if payload != "" {
		return payload, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read attachment file: %w", err)
	}
	if mimeType == "" {
		mimeType = mimeTypeOf(path)
	}
	return EncodeDataURI(mimeType, raw), nil
}

// EncodeDataURI encodes raw bytes as a MIME-prefixed base64 data URI, the
// canonical payload form of both storage tiers.
func EncodeDataURI(mimeType string, raw []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

// mimeTypeOf guesses a MIME type from the file extension.
func mimeTypeOf(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// replaceOrAppendDiagram replaces the diagram with a matching ID or appends.
// Returns the replaced diagram, if any.
func replaceOrAppendDiagram(diagrams *[]*model.Diagram, diagram *model.Diagram) *model.Diagram {
	for i, d := range *diagrams {
		if d.ID == diagram.ID {
			(*diagrams)[i] = diagram
			return d
		}
	}
	*diagrams = append(*diagrams, diagram)
	return nil
}

// replaceOrAppendDocument replaces the document with a matching ID or appends.
// Returns the replaced document, if any.
func replaceOrAppendDocument(documents *[]*model.Document, document *model.Document) *model.Document {
	for i, d := range *documents {
		if d.ID == document.ID {
			(*documents)[i] = document
			return d
		}
	}
	*documents = append(*documents, document)
	return nil
}

// Package render is the boundary to the presentation side: it resolves the
// displayable content of diagram and document records and turns outline
// descriptions into HTML. Visual presentation itself is left to external
// collaborators.
package render

import (
	"context"
	"fmt"

	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
	"chapterforge/local-app/src/pkg/storage"
)

// Resolver produces the displayable payload of an attachment record,
// preferring the blob store and falling back to the inline form. A record
// whose payload resolves nowhere is reported unavailable, never fatal.
type Resolver struct {
	payloads storage.PayloadStore
	logger   *log.Logger
}

// NewResolver creates a new Resolver instance.
func NewResolver(payloads storage.PayloadStore, logger *log.Logger) *Resolver {
	return &Resolver{payloads: payloads, logger: logger}
}

// DiagramContent returns what a rendering collaborator needs for a diagram:
// the raw source for text diagrams, the resolved data-URI payload for images.
func (r *Resolver) DiagramContent(ctx context.Context, diagram *model.Diagram) (string, error) {
	switch diagram.Kind {
	case model.DiagramText:
		return diagram.Source, nil
	case model.DiagramImage:
		payload, err := r.payloads.Resolve(ctx, diagram.Payload)
		if err != nil {
			r.logger.Warn(ctx, "Diagram payload unavailable", log.Fields{"error": err, "diagramID": diagram.ID})
			return "", fmt.Errorf("diagram %s: %w", diagram.ID, err)
		}
		return payload, nil
	default:
		return "", fmt.Errorf("unknown diagram kind %q", diagram.Kind)
	}
}

// DocumentContent returns the resolved data-URI payload of a document.
func (r *Resolver) DocumentContent(ctx context.Context, document *model.Document) (string, error) {
	payload, err := r.payloads.Resolve(ctx, document.Payload)
	if err != nil {
		r.logger.Warn(ctx, "Document payload unavailable", log.Fields{"error": err, "documentID": document.ID})
		return "", fmt.Errorf("document %s: %w", document.ID, err)
	}
	return payload, nil
}

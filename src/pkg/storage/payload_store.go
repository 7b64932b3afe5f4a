package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
)

// PayloadStore is the single capability behind which attachment payload
// placement is decided. Persist writes a payload and returns the reference
// to record on the entity: a blob identifier when the durable tier took the
// write, or the inline form when it degraded. Callers never branch on the
// tier themselves.
//
// Persist is atomic per entity: the blob write happens before any reference
// is handed out, so a returned blob identifier always resolves and no
// entity ever carries both forms.
type PayloadStore interface {
	Persist(ctx context.Context, payload string) model.PayloadRef
	Resolve(ctx context.Context, ref model.PayloadRef) (string, error)
	Discard(ctx context.Context, ref model.PayloadRef) error
	Degraded() bool
}

// SelectPayloadStore probes the blob tier once and picks the implementation
// for the rest of the session: durable when the probe succeeds, inline-only
// when it fails. The degradation is logged once here.
func SelectPayloadStore(ctx context.Context, blobs BlobStore, logger *log.Logger) PayloadStore {
	if blobs == nil {
		logger.Warn(ctx, "Blob tier absent, storing payloads inline for this session", nil)
		return NewInlinePayloadStore(logger)
	}
	if err := blobs.BlobProbe(ctx); err != nil {
		logger.Warn(ctx, "Blob tier unavailable, storing payloads inline for this session", log.Fields{"error": err})
		return NewInlinePayloadStore(logger)
	}
	return NewDurablePayloadStore(blobs, logger)
}

// DurablePayloadStore keeps payloads in the blob store, degrading to the
// inline form per call when a write fails.
type DurablePayloadStore struct {
	blobs  BlobStore
	logger *log.Logger
}

// NewDurablePayloadStore creates a blob-backed payload store.
func NewDurablePayloadStore(blobs BlobStore, logger *log.Logger) *DurablePayloadStore {
	return &DurablePayloadStore{blobs: blobs, logger: logger}
}

// Persist writes the payload to the blob store under a fresh identifier and
// returns a blob reference. A failed write degrades this one payload to the
// inline form; the caller's operation still completes.
func (p *DurablePayloadStore) Persist(ctx context.Context, payload string) model.PayloadRef {
	id := uuid.NewString()
	if err := p.blobs.BlobPut(ctx, id, payload); err != nil {
		p.logger.Warn(ctx, "Blob write failed, storing payload inline", log.Fields{"error": err, "blobID": id})
		return model.PayloadRef{Inline: payload}
	}
	return model.PayloadRef{BlobID: id}
}

// Resolve produces the payload for a reference, preferring the blob store
// and falling back to the inline form.
func (p *DurablePayloadStore) Resolve(ctx context.Context, ref model.PayloadRef) (string, error) {
	if ref.BlobID != "" {
		payload, err := p.blobs.BlobGet(ctx, ref.BlobID)
		if err == nil {
			return payload, nil
		}
		if !errors.Is(err, ErrNotFound) {
			p.logger.Warn(ctx, "Blob read failed, trying inline form", log.Fields{"error": err, "blobID": ref.BlobID})
		}
	}
	if ref.Inline != "" {
		return ref.Inline, nil
	}
	return "", ErrPayloadUnavailable
}

// Discard removes the blob entry a reference points at, if any.
func (p *DurablePayloadStore) Discard(ctx context.Context, ref model.PayloadRef) error {
	if ref.BlobID == "" {
		return nil
	}
	if err := p.blobs.BlobDelete(ctx, ref.BlobID); err != nil {
		return fmt.Errorf("failed to discard payload: %w", err)
	}
	return nil
}

// Degraded reports whether the store runs without the blob tier.
func (p *DurablePayloadStore) Degraded() bool { return false }

// InlinePayloadStore stores every payload inline in the outline document.
// Selected for the whole session when the blob tier is unavailable at init.
type InlinePayloadStore struct {
	logger *log.Logger
}

// NewInlinePayloadStore creates an inline-only payload store.
func NewInlinePayloadStore(logger *log.Logger) *InlinePayloadStore {
	return &InlinePayloadStore{logger: logger}
}

// Persist returns the payload as an inline reference.
func (p *InlinePayloadStore) Persist(ctx context.Context, payload string) model.PayloadRef {
	return model.PayloadRef{Inline: payload}
}

// Resolve produces the inline payload of a reference. A blob-only reference
// cannot be resolved without the blob tier.
func (p *InlinePayloadStore) Resolve(ctx context.Context, ref model.PayloadRef) (string, error) {
	if ref.Inline != "" {
		return ref.Inline, nil
	}
	return "", ErrPayloadUnavailable
}

// Discard is a no-op: inline payloads vanish with their entity.
func (p *InlinePayloadStore) Discard(ctx context.Context, ref model.PayloadRef) error {
	return nil
}

// Degraded reports whether the store runs without the blob tier.
func (p *InlinePayloadStore) Degraded() bool { return true }

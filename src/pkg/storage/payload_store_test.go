package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
)

// fakeBlobStore is an in-memory BlobStore whose operations can be forced to
// fail.
type fakeBlobStore struct {
	blobs     map[string]string
	failPut   bool
	failProbe bool
	deletes   int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string]string)}
}

func (f *fakeBlobStore) BlobPut(ctx context.Context, id, payload string) error {
	if f.failPut {
		return fmt.Errorf("%w: disk full", ErrStoreUnavailable)
	}
	f.blobs[id] = payload
	return nil
}

func (f *fakeBlobStore) BlobGet(ctx context.Context, id string) (string, error) {
	payload, ok := f.blobs[id]
	if !ok {
		return "", ErrNotFound
	}
	return payload, nil
}

func (f *fakeBlobStore) BlobDelete(ctx context.Context, id string) error {
	delete(f.blobs, id)
	f.deletes++
	return nil
}

func (f *fakeBlobStore) BlobProbe(ctx context.Context) error {
	if f.failProbe {
		return fmt.Errorf("%w: probe failed", ErrStoreUnavailable)
	}
	return nil
}

func newTestLogger(t *testing.T) *log.Logger {
	t.Helper()

	cfg := &model.Config{
		LogFolder:  t.TempDir(),
		CommandLog: "commands.log",
		ErrorLog:   "errors.log",
		InfoLog:    "info.log",
	}
	logger, err := log.NewLogger(cfg, log.LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })
	return logger
}

func TestSelectPayloadStore(t *testing.T) {
	logger := newTestLogger(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		blobs        BlobStore
		wantDegraded bool
	}{
		{
			name:         "healthy blob tier",
			blobs:        newFakeBlobStore(),
			wantDegraded: false,
		},
		{
			name:         "failing probe",
			blobs:        &fakeBlobStore{blobs: map[string]string{}, failProbe: true},
			wantDegraded: true,
		},
		{
			name:         "absent blob tier",
			blobs:        nil,
			wantDegraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payloads := SelectPayloadStore(ctx, tt.blobs, logger)
			if payloads.Degraded() != tt.wantDegraded {
				t.Errorf("Degraded() = %v, want %v", payloads.Degraded(), tt.wantDegraded)
			}
		})
	}
}

func TestDurablePersistReturnsBlobRef(t *testing.T) {
	blobs := newFakeBlobStore()
	payloads := NewDurablePayloadStore(blobs, newTestLogger(t))
	ctx := context.Background()

	ref := payloads.Persist(ctx, "data:image/png;base64,aGVsbG8=")
	if ref.BlobID == "" {
		t.Fatal("Persist() returned empty blob id")
	}
	if ref.Inline != "" {
		t.Errorf("Persist() set inline form alongside blob id: %q", ref.Inline)
	}

	got, err := payloads.Resolve(ctx, ref)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "data:image/png;base64,aGVsbG8=" {
		t.Errorf("Resolve() = %q, want original payload", got)
	}
}

func TestDurablePersistFallsBackInline(t *testing.T) {
	blobs := newFakeBlobStore()
	blobs.failPut = true
	payloads := NewDurablePayloadStore(blobs, newTestLogger(t))
	ctx := context.Background()

	ref := payloads.Persist(ctx, "payload")
	if ref.BlobID != "" {
		t.Errorf("Persist() returned blob id %q after failed write", ref.BlobID)
	}
	if ref.Inline != "payload" {
		t.Errorf("Persist() inline = %q, want %q", ref.Inline, "payload")
	}

	// The degraded ref still resolves.
	got, err := payloads.Resolve(ctx, ref)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "payload" {
		t.Errorf("Resolve() = %q, want %q", got, "payload")
	}
}

func TestDurableResolveUnavailable(t *testing.T) {
	payloads := NewDurablePayloadStore(newFakeBlobStore(), newTestLogger(t))

	_, err := payloads.Resolve(context.Background(), model.PayloadRef{BlobID: "gone"})
	if !errors.Is(err, ErrPayloadUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrPayloadUnavailable", err)
	}
}

func TestDurableDiscard(t *testing.T) {
	blobs := newFakeBlobStore()
	payloads := NewDurablePayloadStore(blobs, newTestLogger(t))
	ctx := context.Background()

	ref := payloads.Persist(ctx, "payload")
	if err := payloads.Discard(ctx, ref); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}
	if blobs.deletes != 1 {
		t.Errorf("Discard() blob deletes = %d, want 1", blobs.deletes)
	}

	// Inline refs have nothing to discard.
	if err := payloads.Discard(ctx, model.PayloadRef{Inline: "payload"}); err != nil {
		t.Errorf("Discard() inline ref error = %v", err)
	}
	if blobs.deletes != 1 {
		t.Errorf("Discard() inline ref touched the blob store")
	}
}

func TestInlinePayloadStore(t *testing.T) {
	payloads := NewInlinePayloadStore(newTestLogger(t))
	ctx := context.Background()

	ref := payloads.Persist(ctx, "payload")
	if ref.BlobID != "" || ref.Inline != "payload" {
		t.Fatalf("Persist() = %+v, want inline-only ref", ref)
	}

	got, err := payloads.Resolve(ctx, ref)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "payload" {
		t.Errorf("Resolve() = %q, want %q", got, "payload")
	}

	// A blob-only ref cannot be resolved without the blob tier.
	if _, err := payloads.Resolve(ctx, model.PayloadRef{BlobID: "b1"}); !errors.Is(err, ErrPayloadUnavailable) {
		t.Errorf("Resolve() blob-only error = %v, want ErrPayloadUnavailable", err)
	}
}

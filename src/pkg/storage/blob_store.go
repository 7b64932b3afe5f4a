package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chapterforge/local-app/src/pkg/log"
)

// BlobStore defines the interface for the large-payload tier: a key-value
// store mapping generated identifiers to encoded payload strings.
type BlobStore interface {
	BlobPut(ctx context.Context, id, payload string) error
	BlobGet(ctx context.Context, id string) (string, error)
	BlobDelete(ctx context.Context, id string) error
	BlobProbe(ctx context.Context) error
}

// BlobStorage implements the BlobStore interface over the blobs table.
type BlobStorage struct {
	storage *Storage
	logger  *log.Logger
}

// NewBlobStorage creates a new BlobStorage instance.
func NewBlobStorage(storage *Storage) *BlobStorage {
	return &BlobStorage{
		storage: storage,
		logger:  storage.logger,
	}
}

// BlobPut stores a payload under the given identifier.
func (s *BlobStorage) BlobPut(ctx context.Context, id, payload string) error {
	s.logger.Debug(ctx, "Storing blob", log.Fields{"blobID": id, "size": len(payload)})

	db := s.storage.GetDatabase()
	_, err := db.Exec("INSERT INTO blobs (id, payload, created) VALUES (?, ?, ?)", id, payload, time.Now())
	if err != nil {
		s.logger.Error(ctx, "Failed to store blob", log.Fields{"error": err, "blobID": id})
		return fmt.Errorf("failed to store blob: %w", err)
	}
	return nil
}

// BlobGet retrieves a payload by identifier. Returns ErrNotFound when the
// identifier is absent.
func (s *BlobStorage) BlobGet(ctx context.Context, id string) (string, error) {
	db := s.storage.GetDatabase()
	var payload string
	err := db.QueryRow("SELECT payload FROM blobs WHERE id = ?", id).Scan(&payload)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		s.logger.Error(ctx, "Failed to read blob", log.Fields{"error": err, "blobID": id})
		return "", fmt.Errorf("failed to read blob: %w", err)
	}
	return payload, nil
}

// BlobDelete removes a payload by identifier. Deleting an absent identifier
// is a no-op.
func (s *BlobStorage) BlobDelete(ctx context.Context, id string) error {
	s.logger.Debug(ctx, "Deleting blob", log.Fields{"blobID": id})

	db := s.storage.GetDatabase()
	if _, err := db.Exec("DELETE FROM blobs WHERE id = ?", id); err != nil {
		s.logger.Error(ctx, "Failed to delete blob", log.Fields{"error": err, "blobID": id})
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// BlobProbe verifies that the blob tier is reachable.
func (s *BlobStorage) BlobProbe(ctx context.Context) error {
	db := s.storage.GetDatabase()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM blobs").Scan(&n); err != nil {
		s.logger.Error(ctx, "Blob tier probe failed", log.Fields{"error": err})
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

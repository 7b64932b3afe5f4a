package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
)

// OutlineStore defines the interface for outline document persistence. The
// whole outline root is stored as one JSON document per owner; there is no
// partial or incremental persistence.
type OutlineStore interface {
	OutlineSave(owner string, outline *model.Outline) error
	OutlineLoad(owner string) (*model.Outline, error)
	OutlineDelete(owner string) error
}

// OutlineStorage implements the OutlineStore interface.
type OutlineStorage struct {
	storage *Storage
	logger  *log.Logger
}

// NewOutlineStorage creates a new OutlineStorage instance.
func NewOutlineStorage(storage *Storage) *OutlineStorage {
	return &OutlineStorage{
		storage: storage,
		logger:  storage.logger,
	}
}

// OutlineSave serializes the outline and upserts it under the owner's key.
func (s *OutlineStorage) OutlineSave(owner string, outline *model.Outline) error {
	ctx := context.Background()
	s.logger.Debug(ctx, "Saving outline", log.Fields{"owner": owner, "chapterCount": len(outline.Chapters)})

	doc, err := json.Marshal(outline)
	if err != nil {
		s.logger.Error(ctx, "Failed to marshal outline", log.Fields{"error": err, "owner": owner})
		return fmt.Errorf("failed to marshal outline: %w", err)
	}

	db := s.storage.GetDatabase()
	_, err = db.Exec(
		"INSERT INTO outlines (owner, doc, updated) VALUES (?, ?, ?) ON CONFLICT(owner) DO UPDATE SET doc = excluded.doc, updated = excluded.updated",
		owner, string(doc), time.Now(),
	)
	if err != nil {
		s.logger.Error(ctx, "Failed to save outline", log.Fields{"error": err, "owner": owner})
		return fmt.Errorf("failed to save outline: %w", err)
	}

	s.logger.Debug(ctx, "Outline saved", log.Fields{"owner": owner})
	return nil
}

// OutlineLoad reads and deserializes the owner's outline document.
// Returns ErrNotFound when the owner has no stored outline yet.
func (s *OutlineStorage) OutlineLoad(owner string) (*model.Outline, error) {
	ctx := context.Background()
	s.logger.Debug(ctx, "Loading outline", log.Fields{"owner": owner})

	db := s.storage.GetDatabase()
	var doc string
	err := db.QueryRow("SELECT doc FROM outlines WHERE owner = ?", owner).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error(ctx, "Failed to load outline", log.Fields{"error": err, "owner": owner})
		return nil, fmt.Errorf("failed to load outline: %w", err)
	}

	outline := model.NewOutline()
	if err := json.Unmarshal([]byte(doc), outline); err != nil {
		s.logger.Error(ctx, "Failed to unmarshal outline", log.Fields{"error": err, "owner": owner})
		return nil, fmt.Errorf("failed to unmarshal outline: %w", err)
	}

	s.logger.Debug(ctx, "Outline loaded", log.Fields{"owner": owner, "chapterCount": len(outline.Chapters)})
	return outline, nil
}

// OutlineDelete removes the owner's outline document.
func (s *OutlineStorage) OutlineDelete(owner string) error {
	ctx := context.Background()
	s.logger.Info(ctx, "Deleting outline", log.Fields{"owner": owner})

	db := s.storage.GetDatabase()
	if _, err := db.Exec("DELETE FROM outlines WHERE owner = ?", owner); err != nil {
		s.logger.Error(ctx, "Failed to delete outline", log.Fields{"error": err, "owner": owner})
		return fmt.Errorf("failed to delete outline: %w", err)
	}
	return nil
}

// Package data provides data management functionality for the Chapterforge
// application. It coordinates operations between user, outline, and
// attachment managers.
package data

import (
	"context"
	"fmt"

	"chapterforge/local-app/src/pkg/event"
	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
	"chapterforge/local-app/src/pkg/storage"
)

// DataManager is the main struct that coordinates all data operations
type DataManager struct {
	UserManager       *UserManager
	OutlineManager    *OutlineManager
	AttachmentManager *AttachmentManager
	EventManager      *event.EventManager
	PayloadStore      storage.PayloadStore
	Config            *model.Config
	Logger            *log.Logger
}

// NewDataManager creates a new DataManager instance
func NewDataManager(userStore storage.UserStore, outlineStore storage.OutlineStore, payloads storage.PayloadStore, cfg *model.Config, logger *log.Logger) (*DataManager, error) {
	eventManager := event.NewEventManager(logger)
	m := &DataManager{
		EventManager: eventManager,
		PayloadStore: payloads,
		Config:       cfg,
		Logger:       logger,
	}

	// Initialize UserManager
	var err error
	m.UserManager, err = NewUserManager(userStore, eventManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create UserManager: %w", err)
	}

	// Initialize OutlineManager
	m.OutlineManager, err = NewOutlineManager(outlineStore, payloads, eventManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create OutlineManager: %w", err)
	}

	// Initialize AttachmentManager
	m.AttachmentManager, err = NewAttachmentManager(outlineStore, payloads, eventManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AttachmentManager: %w", err)
	}

	// Handle default user logic
	if cfg.DefaultUserActive {
		existing, err := m.UserManager.UserGet(model.UserInfo{Username: cfg.DefaultUser}, model.UserFilter{Username: true})
		if err != nil {
			return nil, fmt.Errorf("failed to check default user existence: %w", err)
		}
		if len(existing) == 0 {
			if _, err := m.UserManager.UserAdd(cfg.DefaultUser, cfg.DefaultUserPassword, true); err != nil {
				return nil, fmt.Errorf("failed to create default user: %w", err)
			}
		}
	}

	// Subscribe OutlineManager to UserDeleted events
	eventManager.Subscribe(event.UserDeleted, m.OutlineManager.handleUserDeleted)

	return m, nil
}

// OutlineExport exports a user's outline to a file in the specified format.
func (m *DataManager) OutlineExport(outline *model.Outline, filename, format string) error {
	if err := storage.FileExport(outline, filename, format); err != nil {
		return fmt.Errorf("failed to export outline: %w", err)
	}
	return nil
}

// OutlineImport imports an outline from a file and replaces the user's
// stored outline with it.
func (m *DataManager) OutlineImport(user *model.User, filename, format string) (*model.Outline, error) {
	// Import the outline
	imported, err := storage.FileImport(filename, format)
	if err != nil {
		return nil, fmt.Errorf("failed to import outline: %w", err)
	}

	// Validate the imported outline structure
	if err := m.validateOutline(imported); err != nil {
		return nil, fmt.Errorf("invalid outline structure: %w", err)
	}

	// Replace the stored outline. The previous outline's blob payloads are
	// discarded so no orphaned entries stay behind.
	ctx := context.Background()
	previous, err := m.OutlineManager.OutlineLoad(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing outline: %w", err)
	}
	for _, chapter := range previous.Chapters {
		m.OutlineManager.discardAttachments(ctx, chapter.Diagrams, chapter.Documents)
		for _, subchapter := range chapter.Subchapters {
			m.OutlineManager.discardAttachments(ctx, subchapter.Diagrams, subchapter.Documents)
		}
	}

	if err := m.OutlineManager.outlineStore.OutlineSave(user.Username, imported); err != nil {
		return nil, fmt.Errorf("failed to save imported outline: %w", err)
	}

	return imported, nil
}

// validateOutline checks the imported outline structure for validity:
// unique identifiers and a selection that references existing nodes.
func (m *DataManager) validateOutline(outline *model.Outline) error {
	seen := make(map[string]bool)
	record := func(id, what string) error {
		if id == "" {
			return fmt.Errorf("%s with empty identifier", what)
		}
		if seen[id] {
			return fmt.Errorf("duplicate identifier: %s", id)
		}
		seen[id] = true
		return nil
	}

	for _, chapter := range outline.Chapters {
		if err := record(chapter.ID, "chapter"); err != nil {
			return err
		}
		for _, subchapter := range chapter.Subchapters {
			if err := record(subchapter.ID, "subchapter"); err != nil {
				return err
			}
			for _, d := range subchapter.Diagrams {
				if err := record(d.ID, "diagram"); err != nil {
					return err
				}
			}
			for _, d := range subchapter.Documents {
				if err := record(d.ID, "document"); err != nil {
					return err
				}
			}
		}
		for _, d := range chapter.Diagrams {
			if err := record(d.ID, "diagram"); err != nil {
				return err
			}
		}
		for _, d := range chapter.Documents {
			if err := record(d.ID, "document"); err != nil {
				return err
			}
		}
	}

	// The selection must reference existing nodes, and a selected
	// subchapter must belong to the selected chapter.
	if outline.CurrentChapter != "" {
		chapter := outline.ChapterFind(outline.CurrentChapter)
		if chapter == nil {
			return fmt.Errorf("selected chapter %s not found", outline.CurrentChapter)
		}
		if outline.CurrentSubchapter != "" && chapter.SubchapterFind(outline.CurrentSubchapter) == nil {
			return fmt.Errorf("selected subchapter %s not in selected chapter", outline.CurrentSubchapter)
		}
	} else if outline.CurrentSubchapter != "" {
		return fmt.Errorf("subchapter selected without a chapter")
	}

	return nil
}

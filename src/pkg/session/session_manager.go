// Package session manages interactive sessions and dispatches their
// commands to the data layer.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"chapterforge/local-app/src/pkg/data"
	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
	"chapterforge/local-app/src/pkg/render"
	"chapterforge/local-app/src/pkg/watcher"
)

const (
	sessionIDLength        = 32
	defaultCleanupInterval = 5 * time.Minute
	defaultSessionTimeout  = 30 * time.Minute
)

// CommandHandler is a function type for command handlers
type CommandHandler func(*SessionManager, *model.Session, model.Command) (interface{}, error)

// SessionManager manages multiple concurrent sessions. Commands are pushed
// through a single executor goroutine, so no two mutations ever run
// concurrently.
type SessionManager struct {
	sessions        map[string]*model.Session
	dataManager     *data.DataManager
	resolver        *render.Resolver
	exporter        *render.HTMLExporter
	inbox           *watcher.InboxWatcher
	commandHandlers map[string]map[string]CommandHandler
	cleanupTicker   *time.Ticker
	done            chan bool
	commandQueue    chan commandExecution
	logger          *log.Logger
}

// commandExecution represents a command to be executed in a session, its result and error
type commandExecution struct {
	session *model.Session
	command model.Command
	result  chan interface{}
	err     chan error
}

// NewSessionManager creates the manager and starts the command execution
// goroutine. The inbox watcher is optional and may be nil.
func NewSessionManager(dataManager *data.DataManager, resolver *render.Resolver, exporter *render.HTMLExporter, inbox *watcher.InboxWatcher, logger *log.Logger) *SessionManager {
	ctx := context.Background()
	logger.Info(ctx, "Creating new SessionManager", nil)

	sm := &SessionManager{
		sessions:     make(map[string]*model.Session),
		dataManager:  dataManager,
		resolver:     resolver,
		exporter:     exporter,
		inbox:        inbox,
		done:         make(chan bool),
		commandQueue: make(chan commandExecution),
		logger:       logger,
	}
	sm.initCommandHandlers()
	sm.startCleanupRoutine()
	go sm.commandExecutor()

	logger.Info(ctx, "SessionManager created successfully", nil)
	return sm
}

// initCommandHandlers initializes the command handlers map
func (sm *SessionManager) initCommandHandlers() {
	sm.commandHandlers = map[string]map[string]CommandHandler{
		"user":       initUserCommandHandlers(),
		"chapter":    initChapterCommandHandlers(),
		"subchapter": initSubchapterCommandHandlers(),
		"diagram":    initDiagramCommandHandlers(),
		"document":   initDocumentCommandHandlers(),
		"outline":    initOutlineCommandHandlers(),
		"inbox":      initInboxCommandHandlers(),
		"system":     initSystemCommandHandlers(),
	}
}

// SessionAdd creates a new session and returns its ID
func (sm *SessionManager) SessionAdd() (string, error) {
	ctx := context.Background()
	sm.logger.Info(ctx, "Adding new session", nil)

	sessionID, err := generateSessionID()
	if err != nil {
		sm.logger.Error(ctx, "Failed to generate session ID", log.Fields{"error": err})
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}

	sm.sessions[sessionID] = &model.Session{
		ID:           sessionID,
		LastActivity: time.Now(),
	}
	sm.logger.Info(ctx, "New session added", log.Fields{"sessionID": sessionID})
	return sessionID, nil
}

// SessionGet retrieves a session by its ID
func (sm *SessionManager) SessionGet(sessionID string) (*model.Session, bool) {
	session, exists := sm.sessions[sessionID]
	if !exists {
		sm.logger.Warn(context.Background(), "Session not found", log.Fields{"sessionID": sessionID})
	}
	return session, exists
}

// SessionDelete removes a session
func (sm *SessionManager) SessionDelete(sessionID string) {
	ctx := context.Background()
	if _, exists := sm.sessions[sessionID]; !exists {
		sm.logger.Warn(ctx, "Attempted to delete non-existent session", log.Fields{"sessionID": sessionID})
		return
	}
	delete(sm.sessions, sessionID)
	sm.logger.Info(ctx, "Session deleted", log.Fields{"sessionID": sessionID})
}

// SessionRun executes a command for a specific session
func (sm *SessionManager) SessionRun(sessionID string, cmd model.Command) (interface{}, error) {
	ctx := context.Background()

	session, exists := sm.SessionGet(sessionID)
	if !exists {
		sm.logger.Error(ctx, "Session not found", log.Fields{"sessionID": sessionID})
		return nil, errors.New("session not found")
	}

	// Log command in command log
	sm.logger.Command(ctx, "Command received", log.Fields{
		"sessionID": sessionID,
		"scope":     cmd.Scope,
		"operation": cmd.Operation,
		"args":      cmd.Args,
	})

	result := make(chan interface{})
	err := make(chan error)

	sm.commandQueue <- commandExecution{
		session: session,
		command: cmd,
		result:  result,
		err:     err,
	}

	select {
	case res := <-result:
		return res, nil
	case e := <-err:
		return nil, e
	}
}

// CommandRun dispatches a command to its scope and operation handler.
func (sm *SessionManager) CommandRun(session *model.Session, cmd model.Command) (interface{}, error) {
	ctx := context.Background()
	session.LastActivity = time.Now()

	scopeHandlers, ok := sm.commandHandlers[cmd.Scope]
	if !ok {
		sm.logger.Error(ctx, "Invalid command scope", log.Fields{"scope": cmd.Scope})
		return nil, fmt.Errorf("invalid command scope: %s", cmd.Scope)
	}

	handler, ok := scopeHandlers[cmd.Operation]
	if !ok {
		sm.logger.Error(ctx, "Invalid command operation", log.Fields{"scope": cmd.Scope, "operation": cmd.Operation})
		return nil, fmt.Errorf("invalid command operation: %s %s", cmd.Scope, cmd.Operation)
	}

	result, err := handler(sm, session, cmd)
	if err != nil {
		sm.logger.Error(ctx, "Command execution failed", log.Fields{"error": err})
	}
	return result, err
}

// commandExecutor processes commands from the queue
func (sm *SessionManager) commandExecutor() {
	ctx := context.Background()
	sm.logger.Info(ctx, "Starting command executor", nil)

	for cmd := range sm.commandQueue {
		result, err := sm.CommandRun(cmd.session, cmd.command)
		if err != nil {
			cmd.err <- err
		} else {
			cmd.result <- result
		}
	}
}

// startCleanupRoutine starts a goroutine that periodically cleans up inactive sessions
func (sm *SessionManager) startCleanupRoutine() {
	sm.cleanupTicker = time.NewTicker(defaultCleanupInterval)
	go func() {
		for {
			select {
			case <-sm.cleanupTicker.C:
				sm.cleanupInactiveSessions()
			case <-sm.done:
				sm.cleanupTicker.Stop()
				return
			}
		}
	}()
}

// StopCleanupRoutine stops the cleanup routine
func (sm *SessionManager) StopCleanupRoutine() {
	sm.logger.Info(context.Background(), "Stopping cleanup routine", nil)
	sm.done <- true
}

// cleanupInactiveSessions removes inactive sessions
func (sm *SessionManager) cleanupInactiveSessions() {
	ctx := context.Background()
	now := time.Now()
	for id, session := range sm.sessions {
		if now.Sub(session.LastActivity) > defaultSessionTimeout {
			sm.logger.Info(ctx, "Removing inactive session", log.Fields{"sessionID": id})
			sm.SessionDelete(id)
		}
	}
}

// generateSessionID creates a cryptographically secure random session ID
func generateSessionID() (string, error) {
	b := make([]byte, sessionIDLength)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

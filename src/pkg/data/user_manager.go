// Package data provides data management functionality for the Chapterforge
// application. This file contains operations related to user management.
package data

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"chapterforge/local-app/src/pkg/event"
	"chapterforge/local-app/src/pkg/log"
	"chapterforge/local-app/src/pkg/model"
	"chapterforge/local-app/src/pkg/storage"
)

// UserOperations defines the interface for user-related operations
type UserOperations interface {
	UserAdd(username, password string, active bool) (int, error)
	UserAuthenticate(username, password string) (bool, error)
	UserGet(userInfo model.UserInfo, userFilter model.UserFilter) ([]*model.User, error)
	UserPasswordUpdate(user *model.User, newPassword string) error
	UserDelete(user *model.User) error
}

// UserManager handles all user-related operations.
type UserManager struct {
	userStore    storage.UserStore
	eventManager *event.EventManager
	logger       *log.Logger
}

// NewUserManager creates a new UserManager instance.
func NewUserManager(userStore storage.UserStore, eventManager *event.EventManager, logger *log.Logger) (*UserManager, error) {
	ctx := context.Background()
	logger.Info(ctx, "Creating new UserManager", nil)

	if userStore == nil {
		logger.Error(ctx, "UserStore not initialized", nil)
		return nil, fmt.Errorf("userStore not initialized")
	}
	if eventManager == nil {
		logger.Error(ctx, "EventManager not initialized", nil)
		return nil, fmt.Errorf("eventManager not initialized")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger not initialized")
	}

	um := &UserManager{
		userStore:    userStore,
		eventManager: eventManager,
		logger:       logger,
	}

	logger.Info(ctx, "UserManager created successfully", nil)
	return um, nil
}

// UserAdd creates a new user with the given username and password. The
// password is stored as a bcrypt hash; an empty password is allowed for
// local single-user setups.
func (um *UserManager) UserAdd(username, password string, active bool) (int, error) {
	ctx := context.Background()
	um.logger.Info(ctx, "Adding new user", log.Fields{"username": username})

	if username == "" {
		return 0, &ValidationError{Field: "username"}
	}

	// Check if the user already exists
	existingUsers, err := um.UserGet(model.UserInfo{Username: username}, model.UserFilter{Username: true})
	if err != nil {
		um.logger.Error(ctx, "Error checking user existence", log.Fields{"error": err, "username": username})
		return 0, fmt.Errorf("error checking user existence: %w", err)
	}
	if len(existingUsers) > 0 {
		um.logger.Warn(ctx, "User already exists", log.Fields{"username": username})
		return 0, fmt.Errorf("user '%s' already exists", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		um.logger.Error(ctx, "Failed to hash password", log.Fields{"error": err, "username": username})
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := um.userStore.UserAdd(model.UserInfo{Username: username, PasswordHash: hash, Active: active})
	if err != nil {
		um.logger.Error(ctx, "Failed to create user", log.Fields{"error": err, "username": username})
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	um.logger.Info(ctx, "User added successfully", log.Fields{"userID": userID, "username": username})
	return userID, nil
}

// UserAuthenticate verifies a user's credentials.
func (um *UserManager) UserAuthenticate(username, password string) (bool, error) {
	ctx := context.Background()
	um.logger.Info(ctx, "Authenticating user", log.Fields{"username": username})

	users, err := um.UserGet(model.UserInfo{Username: username}, model.UserFilter{Username: true})
	if err != nil {
		um.logger.Error(ctx, "Error retrieving user", log.Fields{"error": err, "username": username})
		return false, fmt.Errorf("error retrieving user: %w", err)
	}
	if len(users) == 0 {
		um.logger.Warn(ctx, "User not found", log.Fields{"username": username})
		return false, nil
	}

	err = bcrypt.CompareHashAndPassword(users[0].PasswordHash, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		um.logger.Error(ctx, "Failed to compare password hash", log.Fields{"error": err, "username": username})
		return false, fmt.Errorf("failed to compare password hash: %w", err)
	}
	return true, nil
}

// UserGet retrieves users based on the provided info and filter.
func (um *UserManager) UserGet(userInfo model.UserInfo, userFilter model.UserFilter) ([]*model.User, error) {
	users, err := um.userStore.UserGet(userInfo, userFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// UserPasswordUpdate replaces a user's password hash.
func (um *UserManager) UserPasswordUpdate(user *model.User, newPassword string) error {
	ctx := context.Background()
	um.logger.Info(ctx, "Updating user password", log.Fields{"username": user.Username})

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = um.userStore.UserUpdate(user, model.UserInfo{PasswordHash: hash}, model.UserFilter{PasswordHash: true})
	if err != nil {
		um.logger.Error(ctx, "Failed to update user", log.Fields{"error": err, "username": user.Username})
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UserDelete removes a user account. Subscribers of the UserDeleted event
// clean up the user's outline and blob payloads.
func (um *UserManager) UserDelete(user *model.User) error {
	ctx := context.Background()
	um.logger.Info(ctx, "Deleting user", log.Fields{"username": user.Username})

	if err := um.userStore.UserDelete(user); err != nil {
		um.logger.Error(ctx, "Failed to delete user", log.Fields{"error": err, "username": user.Username})
		return fmt.Errorf("failed to delete user: %w", err)
	}

	um.eventManager.Publish(event.Event{Type: event.UserDeleted, Data: user.Username})
	um.logger.Info(ctx, "User deleted successfully", log.Fields{"username": user.Username})
	return nil
}

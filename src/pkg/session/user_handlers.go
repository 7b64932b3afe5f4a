package session

import (
	"errors"
	"fmt"

	"chapterforge/local-app/src/pkg/model"
)

// initUserCommandHandlers returns the user command handlers
func initUserCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"add":      handleUserAdd,
		"select":   handleUserSelect,
		"password": handleUserPassword,
		"delete":   handleUserDelete,
	}
}

// handleUserAdd handles the user add command
func handleUserAdd(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if len(cmd.Args) < 2 {
		return nil, errors.New("usage: user add <username> <password>")
	}
	username, password := cmd.Args[0], cmd.Args[1]

	if _, err := sm.dataManager.UserManager.UserAdd(username, password, true); err != nil {
		return nil, err
	}
	return fmt.Sprintf("User '%s' created", username), nil
}

// handleUserSelect handles the user select command: authenticates the user
// and loads their outline into the session.
func handleUserSelect(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if len(cmd.Args) == 0 {
		session.User = nil
		session.Outline = nil
		return "User deselected", nil
	}
	if len(cmd.Args) < 2 {
		return nil, errors.New("usage: user select <username> <password>")
	}
	username, password := cmd.Args[0], cmd.Args[1]

	authenticated, err := sm.dataManager.UserManager.UserAuthenticate(username, password)
	if err != nil {
		return nil, err
	}
	if !authenticated {
		return nil, errors.New("authentication failed")
	}

	users, err := sm.dataManager.UserManager.UserGet(model.UserInfo{Username: username}, model.UserFilter{Username: true})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user not found: %s", username)
	}

	outline, err := sm.dataManager.OutlineManager.OutlineLoad(username)
	if err != nil {
		return nil, err
	}

	session.User = users[0]
	session.Outline = outline
	return fmt.Sprintf("Selected user: %s", username), nil
}

// handleUserPassword handles the user password command
func handleUserPassword(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireUser(session); err != nil {
		return nil, err
	}
	if len(cmd.Args) < 1 {
		return nil, errors.New("usage: user password <new-password>")
	}

	if err := sm.dataManager.UserManager.UserPasswordUpdate(session.User, cmd.Args[0]); err != nil {
		return nil, err
	}
	return "Password updated", nil
}

// handleUserDelete handles the user delete command. The user's outline and
// all of its blob payloads are cleaned up through the user-deleted event.
func handleUserDelete(sm *SessionManager, session *model.Session, cmd model.Command) (interface{}, error) {
	if err := requireUser(session); err != nil {
		return nil, err
	}
	username := session.User.Username

	if err := sm.dataManager.UserManager.UserDelete(session.User); err != nil {
		return nil, err
	}

	session.User = nil
	session.Outline = nil
	return fmt.Sprintf("User '%s' deleted", username), nil
}

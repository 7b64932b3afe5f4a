package model

import "time"

// User represents an account that owns one outline document.
type User struct {
	ID           int
	Username     string
	PasswordHash []byte
	Active       bool
	Created      time.Time
	Updated      time.Time
}

// UserInfo contains basic information about a user.
type UserInfo struct {
	ID           int
	Username     string
	PasswordHash []byte
	Active       bool
}

// UserFilter defines the options for filtering users.
type UserFilter struct {
	ID           bool
	Username     bool
	PasswordHash bool
	Active       bool
}

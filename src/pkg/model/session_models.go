package model

import "time"

// Session holds the state of one interactive connection: the selected user
// and their loaded outline document.
type Session struct {
	ID           string
	User         *User
	Outline      *Outline
	LastActivity time.Time
}

package core

import "github.com/famo7/meetopia-api/internal/domain"

// SessionID identifies one live connection. A user with two tabs has two.
type SessionID string

// Session is the presence state of one connection inside a meeting room.
// No transport here: the adapter keeps the connection handle.
type Session struct {
	ID    SessionID
	User  domain.User
	Color string
	Room  domain.MeetingID
}

// Descriptor is a read-only view of a session for the wire (no transport fields).
type Descriptor struct {
	SocketID SessionID     `json:"socketId"`
	UserID   domain.UserID `json:"userId"`
	UserName string        `json:"userName"`
	Color    string        `json:"color"`
}

func (s Session) Descriptor() Descriptor {
	return Descriptor{
		SocketID: s.ID,
		UserID:   s.User.ID,
		UserName: s.User.Username,
		Color:    s.Color,
	}
}

// Principal is the identity proven at connection time, when auth is enabled.
type Principal struct {
	UserID domain.UserID
	Email  string
}

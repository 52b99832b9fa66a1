// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strconv"
	"strings"
)

const MaxUsernameLen = 64

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrInvalidUserID   = errors.New("invalid user id")
)

type UserID int64

func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }

// Channel is the name of the user's personal notification channel.
func (id UserID) Channel() string { return "user-" + id.String() }

type User struct {
	ID       UserID `json:"userId"`
	Username string `json:"userName"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(id UserID, username string) (*User, error) {
	if id <= 0 {
		return nil, ErrInvalidUserID
	}
	u := &User{ID: id}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	u.Username = username
	return nil
}

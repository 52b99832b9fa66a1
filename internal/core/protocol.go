package core

import (
	"encoding/json"

	"github.com/famo7/meetopia-api/internal/domain"
)

type EventType string

// Inbound events.
const (
	EventJoinMeeting  EventType = "join-meeting"
	EventLeaveMeeting EventType = "leave-meeting"
	EventUpdateNotes  EventType = "update-notes"
	EventSaveNotes    EventType = "save-notes"
	EventPing         EventType = "ping"
)

// Outbound events.
const (
	EventCurrentUsers EventType = "current-users"
	EventUserJoined   EventType = "user-joined"
	EventUserLeft     EventType = "user-left"
	EventNotesUpdated EventType = "notes-updated"
	EventNotesSaved   EventType = "notes-saved"
	EventError        EventType = "error"
	EventPong         EventType = "pong"
)

// Reserved reports whether t is one of the protocol's own events. Those must
// not be pushed through the notification channel.
func (t EventType) Reserved() bool {
	switch t {
	case EventJoinMeeting, EventLeaveMeeting, EventUpdateNotes, EventSaveNotes, EventPing,
		EventCurrentUsers, EventUserJoined, EventUserLeft, EventNotesUpdated, EventNotesSaved, EventError, EventPong:
		return true
	}
	return false
}

// Envelope is the frame layout in both directions.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	MeetingID domain.MeetingID `json:"meetingId" validate:"required"`
	UserID    domain.UserID    `json:"userId" validate:"required,gt=0"`
	UserName  string           `json:"userName" validate:"required,max=64"`
}

type LeavePayload struct {
	MeetingID domain.MeetingID `json:"meetingId" validate:"required"`
	UserID    domain.UserID    `json:"userId"`
}

type UpdateNotesPayload struct {
	MeetingID domain.MeetingID `json:"meetingId" validate:"required"`
	UserID    domain.UserID    `json:"userId"`
	Content   string           `json:"content"`
}

type SaveNotesPayload struct {
	MeetingID domain.MeetingID `json:"meetingId" validate:"required"`
	Content   string           `json:"content"`
}

type NotesUpdated struct {
	UserID   domain.UserID `json:"userId"`
	UserName string        `json:"userName"`
	Content  string        `json:"content"`
}

type NotesSaved struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// Encode marshals an outbound event into a frame.
func Encode(t EventType, payload any) (Frame, error) {
	env := struct {
		Type    EventType `json:"type"`
		Payload any       `json:"payload,omitempty"`
	}{Type: t, Payload: payload}
	return json.Marshal(env)
}

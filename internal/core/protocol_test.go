package core

import (
	"encoding/json"
	"testing"

	"github.com/famo7/meetopia-api/internal/domain"
)

func TestEncodeEnvelope(t *testing.T) {
	f, err := Encode(EventNotesUpdated, NotesUpdated{UserID: 20, UserName: "Bob", Content: "draft"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(f, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != EventNotesUpdated {
		t.Fatalf("type = %q, want %q", env.Type, EventNotesUpdated)
	}
	var p NotesUpdated
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.UserID != 20 || p.Content != "draft" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestEncodeEmptyArrayKeepsPayload(t *testing.T) {
	f, err := Encode(EventCurrentUsers, []Descriptor{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got, want := string(f), `{"type":"current-users","payload":[]}`; got != want {
		t.Fatalf("frame = %s, want %s", got, want)
	}
}

func TestSessionDescriptor(t *testing.T) {
	s := Session{ID: "s1", User: domain.User{ID: 10, Username: "Alice"}, Color: "#3b82f6", Room: "1"}
	d := s.Descriptor()
	if d.SocketID != "s1" || d.UserID != 10 || d.UserName != "Alice" || d.Color != "#3b82f6" {
		t.Fatalf("descriptor = %+v", d)
	}
}

func TestReservedEventTypes(t *testing.T) {
	for _, et := range []EventType{EventJoinMeeting, EventNotesUpdated, EventUserLeft, EventError, EventPong} {
		if !et.Reserved() {
			t.Fatalf("%q should be reserved", et)
		}
	}
	if EventType("reminder").Reserved() {
		t.Fatal("custom events must not be reserved")
	}
}

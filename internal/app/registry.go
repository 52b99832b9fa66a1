package app

import (
	"sort"

	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/domain"
	"github.com/rs/zerolog/log"
)

type RoomInfo struct {
	MeetingID   domain.MeetingID `json:"meetingId"`
	MemberCount int              `json:"memberCount"`
}

// Registry is the authoritative map from meeting room to connected sessions.
//
// It holds no lock: the orchestrator loop is the only goroutine that touches
// it, and every read hands out copies.
type Registry struct {
	rooms map[domain.MeetingID]map[core.SessionID]core.Session
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.MeetingID]map[core.SessionID]core.Session)}
}

// Add inserts the session into the room, creating the room on first use.
// Adding the same session ID twice replaces the stored entry.
func (r *Registry) Add(meetingID domain.MeetingID, s core.Session) {
	room, ok := r.rooms[meetingID]
	if !ok {
		room = make(map[core.SessionID]core.Session)
		r.rooms[meetingID] = room
		log.Debug().Str("module", "app.registry").Str("meeting", string(meetingID)).Msg("room created")
	}
	s.Room = meetingID
	room[s.ID] = s
	log.Debug().Str("module", "app.registry").Str("sid", string(s.ID)).Str("meeting", string(meetingID)).Int("size", len(room)).Msg("session added")
}

// Remove drops the session and deletes the room once it is empty.
// Unknown rooms or sessions are a no-op.
func (r *Registry) Remove(meetingID domain.MeetingID, sid core.SessionID) (core.Session, bool) {
	room, ok := r.rooms[meetingID]
	if !ok {
		return core.Session{}, false
	}
	s, ok := room[sid]
	if !ok {
		return core.Session{}, false
	}
	delete(room, sid)
	if len(room) == 0 {
		delete(r.rooms, meetingID)
		log.Debug().Str("module", "app.registry").Str("meeting", string(meetingID)).Msg("removed empty room")
	}
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("meeting", string(meetingID)).Msg("session removed")
	return s, true
}

func (r *Registry) Get(meetingID domain.MeetingID, sid core.SessionID) (core.Session, bool) {
	s, ok := r.rooms[meetingID][sid]
	return s, ok
}

// List returns a snapshot of the room, ordered by session ID.
func (r *Registry) List(meetingID domain.MeetingID) []core.Session {
	room := r.rooms[meetingID]
	out := make([]core.Session, 0, len(room))
	for _, s := range room {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Size(meetingID domain.MeetingID) int {
	return len(r.rooms[meetingID])
}

func (r *Registry) Has(meetingID domain.MeetingID) bool {
	_, ok := r.rooms[meetingID]
	return ok
}

func (r *Registry) Rooms() []RoomInfo {
	out := make([]RoomInfo, 0, len(r.rooms))
	for id, room := range r.rooms {
		out = append(out, RoomInfo{MeetingID: id, MemberCount: len(room)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MeetingID < out[j].MeetingID })
	return out
}

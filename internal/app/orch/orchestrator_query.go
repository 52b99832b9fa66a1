package orch

import (
	"context"

	"github.com/famo7/meetopia-api/internal/app"
	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/domain"
	"github.com/rs/zerolog/log"
)

// NotifyUser delivers an event to every connection enrolled in the user's
// personal channel and reports how many got it.
func (o *Orchestrator) NotifyUser(ctx context.Context, uid domain.UserID, t core.EventType, payload any) (int, error) {
	frame, err := core.Encode(t, payload)
	if err != nil {
		return 0, err
	}
	var n int
	err = o.do(ctx, func() {
		for sid := range o.channels[uid] {
			cs, ok := o.conns[sid]
			if !ok {
				continue
			}
			if o.deliver(sid, cs, frame) {
				n++
			}
		}
		log.Debug().Str("module", "orch").Str("channel", uid.Channel()).Str("type", string(t)).Int("sent_to", n).Msg("user notified")
	})
	return n, err
}

func (o *Orchestrator) RoomSize(ctx context.Context, meetingID domain.MeetingID) (int, error) {
	var n int
	err := o.do(ctx, func() { n = o.Registry.Size(meetingID) })
	return n, err
}

func (o *Orchestrator) Sessions(ctx context.Context, meetingID domain.MeetingID) ([]core.Descriptor, error) {
	var out []core.Descriptor
	err := o.do(ctx, func() {
		list := o.Registry.List(meetingID)
		out = make([]core.Descriptor, 0, len(list))
		for _, s := range list {
			out = append(out, s.Descriptor())
		}
	})
	return out, err
}

func (o *Orchestrator) Rooms(ctx context.Context) ([]app.RoomInfo, error) {
	var out []app.RoomInfo
	err := o.do(ctx, func() { out = o.Registry.Rooms() })
	return out, err
}

// Connections reports how many connections the loop tracks.
func (o *Orchestrator) Connections(ctx context.Context) (int, error) {
	var n int
	err := o.do(ctx, func() { n = len(o.conns) })
	return n, err
}

// Kick closes a connection that is in the meeting and cleans up its room
// membership right away. It reports whether sid was found there.
func (o *Orchestrator) Kick(ctx context.Context, meetingID domain.MeetingID, sid core.SessionID) (bool, error) {
	var found bool
	err := o.do(ctx, func() {
		if _, ok := o.Registry.Get(meetingID, sid); !ok {
			return
		}
		cs, ok := o.conns[sid]
		if !ok {
			return
		}
		found = true
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(meetingID)).Msg("kicking connection")
		cs.conn.Close()
		o.handleDisconnect(sid)
	})
	return found, err
}

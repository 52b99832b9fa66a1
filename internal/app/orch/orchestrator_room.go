package orch

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/famo7/meetopia-api/internal/app"
	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	msgAccessDenied = "You do not have access to this meeting"
	msgJoinFailed   = "Failed to join meeting"
	msgRateLimited  = "Too many join attempts, try again later"
)

func (o *Orchestrator) handleJoin(sid core.SessionID, cs *connState, raw json.RawMessage) {
	var p core.JoinPayload
	if err := decode(raw, &p); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("bad join payload")
		o.sendError(sid, msgInvalidPayload)
		return
	}
	user, err := domain.NewUser(p.UserID, p.UserName)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("bad join user")
		o.sendError(sid, msgInvalidPayload)
		return
	}
	if cs.principal != nil && cs.principal.UserID != user.ID {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Int64("user", int64(user.ID)).Int64("principal", int64(cs.principal.UserID)).Msg("join for another user rejected")
		o.sendError(sid, msgAccessDenied)
		return
	}
	if !o.Limiter.Allow(user.ID) {
		log.Warn().Err(app.ErrRateLimited).Str("module", "orch").Int64("user", int64(user.ID)).Msg("join rate limited")
		o.sendError(sid, msgRateLimited)
		return
	}

	meetingID := p.MeetingID
	u := *user
	o.goAsync(func(ctx context.Context) func() {
		err := callSafely(func() error { return o.Guard.Check(ctx, meetingID, u.ID) })
		return func() { o.completeJoin(sid, cs, meetingID, u, err) }
	})
}

// completeJoin runs on the loop once the access check returned. The
// connection may have gone, or joined elsewhere, in the meantime.
func (o *Orchestrator) completeJoin(sid core.SessionID, cs *connState, meetingID domain.MeetingID, user domain.User, err error) {
	if cur, ok := o.conns[sid]; !ok || cur != cs {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("join result for closed connection dropped")
		return
	}
	if err != nil {
		if errors.Is(err, app.ErrAccessDenied) {
			log.Info().Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(meetingID)).Int64("user", int64(user.ID)).Msg("access denied")
			o.sendError(sid, msgAccessDenied)
			return
		}
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(meetingID)).Msg("access check failed")
		o.sendError(sid, msgJoinFailed)
		return
	}

	if cs.room != "" {
		from := cs.room
		o.vacate(sid, cs, from)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_meeting", string(from)).Msg("left previous room")
	}

	sess := core.Session{ID: sid, User: user, Color: o.Colors()}
	o.Registry.Add(meetingID, sess)
	cs.room = meetingID
	o.enroll(cs, sid, user.ID)

	others := make([]core.Descriptor, 0, o.Registry.Size(meetingID))
	for _, s := range o.Registry.List(meetingID) {
		if s.ID != sid {
			others = append(others, s.Descriptor())
		}
	}
	o.send(sid, core.EventCurrentUsers, others)
	o.broadcast(meetingID, sid, core.EventUserJoined, sess.Descriptor())

	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(meetingID)).Int64("user", int64(user.ID)).Int("size", o.Registry.Size(meetingID)).Msg("joined")
}

func (o *Orchestrator) handleLeave(sid core.SessionID, cs *connState, raw json.RawMessage) {
	var p core.LeavePayload
	if err := decode(raw, &p); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("bad leave payload")
		o.sendError(sid, msgInvalidPayload)
		return
	}
	if !o.vacate(sid, cs, p.MeetingID) {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(p.MeetingID)).Msg("leave for untracked session ignored")
	}
}

func (o *Orchestrator) handleDisconnect(sid core.SessionID) {
	cs, ok := o.conns[sid]
	if !ok {
		return
	}
	if cs.room != "" {
		o.vacate(sid, cs, cs.room)
	}
	o.unenroll(sid, cs.userID)
	delete(o.conns, sid)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected")
}

// vacate removes sid from the room and tells the remaining occupants.
func (o *Orchestrator) vacate(sid core.SessionID, cs *connState, meetingID domain.MeetingID) bool {
	sess, ok := o.Registry.Remove(meetingID, sid)
	if !ok {
		return false
	}
	if cs.room == meetingID {
		cs.room = ""
	}
	o.broadcast(meetingID, sid, core.EventUserLeft, sess.Descriptor())
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(meetingID)).Int("size", o.Registry.Size(meetingID)).Msg("left")
	return true
}

// enroll binds the connection to the user's personal notification channel.
func (o *Orchestrator) enroll(cs *connState, sid core.SessionID, uid domain.UserID) {
	if cs.userID != 0 && cs.userID != uid {
		o.unenroll(sid, cs.userID)
	}
	cs.userID = uid
	set, ok := o.channels[uid]
	if !ok {
		set = make(map[core.SessionID]struct{})
		o.channels[uid] = set
	}
	set[sid] = struct{}{}
}

func (o *Orchestrator) unenroll(sid core.SessionID, uid domain.UserID) {
	set, ok := o.channels[uid]
	if !ok {
		return
	}
	delete(set, sid)
	if len(set) == 0 {
		delete(o.channels, uid)
	}
}

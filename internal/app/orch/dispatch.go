package orch

import (
	"encoding/json"
	"errors"

	"github.com/famo7/meetopia-api/internal/core"
	"github.com/rs/zerolog/log"
)

const (
	msgInvalidPayload = "Invalid payload"
	msgUnknownEvent   = "Unknown event"
)

var errEmptyPayload = errors.New("empty payload")

type handlerFunc func(o *Orchestrator, sid core.SessionID, cs *connState, payload json.RawMessage)

// handlers is the inbound event table. Disconnect is not here: it comes from
// the transport, not from the client.
var handlers = map[core.EventType]handlerFunc{
	core.EventJoinMeeting:  (*Orchestrator).handleJoin,
	core.EventLeaveMeeting: (*Orchestrator).handleLeave,
	core.EventUpdateNotes:  (*Orchestrator).handleUpdateNotes,
	core.EventSaveNotes:    (*Orchestrator).handleSaveNotes,
}

func (o *Orchestrator) dispatch(sid core.SessionID, env core.Envelope) {
	cs, ok := o.conns[sid]
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("type", string(env.Type)).Msg("event from unknown connection ignored")
		return
	}
	h, ok := handlers[env.Type]
	if !ok {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("type", string(env.Type)).Msg("unknown event")
		o.sendError(sid, msgUnknownEvent)
		return
	}
	h(o, sid, cs, env.Payload)
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errEmptyPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return err
	}
	return validate.Struct(v)
}

package orch

import (
	"context"
	"encoding/json"

	"github.com/famo7/meetopia-api/internal/app"
	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	msgNotesSaved     = "Notes saved successfully"
	msgNotesSaveError = "Failed to save notes"
	msgNotJoined      = "Not joined to this meeting"
)

// handleUpdateNotes relays an edit to the rest of the room. Nothing is
// persisted and the sender gets no echo.
func (o *Orchestrator) handleUpdateNotes(sid core.SessionID, _ *connState, raw json.RawMessage) {
	var p core.UpdateNotesPayload
	if err := decode(raw, &p); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("bad update-notes payload")
		o.sendError(sid, msgInvalidPayload)
		return
	}
	sess, ok := o.Registry.Get(p.MeetingID, sid)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(p.MeetingID)).Msg("update-notes from untracked session ignored")
		return
	}
	n := o.broadcast(p.MeetingID, sid, core.EventNotesUpdated, core.NotesUpdated{
		UserID:   sess.User.ID,
		UserName: sess.User.Username,
		Content:  p.Content,
	})
	log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(p.MeetingID)).Int("chars", len(p.Content)).Int("sent_to", n).Msg("notes updated")
}

func (o *Orchestrator) handleSaveNotes(sid core.SessionID, cs *connState, raw json.RawMessage) {
	var p core.SaveNotesPayload
	if err := decode(raw, &p); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("bad save-notes payload")
		o.send(sid, core.EventNotesSaved, core.NotesSaved{Success: false, Message: msgInvalidPayload})
		return
	}
	if _, ok := o.Registry.Get(p.MeetingID, sid); !ok {
		log.Warn().Err(app.ErrNotJoined).Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(p.MeetingID)).Msg("save rejected")
		o.send(sid, core.EventNotesSaved, core.NotesSaved{Success: false, Message: msgNotJoined})
		return
	}

	meetingID, content := p.MeetingID, p.Content
	o.goAsync(func(ctx context.Context) func() {
		err := callSafely(func() error { return o.Notes.Save(ctx, meetingID, content) })
		return func() { o.completeSave(sid, cs, meetingID, len(content), err) }
	})
}

func (o *Orchestrator) completeSave(sid core.SessionID, cs *connState, meetingID domain.MeetingID, chars int, err error) {
	if cur, ok := o.conns[sid]; !ok || cur != cs {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("save result for closed connection dropped")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(meetingID)).Msg("save notes")
		o.send(sid, core.EventNotesSaved, core.NotesSaved{Success: false, Message: msgNotesSaveError})
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("meeting", string(meetingID)).Int("chars", chars).Msg("notes saved")
	o.send(sid, core.EventNotesSaved, core.NotesSaved{Success: true, Message: msgNotesSaved})
}

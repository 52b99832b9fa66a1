package app

import (
	"context"
	"fmt"

	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/domain"
)

// NotesPersistence saves meeting notes. Concurrent saves of one meeting are
// last-writer-wins; saving the same content twice leaves the same state.
type NotesPersistence struct {
	store core.NotesStore
}

func NewNotesPersistence(store core.NotesStore) *NotesPersistence {
	return &NotesPersistence{store: store}
}

func (p *NotesPersistence) Save(ctx context.Context, meetingID domain.MeetingID, content string) error {
	if err := p.store.UpsertMeetingNotes(ctx, meetingID, content); err != nil {
		return fmt.Errorf("%w: meeting %s: %w", ErrPersistence, meetingID, err)
	}
	return nil
}

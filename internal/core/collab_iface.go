package core

import (
	"context"
	"errors"

	"github.com/famo7/meetopia-api/internal/domain"
)

// ErrMeetingNotFound is wrapped by stores when a meeting ID names nothing.
var ErrMeetingNotFound = errors.New("meeting not found")

//go:generate mockgen -source=collab_iface.go -destination=mocks/mock_collab_iface.go -package=mocks

// AccessChecker answers whether a user may enter a meeting: the creator or
// a registered participant.
type AccessChecker interface {
	UserHasMeetingAccess(ctx context.Context, meetingID domain.MeetingID, userID domain.UserID) (bool, error)
}

// NotesStore durably upserts the notes document of a meeting.
type NotesStore interface {
	UpsertMeetingNotes(ctx context.Context, meetingID domain.MeetingID, content string) error
}

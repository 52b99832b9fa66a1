package app

import (
	"context"
	"fmt"

	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/domain"
)

// AccessGuard wraps the meeting access collaborator. It keeps no state.
type AccessGuard struct {
	checker core.AccessChecker
}

func NewAccessGuard(checker core.AccessChecker) *AccessGuard {
	return &AccessGuard{checker: checker}
}

// Check returns nil when the user may join, ErrAccessDenied when not, and an
// error wrapping ErrAccessCheck when the answer is unknown.
func (g *AccessGuard) Check(ctx context.Context, meetingID domain.MeetingID, userID domain.UserID) error {
	ok, err := g.checker.UserHasMeetingAccess(ctx, meetingID, userID)
	if err != nil {
		return fmt.Errorf("%w: meeting %s user %d: %w", ErrAccessCheck, meetingID, userID, err)
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

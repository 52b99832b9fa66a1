// Package sqlite implements the meeting access and notes collaborators on
// SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/famo7/meetopia-api/internal/adapters/storage/sqlite/migrations"
	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/domain"
	"github.com/rs/zerolog/log"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	_ core.AccessChecker = (*Store)(nil)
	_ core.NotesStore    = (*Store)(nil)
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info().Str("module", "storage.sqlite").Str("path", path).Msg("database ready")
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UserHasMeetingAccess reports whether the user created the meeting or is
// one of its participants. Meeting IDs that are not positive integers name
// no meeting.
func (s *Store) UserHasMeetingAccess(ctx context.Context, meetingID domain.MeetingID, userID domain.UserID) (bool, error) {
	id, err := meetingID.Int64()
	if err != nil {
		log.Debug().Err(err).Str("module", "storage.sqlite").Str("meeting", string(meetingID)).Msg("access check for malformed meeting id")
		return false, nil
	}
	var found int
	err = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM meetings m
		 WHERE m.id = ?
		   AND (m.creator_id = ?
		        OR EXISTS (SELECT 1 FROM participants p WHERE p.meeting_id = m.id AND p.user_id = ?))`,
		id, int64(userID), int64(userID),
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query meeting access: %w", err)
	}
	return true, nil
}

// UpsertMeetingNotes stores content as the meeting's notes, replacing what
// was there.
func (s *Store) UpsertMeetingNotes(ctx context.Context, meetingID domain.MeetingID, content string) error {
	id, err := meetingID.Int64()
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrMeetingNotFound, meetingID)
	}
	now := toMillis(s.now())
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meeting_notes (meeting_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(meeting_id) DO UPDATE SET
		   content = excluded.content,
		   updated_at = excluded.updated_at`,
		id, content, now, now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", core.ErrMeetingNotFound, meetingID)
		}
		return fmt.Errorf("upsert meeting notes: %w", err)
	}
	return nil
}

// MeetingNotes returns the stored notes for the meeting.
func (s *Store) MeetingNotes(ctx context.Context, meetingID domain.MeetingID) (string, time.Time, error) {
	id, err := meetingID.Int64()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %s", core.ErrMeetingNotFound, meetingID)
	}
	var (
		content   string
		updatedAt int64
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT content, updated_at FROM meeting_notes WHERE meeting_id = ?`, id,
	).Scan(&content, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, fmt.Errorf("%w: %s", core.ErrMeetingNotFound, meetingID)
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("query meeting notes: %w", err)
	}
	return content, time.UnixMilli(updatedAt).UTC(), nil
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/famo7/meetopia-api/internal/adapters/signal"
	"github.com/famo7/meetopia-api/internal/app"
	"github.com/famo7/meetopia-api/internal/app/orch"
	"github.com/famo7/meetopia-api/internal/config"
	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// NotesReader exposes saved notes. The SQLite store implements it.
type NotesReader interface {
	MeetingNotes(ctx context.Context, meetingID domain.MeetingID) (string, time.Time, error)
}

type notifyRequest struct {
	Event   core.EventType `json:"event" binding:"required"`
	Payload any            `json:"payload"`
}

// SetupRouter wires the HTTP surface. verifier may be nil, which leaves /api
// open and skips per-meeting access checks.
func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, guard *app.AccessGuard, notes NotesReader, verifier *JWTVerifier) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		n, err := o.Connections(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "stopping"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": n})
	})

	log.Info().Str("module", "adapters.http").Bool("auth", verifier != nil).Msg("router setup")

	api := r.Group("/api", BearerAuth(verifier))
	meeting := MeetingAccess(guard)

	// GET /api/rooms: rooms the caller may enter, with occupant counts
	api.GET("/rooms", func(c *gin.Context) {
		rooms, err := o.Rooms(c.Request.Context())
		if err != nil {
			abortStopped(c, err)
			return
		}
		if p := PrincipalFrom(c); p != nil {
			visible := rooms[:0]
			for _, room := range rooms {
				if err := guard.Check(c.Request.Context(), room.MeetingID, p.UserID); err == nil {
					visible = append(visible, room)
				} else if !errors.Is(err, app.ErrAccessDenied) {
					log.Error().Err(err).Str("module", "adapters.http").Str("meeting", string(room.MeetingID)).Msg("room listing access check")
				}
			}
			rooms = visible
		}
		c.JSON(http.StatusOK, gin.H{"rooms": rooms})
	})

	// GET /api/rooms/:meetingId: who is in the room
	api.GET("/rooms/:meetingId", meeting, func(c *gin.Context) {
		id := domain.MeetingID(c.Param("meetingId"))
		sessions, err := o.Sessions(c.Request.Context(), id)
		if err != nil {
			abortStopped(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"meetingId":   id,
			"memberCount": len(sessions),
			"members":     sessions,
		})
	})

	// DELETE /api/rooms/:meetingId/sessions/:socketId: kick a connection out of the room
	api.DELETE("/rooms/:meetingId/sessions/:socketId", meeting, func(c *gin.Context) {
		id := domain.MeetingID(c.Param("meetingId"))
		sid := core.SessionID(c.Param("socketId"))
		ok, err := o.Kick(c.Request.Context(), id, sid)
		if err != nil {
			abortStopped(c, err)
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		c.Status(http.StatusNoContent)
	})

	// GET /api/meetings/:meetingId/notes: last saved notes
	api.GET("/meetings/:meetingId/notes", meeting, func(c *gin.Context) {
		id := domain.MeetingID(c.Param("meetingId"))
		content, updatedAt, err := notes.MeetingNotes(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrMeetingNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no notes for meeting"})
				return
			}
			log.Error().Err(err).Str("module", "adapters.http").Str("meeting", string(id)).Msg("read notes")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read notes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"meetingId": id, "content": content, "updatedAt": updatedAt})
	})

	// POST /api/users/:userId/notify: push an event to the caller's own connections
	api.POST("/users/:userId/notify", func(c *gin.Context) {
		uid, err := strconv.ParseInt(c.Param("userId"), 10, 64)
		if err != nil || uid <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		if p := PrincipalFrom(c); p != nil && p.UserID != domain.UserID(uid) {
			log.Warn().Str("module", "adapters.http").Int64("user", uid).Int64("principal", int64(p.UserID)).Msg("notify for another user rejected")
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot notify another user"})
			return
		}
		var req notifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid event"})
			return
		}
		if req.Event.Reserved() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reserved event type"})
			return
		}
		n, err := o.NotifyUser(c.Request.Context(), domain.UserID(uid), req.Event, req.Payload)
		if err != nil {
			abortStopped(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"delivered": n})
	})

	ctl := signal.NewSignalWSController(o, cfg)
	api.GET("/ws", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c, PrincipalFrom(c))
	})

	return r
}

// MeetingAccess lets the request through only when the authenticated caller
// created or participates in :meetingId. Without a principal (auth off) it
// passes everything.
func MeetingAccess(guard *app.AccessGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			c.Next()
			return
		}
		id := domain.MeetingID(c.Param("meetingId"))
		err := guard.Check(c.Request.Context(), id, p.UserID)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, app.ErrAccessDenied):
			log.Warn().Str("module", "adapters.http").Str("meeting", string(id)).Int64("user", int64(p.UserID)).Str("path", c.FullPath()).Msg("meeting access denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You do not have access to this meeting"})
		default:
			log.Error().Err(err).Str("module", "adapters.http").Str("meeting", string(id)).Msg("meeting access check")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "failed to verify meeting access"})
		}
	}
}

func abortStopped(c *gin.Context, err error) {
	log.Warn().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("orchestrator unavailable")
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
}

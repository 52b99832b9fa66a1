package signal

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/famo7/meetopia-api/internal/app/orch"
	"github.com/famo7/meetopia-api/internal/config"
	"github.com/famo7/meetopia-api/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// SignalWSController upgrades websocket requests and pumps envelopes between
// the socket and the orchestrator.
type SignalWSController struct {
	Orch *orch.Orchestrator

	cfg      *config.Config
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	ctl := &SignalWSController{Orch: o, cfg: cfg}
	ctl.upgrader = websocket.Upgrader{CheckOrigin: originChecker(cfg.AllowedOrigins)}
	return ctl
}

// originChecker allows any origin when the list is empty. Requests without an
// Origin header are not from a browser and pass.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimRight(a, "/"), origin) {
				return true
			}
		}
		log.Warn().Str("module", "signal").Str("origin", origin).Msg("origin rejected")
		return false
	}
}

type wsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

// HandleSignal upgrades the request and starts the pumps. principal is nil
// when auth is disabled.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context, principal *core.Principal) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.cfg.ReadLimit)

	sid := core.SessionID(uuid.NewString())
	conn := &wsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.cfg.SendBuffer),
	}
	if err := ctl.Orch.Connect(ctx, sid, conn, principal); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("register connection")
		conn.Close()
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("remote", c.ClientIP()).Msg("new WS connection")

	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(ctx, sid, conn)
}

package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/famo7/meetopia-api/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, sid core.SessionID, c *wsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(ctl.cfg.WriteWait))
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *wsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		c.Close()
		// The orchestrator may already be stopping; a lost disconnect is
		// harmless then.
		if err := ctl.Orch.Disconnect(context.WithoutCancel(ctx), sid); err != nil {
			log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("disconnect not delivered")
		}
	}()

	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait)) }
	if err := extend(); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		_ = extend()
		if err := ctl.handleFrame(ctx, sid, c, data); err != nil {
			log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump stop")
			return
		}
	}
}

// handleFrame answers transport-level events itself and queues the rest for
// the orchestrator. A returned error ends the connection.
func (ctl *SignalWSController) handleFrame(ctx context.Context, sid core.SessionID, c *wsSignalConn, data []byte) error {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		ctl.reply(sid, c, core.EventError, core.ErrorPayload{Message: "Invalid message"})
		return nil
	}

	switch env.Type {
	case core.EventPing:
		ctl.handlePing(sid, c)
		return nil
	default:
		if err := ctl.Orch.Submit(ctx, sid, env); err != nil {
			return errors.Join(errSubmit, err)
		}
		return nil
	}
}

func (ctl *SignalWSController) reply(sid core.SessionID, c *wsSignalConn, t core.EventType, payload any) {
	frame, err := core.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("reply marshal")
		return
	}
	if err := c.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("type", string(t)).Msg("reply dropped")
	}
}

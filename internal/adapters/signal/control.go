package signal

import (
	"errors"

	"github.com/famo7/meetopia-api/internal/core"
)

var errSubmit = errors.New("submit to orchestrator")

func (ctl *SignalWSController) handlePing(sid core.SessionID, c *wsSignalConn) {
	ctl.reply(sid, c, core.EventPong, nil)
}

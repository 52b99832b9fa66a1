package app

import (
	"errors"

	"github.com/famo7/meetopia-api/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a recipient whose send failed during fan-out.
type Policy interface {
	OnBackPressure(sid core.SessionID, err error) BackpressureAction
}

// SimplePolicy only logs by default. With KickSlow a recipient whose send
// buffer is full gets its connection closed.
type SimplePolicy struct {
	KickSlow bool
}

func (p SimplePolicy) OnBackPressure(_ core.SessionID, err error) BackpressureAction {
	if p.KickSlow && errors.Is(err, core.ErrBackpressure) {
		return KickMember
	}
	return NoAction
}

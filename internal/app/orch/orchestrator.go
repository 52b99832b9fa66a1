// Package orch coordinates meeting rooms: presence, note edits and saves.
//
// All room state is owned by a single loop goroutine (Run). Transport
// goroutines and collaborator calls talk to it by posting closures, so a
// registry mutation and the sends it causes happen in one step that no other
// event can interleave with.
package orch

import (
	"context"
	"errors"

	"github.com/famo7/meetopia-api/internal/app"
	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

var ErrStopped = errors.New("orchestrator stopped")

const eventQueueSize = 256

// connState is what the loop knows about one live connection.
type connState struct {
	conn      core.SignalConnection
	principal *core.Principal
	room      domain.MeetingID
	userID    domain.UserID
}

type Orchestrator struct {
	Registry *app.Registry
	Guard    *app.AccessGuard
	Notes    *app.NotesPersistence
	Policy   app.Policy
	Limiter  *app.JoinRateLimiter
	Colors   func() string

	events  chan func()
	stopped chan struct{}
	runCtx  context.Context
	async   conc.WaitGroup

	// loop-owned
	pending  int
	conns    map[core.SessionID]*connState
	channels map[domain.UserID]map[core.SessionID]struct{}
}

func New(reg *app.Registry, guard *app.AccessGuard, notes *app.NotesPersistence) *Orchestrator {
	return &Orchestrator{
		Registry: reg,
		Guard:    guard,
		Notes:    notes,
		Policy:   app.SimplePolicy{},
		Colors:   domain.RandomColor,
		events:   make(chan func(), eventQueueSize),
		stopped:  make(chan struct{}),
		conns:    make(map[core.SessionID]*connState),
		channels: make(map[domain.UserID]map[core.SessionID]struct{}),
	}
}

// Run processes events until ctx is cancelled, then waits for in-flight
// collaborator calls to return.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.runCtx = ctx
	defer close(o.stopped)
	log.Info().Str("module", "orch").Msg("room loop started")
	for {
		select {
		case <-ctx.Done():
			o.async.Wait()
			log.Info().Str("module", "orch").Msg("room loop stopped")
			return nil
		case fn := <-o.events:
			fn()
		}
	}
}

func (o *Orchestrator) post(ctx context.Context, fn func()) error {
	select {
	case o.events <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-o.stopped:
		return ErrStopped
	}
}

// do runs fn on the loop and waits for it.
func (o *Orchestrator) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := o.post(ctx, func() { fn(); close(done) }); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-o.stopped:
		return ErrStopped
	}
}

// goAsync runs work off the loop and queues the continuation it returns
// back onto the loop. Only call from the loop.
func (o *Orchestrator) goAsync(work func(ctx context.Context) func()) {
	ctx := o.runCtx
	o.pending++
	o.async.Go(func() {
		cont := work(ctx)
		_ = o.post(ctx, func() {
			o.pending--
			cont()
		})
	})
}

// callSafely turns a collaborator panic into an error.
func callSafely(fn func() error) (err error) {
	if r := panics.Try(func() { err = fn() }); r != nil {
		err = r.AsError()
	}
	return err
}

// Connect registers a live connection. The transport must call it before
// submitting events for sid.
func (o *Orchestrator) Connect(ctx context.Context, sid core.SessionID, conn core.SignalConnection, principal *core.Principal) error {
	return o.post(ctx, func() {
		o.conns[sid] = &connState{conn: conn, principal: principal}
		log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("connected")
	})
}

// Submit queues an inbound event from sid.
func (o *Orchestrator) Submit(ctx context.Context, sid core.SessionID, env core.Envelope) error {
	return o.post(ctx, func() { o.dispatch(sid, env) })
}

// Disconnect is called by the transport once the connection is gone,
// whatever the reason.
func (o *Orchestrator) Disconnect(ctx context.Context, sid core.SessionID) error {
	return o.post(ctx, func() { o.handleDisconnect(sid) })
}

func (o *Orchestrator) send(sid core.SessionID, t core.EventType, payload any) {
	cs, ok := o.conns[sid]
	if !ok {
		return
	}
	frame, err := core.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("type", string(t)).Msg("encode event")
		return
	}
	o.deliver(sid, cs, frame)
}

func (o *Orchestrator) sendError(sid core.SessionID, msg string) {
	o.send(sid, core.EventError, core.ErrorPayload{Message: msg})
}

// deliver hands one frame to one recipient. A failed send is logged and
// handed to the policy; it never stops the caller's fan-out.
func (o *Orchestrator) deliver(sid core.SessionID, cs *connState, frame core.Frame) bool {
	err := cs.conn.TrySend(frame)
	if err == nil {
		return true
	}
	log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("send failed")
	if o.Policy != nil && o.Policy.OnBackPressure(sid, err) == app.KickMember {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("kicking slow consumer")
		cs.conn.Close()
	}
	return false
}

// broadcast sends to everyone in the room except from.
func (o *Orchestrator) broadcast(meetingID domain.MeetingID, from core.SessionID, t core.EventType, payload any) int {
	frame, err := core.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("type", string(t)).Msg("encode event")
		return 0
	}
	sent, dropped := 0, 0
	for _, s := range o.Registry.List(meetingID) {
		if s.ID == from {
			continue
		}
		cs, ok := o.conns[s.ID]
		if !ok {
			continue
		}
		if o.deliver(s.ID, cs, frame) {
			sent++
		} else {
			dropped++
		}
	}
	log.Debug().Str("module", "orch").Str("type", string(t)).Str("from", string(from)).Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
	return sent
}

var validate = validator.New(validator.WithRequiredStructEnabled())

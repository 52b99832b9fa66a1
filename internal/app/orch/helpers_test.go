package orch

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/famo7/meetopia-api/internal/app"
	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/core/mocks"
	"github.com/famo7/meetopia-api/internal/domain"
	"go.uber.org/mock/gomock"
)

const waitTimeout = 2 * time.Second

// recorder keeps the global order in which frames were handed to connections.
type recorder struct {
	mu  sync.Mutex
	log []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, s)
}

func (r *recorder) index(s string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range r.log {
		if v == s {
			return i
		}
	}
	return -1
}

type fakeConn struct {
	name   string
	rec    *recorder
	frames chan core.Envelope

	mu       sync.Mutex
	closed   bool
	failWith error
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	if c.closed {
		return core.ErrConnClosed
	}
	var env core.Envelope
	if err := json.Unmarshal(f, &env); err != nil {
		return err
	}
	select {
	case c.frames <- env:
		c.rec.add(c.name + ":" + string(env.Type))
		return nil
	default:
		return core.ErrBackpressure
	}
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWith = err
}

func (c *fakeConn) next(t *testing.T) core.Envelope {
	t.Helper()
	select {
	case env := <-c.frames:
		return env
	case <-time.After(waitTimeout):
		t.Fatalf("%s: timed out waiting for a frame", c.name)
		return core.Envelope{}
	}
}

func (c *fakeConn) expect(t *testing.T, want core.EventType) core.Envelope {
	t.Helper()
	env := c.next(t)
	if env.Type != want {
		t.Fatalf("%s: got %q (%s), want %q", c.name, env.Type, env.Payload, want)
	}
	return env
}

func (c *fakeConn) expectQuiet(t *testing.T) {
	t.Helper()
	select {
	case env := <-c.frames:
		t.Fatalf("%s: unexpected frame %q (%s)", c.name, env.Type, env.Payload)
	default:
	}
}

func payloadOf[T any](t *testing.T, env core.Envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Payload, &v); err != nil {
		t.Fatalf("decode %s payload: %v", env.Type, err)
	}
	return v
}

type harness struct {
	t       *testing.T
	ctx     context.Context
	o       *Orchestrator
	checker *mocks.MockAccessChecker
	store   *mocks.MockNotesStore
	rec     *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockAccessChecker(ctrl)
	store := mocks.NewMockNotesStore(ctrl)

	o := New(app.NewRegistry(), app.NewAccessGuard(checker), app.NewNotesPersistence(store))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = o.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return &harness{t: t, ctx: context.Background(), o: o, checker: checker, store: store, rec: &recorder{}}
}

func (h *harness) connect(name string, principal *core.Principal) *fakeConn {
	h.t.Helper()
	c := &fakeConn{name: name, rec: h.rec, frames: make(chan core.Envelope, 64)}
	if err := h.o.Connect(h.ctx, core.SessionID(name), c, principal); err != nil {
		h.t.Fatalf("connect %s: %v", name, err)
	}
	return c
}

func (h *harness) submit(c *fakeConn, t core.EventType, payload any) {
	h.t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		h.t.Fatalf("marshal: %v", err)
	}
	if err := h.o.Submit(h.ctx, core.SessionID(c.name), core.Envelope{Type: t, Payload: raw}); err != nil {
		h.t.Fatalf("submit: %v", err)
	}
}

// allow expects one access check for (meeting, user) and grants it.
func (h *harness) allow(meeting domain.MeetingID, uid domain.UserID) {
	h.checker.EXPECT().UserHasMeetingAccess(gomock.Any(), meeting, uid).Return(true, nil)
}

// join runs a granted join and returns the roster the joiner received.
func (h *harness) join(c *fakeConn, meeting domain.MeetingID, uid domain.UserID, name string) []core.Descriptor {
	h.t.Helper()
	h.allow(meeting, uid)
	h.submit(c, core.EventJoinMeeting, core.JoinPayload{MeetingID: meeting, UserID: uid, UserName: name})
	return payloadOf[[]core.Descriptor](h.t, c.expect(h.t, core.EventCurrentUsers))
}

func (h *harness) disconnect(c *fakeConn) {
	h.t.Helper()
	if err := h.o.Disconnect(h.ctx, core.SessionID(c.name)); err != nil {
		h.t.Fatalf("disconnect: %v", err)
	}
}

// settle waits until every collaborator call has finished and its
// continuation has run on the loop.
func (h *harness) settle() {
	h.t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for {
		var pending int
		if err := h.o.do(h.ctx, func() { pending = h.o.pending }); err != nil {
			h.t.Fatalf("settle: %v", err)
		}
		if pending == 0 {
			return
		}
		if time.Now().After(deadline) {
			h.t.Fatalf("settle: %d collaborator calls still pending", pending)
		}
		time.Sleep(time.Millisecond)
	}
}

// barrier returns once every event queued before it has been handled.
func (h *harness) barrier() {
	h.t.Helper()
	if _, err := h.o.Connections(h.ctx); err != nil {
		h.t.Fatalf("barrier: %v", err)
	}
}

func (h *harness) roomSize(meeting domain.MeetingID) int {
	h.t.Helper()
	n, err := h.o.RoomSize(h.ctx, meeting)
	if err != nil {
		h.t.Fatalf("room size: %v", err)
	}
	return n
}

func (h *harness) rooms() []app.RoomInfo {
	h.t.Helper()
	rooms, err := h.o.Rooms(h.ctx)
	if err != nil {
		h.t.Fatalf("rooms: %v", err)
	}
	return rooms
}

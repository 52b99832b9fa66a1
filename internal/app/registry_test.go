package app

import (
	"math/rand/v2"
	"testing"

	"github.com/famo7/meetopia-api/internal/core"
	"github.com/famo7/meetopia-api/internal/domain"
)

func session(sid string, uid domain.UserID, name string) core.Session {
	return core.Session{ID: core.SessionID(sid), User: domain.User{ID: uid, Username: name}, Color: "#3b82f6"}
}

func TestRegistryAddCreatesRoomLazily(t *testing.T) {
	r := NewRegistry()
	if r.Has("1") {
		t.Fatal("expected no room before first add")
	}
	r.Add("1", session("a", 10, "Alice"))
	if !r.Has("1") {
		t.Fatal("expected room after add")
	}
	if got := r.Size("1"); got != 1 {
		t.Fatalf("size = %d, want 1", got)
	}
	s, ok := r.Get("1", "a")
	if !ok {
		t.Fatal("expected session a")
	}
	if s.Room != "1" {
		t.Fatalf("room = %q, want %q", s.Room, "1")
	}
}

func TestRegistryAddIsIdempotentBySessionID(t *testing.T) {
	r := NewRegistry()
	r.Add("1", session("a", 10, "Alice"))
	r.Add("1", session("a", 10, "Alice"))
	if got := r.Size("1"); got != 1 {
		t.Fatalf("size = %d, want 1", got)
	}
}

func TestRegistryRemoveDeletesEmptyRoom(t *testing.T) {
	r := NewRegistry()
	r.Add("1", session("a", 10, "Alice"))
	r.Add("1", session("b", 20, "Bob"))

	removed, ok := r.Remove("1", "a")
	if !ok || removed.ID != "a" {
		t.Fatalf("remove a = %+v, %v", removed, ok)
	}
	if got := r.Size("1"); got != 1 {
		t.Fatalf("size = %d, want 1", got)
	}
	if _, ok := r.Remove("1", "b"); !ok {
		t.Fatal("expected b removed")
	}
	if r.Has("1") {
		t.Fatal("expected empty room to be deleted")
	}
	if len(r.Rooms()) != 0 {
		t.Fatalf("rooms = %+v, want none", r.Rooms())
	}
}

func TestRegistryRemoveUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Remove("missing", "a"); ok {
		t.Fatal("expected no-op for missing room")
	}
	r.Add("1", session("a", 10, "Alice"))
	if _, ok := r.Remove("1", "zzz"); ok {
		t.Fatal("expected no-op for missing session")
	}
	if got := r.Size("1"); got != 1 {
		t.Fatalf("size = %d, want 1", got)
	}
}

func TestRegistryListIsSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Add("1", session("b", 20, "Bob"))
	r.Add("1", session("a", 10, "Alice"))

	list := r.List("1")
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("list = %+v", list)
	}
	list[0].User.Username = "mutated"
	if s, _ := r.Get("1", "a"); s.User.Username != "Alice" {
		t.Fatalf("registry mutated through snapshot: %q", s.User.Username)
	}
	if got := r.List("absent"); len(got) != 0 {
		t.Fatalf("list of absent room = %+v", got)
	}
}

func TestRegistrySizeTracksJoinsMinusLeaves(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	r := NewRegistry()
	present := map[core.SessionID]bool{}
	ids := []core.SessionID{"a", "b", "c", "d", "e"}

	for step := 0; step < 500; step++ {
		sid := ids[rng.IntN(len(ids))]
		if rng.IntN(2) == 0 {
			r.Add("m", core.Session{ID: sid})
			present[sid] = true
		} else {
			_, ok := r.Remove("m", sid)
			if ok != present[sid] {
				t.Fatalf("step %d: remove(%s) = %v, want %v", step, sid, ok, present[sid])
			}
			delete(present, sid)
		}
		if got := r.Size("m"); got != len(present) {
			t.Fatalf("step %d: size = %d, want %d", step, got, len(present))
		}
		if len(present) == 0 && r.Has("m") {
			t.Fatalf("step %d: empty room still registered", step)
		}
	}
}

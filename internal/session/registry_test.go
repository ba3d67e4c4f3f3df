package session

import (
	"context"
	"testing"
	"time"

	"github.com/Maheen0312/realtime-code-collab/internal/models"
	"github.com/Maheen0312/realtime-code-collab/internal/utils"
)

func newTestRegistry(grace time.Duration) *Registry {
	return NewRegistry(utils.NewLogger(), grace)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met")
}

func TestGetOrCreatePolicy(t *testing.T) {
	rg := newTestRegistry(time.Minute)

	if room, found := rg.GetOrCreate("abc123", false); found || room != nil {
		t.Fatalf("non-host must not create a room, got %#v found=%v", room, found)
	}
	if rg.RoomCount() != 0 {
		t.Fatalf("lookup without create must have no side effects")
	}

	created, found := rg.GetOrCreate("abc123", true)
	if !found || created == nil {
		t.Fatalf("host join should create the room")
	}
	state := created.Snapshot()
	if state.Code != "" || state.Language != DefaultLanguage || len(state.Comments) != 0 {
		t.Fatalf("new room must start with an empty document, got %#v", state)
	}

	again, found := rg.GetOrCreate("abc123", false)
	if !found || again != created {
		t.Fatalf("expected the same room instance back")
	}
}

func TestGetOrCreateRefreshesLastActive(t *testing.T) {
	rg := newTestRegistry(time.Minute)
	room, _ := rg.GetOrCreate("r", true)
	before := room.LastActive()
	time.Sleep(10 * time.Millisecond)
	rg.GetOrCreate("r", false)
	if !room.LastActive().After(before) {
		t.Fatalf("lookup should refresh lastActive")
	}
}

func TestRemoveParticipantIdempotent(t *testing.T) {
	rg := newTestRegistry(time.Minute)
	room, _ := rg.GetOrCreate("r", true)
	c1, _ := hookedClient()
	c2, _ := hookedClient()
	room.Join(c1, models.Participant{SocketID: c1.ID, Name: "alice"})
	room.Join(c2, models.Participant{SocketID: c2.ID, Name: "bob"})

	left, remaining, ok := rg.RemoveParticipant("r", c1.ID)
	if !ok || left.Name != "alice" {
		t.Fatalf("expected alice removed, got %#v ok=%v", left, ok)
	}
	if len(remaining) != 1 || remaining[0].Name != "bob" {
		t.Fatalf("expected bob remaining, got %#v", remaining)
	}

	if _, _, ok := rg.RemoveParticipant("r", c1.ID); ok {
		t.Fatalf("second removal must be a no-op")
	}
	if _, _, ok := rg.RemoveParticipant("ghost", c1.ID); ok {
		t.Fatalf("removal from missing room must be a no-op")
	}
}

func TestGracePeriodDeletesEmptyRoom(t *testing.T) {
	rg := newTestRegistry(30 * time.Millisecond)
	room, _ := rg.GetOrCreate("r", true)
	c, _ := hookedClient()
	room.Join(c, models.Participant{SocketID: c.ID})

	if _, remaining, ok := rg.RemoveParticipant("r", c.ID); !ok || remaining != nil {
		t.Fatalf("expected empty-room removal, remaining=%#v ok=%v", remaining, ok)
	}

	// Still present inside the grace window.
	if _, ok := rg.Get("r"); !ok {
		t.Fatalf("room must survive until the grace period elapses")
	}

	waitUntil(t, func() bool { _, ok := rg.Get("r"); return !ok })
}

func TestRejoinCancelsScheduledDeletion(t *testing.T) {
	rg := newTestRegistry(40 * time.Millisecond)
	room, _ := rg.GetOrCreate("r", true)
	c, _ := hookedClient()
	room.Join(c, models.Participant{SocketID: c.ID})
	rg.RemoveParticipant("r", c.ID)

	// Rejoin before expiry.
	rejoined, found := rg.GetOrCreate("r", false)
	if !found {
		t.Fatalf("room should still exist inside the grace window")
	}
	c2, _ := hookedClient()
	rejoined.Join(c2, models.Participant{SocketID: c2.ID})
	rg.RemoveParticipant("r", c2.ID)
	c3, _ := hookedClient()
	rejoined.Join(c3, models.Participant{SocketID: c3.ID})

	time.Sleep(80 * time.Millisecond)
	if _, ok := rg.Get("r"); !ok {
		t.Fatalf("occupied room must not be deleted by a stale grace timer")
	}
}

func TestGracePeriodReschedulesCleanly(t *testing.T) {
	rg := newTestRegistry(30 * time.Millisecond)
	room, _ := rg.GetOrCreate("r", true)

	// Empty-then-rejoin twice; only the last timer may fire.
	for i := 0; i < 2; i++ {
		c, _ := hookedClient()
		room.Join(c, models.Participant{SocketID: c.ID})
		rg.RemoveParticipant("r", c.ID)
	}

	waitUntil(t, func() bool { _, ok := rg.Get("r"); return !ok })
	if rg.RoomCount() != 0 {
		t.Fatalf("expected registry empty, got %d", rg.RoomCount())
	}
}

func TestSweepIdleRemovesStaleRooms(t *testing.T) {
	rg := newTestRegistry(time.Minute)
	stale, _ := rg.GetOrCreate("stale", true)
	c, _ := hookedClient()
	stale.Join(c, models.Participant{SocketID: c.ID}) // occupied but idle
	rg.GetOrCreate("fresh", true)

	time.Sleep(20 * time.Millisecond)
	rg.GetOrCreate("fresh", false) // refresh

	if removed := rg.SweepIdle(15 * time.Millisecond); removed != 1 {
		t.Fatalf("expected 1 room swept, got %d", removed)
	}
	if _, ok := rg.Get("stale"); ok {
		t.Fatalf("idle room must be deleted even while occupied")
	}
	if _, ok := rg.Get("fresh"); !ok {
		t.Fatalf("active room must survive the sweep")
	}
}

func TestStartSweeperRunsUntilCancelled(t *testing.T) {
	rg := newTestRegistry(time.Minute)
	rg.GetOrCreate("r", true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rg.StartSweeper(ctx, 10*time.Millisecond, time.Nanosecond)

	waitUntil(t, func() bool { return rg.RoomCount() == 0 })
	cancel()
}

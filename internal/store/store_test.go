package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RoomStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewWithClient(rdb), mr
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	saved := RoomRecord{
		RoomID:      "abc123",
		Code:        "print(1)",
		Language:    "python",
		Owner:       "alice",
		RoomName:    "interview",
		LastUpdated: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.Save(ctx, saved); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.Load(ctx, "abc123")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Code != saved.Code || got.Language != saved.Language || got.Owner != saved.Owner || got.RoomName != saved.RoomName {
		t.Fatalf("round trip mismatch: %#v", got)
	}
	if !got.LastUpdated.Equal(saved.LastUpdated) {
		t.Fatalf("expected lastUpdated preserved, got %v", got.LastUpdated)
	}
}

func TestSaveRequiresRoomID(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Save(context.Background(), RoomRecord{Code: "x"}); err == nil {
		t.Fatalf("expected error for missing room id")
	}
}

func TestSaveDefaultsLastUpdated(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, RoomRecord{RoomID: "r"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := s.Load(ctx, "r")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.LastUpdated.IsZero() {
		t.Fatalf("expected lastUpdated to default to now")
	}
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	s.Save(ctx, RoomRecord{RoomID: "r", Code: "old", Language: "javascript"})
	if err := s.Save(ctx, RoomRecord{RoomID: "r", Code: "new", Language: "go"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := s.Load(ctx, "r")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Code != "new" || got.Language != "go" {
		t.Fatalf("expected latest snapshot, got %#v", got)
	}
}

func TestLoadMissingRoom(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.Load(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotExpires(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, RoomRecord{RoomID: "r", Code: "x"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if ttl := mr.TTL(key("r")); ttl != snapshotTTL {
		t.Fatalf("expected %v ttl, got %v", snapshotTTL, ttl)
	}

	mr.FastForward(snapshotTTL + time.Second)
	if _, err := s.Load(ctx, "r"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected snapshot expired, got %v", err)
	}
}

func TestPing(t *testing.T) {
	s, mr := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	mr.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping failure after shutdown")
	}
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no snapshot exists for a room id.
var ErrNotFound = errors.New("room snapshot not found")

const snapshotTTL = 24 * time.Hour

// RoomRecord is the durable document snapshot for a room that opted into
// persistence. The live registry stays authoritative while the room exists;
// this store is consulted only on explicit save/load.
type RoomRecord struct {
	RoomID      string
	Code        string
	Language    string
	Owner       string
	RoomName    string
	LastUpdated time.Time
}

// RoomStore persists snapshots as Redis hashes with a 24h expiry.
type RoomStore struct {
	rdb *redis.Client
}

func New(redisAddr string) *RoomStore {
	return &RoomStore{rdb: redis.NewClient(&redis.Options{Addr: redisAddr})}
}

func NewWithClient(rdb *redis.Client) *RoomStore {
	return &RoomStore{rdb: rdb}
}

func key(roomID string) string { return "room:snapshot:" + roomID }

func (s *RoomStore) Save(ctx context.Context, rec RoomRecord) error {
	if rec.RoomID == "" {
		return errors.New("room id is required")
	}
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = time.Now()
	}
	roomKey := key(rec.RoomID)
	err := s.rdb.HSet(ctx, roomKey, map[string]interface{}{
		"roomId":      rec.RoomID,
		"code":        rec.Code,
		"language":    rec.Language,
		"owner":       rec.Owner,
		"roomname":    rec.RoomName,
		"lastUpdated": rec.LastUpdated.Format(time.RFC3339),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to save room snapshot: %w", err)
	}
	return s.rdb.Expire(ctx, roomKey, snapshotTTL).Err()
}

func (s *RoomStore) Load(ctx context.Context, roomID string) (*RoomRecord, error) {
	result := s.rdb.HGetAll(ctx, key(roomID))
	if result.Err() != nil {
		return nil, fmt.Errorf("failed to load room snapshot: %w", result.Err())
	}
	fields := result.Val()
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	rec := &RoomRecord{
		RoomID:   fields["roomId"],
		Code:     fields["code"],
		Language: fields["language"],
		Owner:    fields["owner"],
		RoomName: fields["roomname"],
	}
	if ts, err := time.Parse(time.RFC3339, fields["lastUpdated"]); err == nil {
		rec.LastUpdated = ts
	}
	return rec, nil
}

func (s *RoomStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/Maheen0312/realtime-code-collab/internal/metrics"
	"github.com/Maheen0312/realtime-code-collab/internal/models"
	"github.com/Maheen0312/realtime-code-collab/internal/utils"
)

const (
	// DefaultGracePeriod is how long an empty room survives before deletion.
	DefaultGracePeriod = 5 * time.Minute
	// DefaultIdleTTL is the inactivity threshold for the periodic sweep.
	DefaultIdleTTL = 24 * time.Hour
	// DefaultSweepInterval is how often the idle sweep runs.
	DefaultSweepInterval = time.Hour
)

// Registry owns every live room and the two reclamation mechanisms:
// grace-period deletion for rooms that just emptied, and the idle-TTL sweep.
type Registry struct {
	log   *utils.Logger
	grace time.Duration

	mu     sync.Mutex
	rooms  map[string]*Room
	timers map[string]*time.Timer
}

func NewRegistry(log *utils.Logger, grace time.Duration) *Registry {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Registry{
		log:    log,
		grace:  grace,
		rooms:  make(map[string]*Room),
		timers: make(map[string]*time.Timer),
	}
}

// GetOrCreate returns the room and whether it was found or created. When the
// room is absent and allowCreate is false nothing is created as a side effect.
func (rg *Registry) GetOrCreate(roomID string, allowCreate bool) (*Room, bool) {
	rg.mu.Lock()
	r, ok := rg.rooms[roomID]
	if !ok {
		if !allowCreate {
			rg.mu.Unlock()
			return nil, false
		}
		r = NewRoom(roomID)
		rg.rooms[roomID] = r
		rg.cancelTimerLocked(roomID)
		metrics.SetActiveRooms(len(rg.rooms))
		rg.mu.Unlock()
		rg.log.Info("room created", "roomId", roomID)
		return r, true
	}
	rg.mu.Unlock()
	r.touch()
	return r, true
}

// Get returns a live room without refreshing lastActive.
func (rg *Registry) Get(roomID string) (*Room, bool) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	r, ok := rg.rooms[roomID]
	return r, ok
}

// RemoveParticipant takes the connection out of the room. If the room empties
// it schedules grace-period deletion, replacing any pending timer; otherwise
// it returns the remaining participants for broadcast. Safe to call twice.
func (rg *Registry) RemoveParticipant(roomID, connID string) (models.Participant, []models.Participant, bool) {
	rg.mu.Lock()
	r, ok := rg.rooms[roomID]
	if !ok {
		rg.mu.Unlock()
		return models.Participant{}, nil, false
	}
	rg.mu.Unlock()

	left, ok := r.Leave(connID)
	if !ok {
		return models.Participant{}, nil, false
	}

	rg.mu.Lock()
	defer rg.mu.Unlock()
	rg.cancelTimerLocked(roomID)
	if r.ParticipantCount() == 0 {
		rg.scheduleDeletionLocked(roomID)
		rg.log.Info("room empty, deletion scheduled", "roomId", roomID, "grace", rg.grace.String())
		return left, nil, true
	}
	return left, r.Participants(), true
}

// scheduleDeletionLocked arms the grace timer. The callback re-resolves the
// room and re-checks emptiness at fire time: a rejoin between scheduling and
// expiry must win, and a cancelled-but-fired timer must be a no-op.
func (rg *Registry) scheduleDeletionLocked(roomID string) {
	var t *time.Timer
	t = time.AfterFunc(rg.grace, func() {
		rg.mu.Lock()
		defer rg.mu.Unlock()
		if rg.timers[roomID] != t {
			return
		}
		delete(rg.timers, roomID)
		r, ok := rg.rooms[roomID]
		if !ok || r.ParticipantCount() > 0 {
			return
		}
		delete(rg.rooms, roomID)
		metrics.SetActiveRooms(len(rg.rooms))
		rg.log.Info("room deleted after grace period", "roomId", roomID)
	})
	rg.timers[roomID] = t
}

func (rg *Registry) cancelTimerLocked(roomID string) {
	if t, ok := rg.timers[roomID]; ok {
		t.Stop()
		delete(rg.timers, roomID)
	}
}

// SweepIdle deletes every room whose lastActive is older than threshold,
// occupied or not, and reports how many were removed.
func (rg *Registry) SweepIdle(threshold time.Duration) int {
	cutoff := time.Now().Add(-threshold)
	rg.mu.Lock()
	defer rg.mu.Unlock()

	removed := 0
	for id, r := range rg.rooms {
		if r.LastActive().After(cutoff) {
			continue
		}
		rg.cancelTimerLocked(id)
		delete(rg.rooms, id)
		removed++
		rg.log.Info("idle room swept", "roomId", id)
	}
	if removed > 0 {
		metrics.SetActiveRooms(len(rg.rooms))
	}
	return removed
}

// StartSweeper runs SweepIdle on a ticker until ctx is cancelled.
func (rg *Registry) StartSweeper(ctx context.Context, interval, threshold time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if threshold <= 0 {
		threshold = DefaultIdleTTL
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rg.SweepIdle(threshold)
			}
		}
	}()
}

func (rg *Registry) RoomCount() int {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	return len(rg.rooms)
}

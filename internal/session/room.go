package session

import (
	"sync"
	"time"

	"github.com/Maheen0312/realtime-code-collab/internal/models"
)

const DefaultLanguage = "javascript"

// Room holds the authoritative shared state for one collaboration session:
// membership, code, language and the comment log.
type Room struct {
	ID string

	mu           sync.Mutex
	clients      map[string]*Client
	participants map[string]models.Participant
	code         string
	language     string
	comments     []interface{}
	createdAt    time.Time
	lastActive   time.Time
}

func NewRoom(id string) *Room {
	now := time.Now()
	return &Room{
		ID:           id,
		clients:      make(map[string]*Client),
		participants: make(map[string]models.Participant),
		language:     DefaultLanguage,
		comments:     []interface{}{},
		createdAt:    now,
		lastActive:   now,
	}
}

// Join inserts or updates the participant entry for c's connection.
func (r *Room) Join(c *Client, p models.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
	r.participants[c.ID] = p
	r.lastActive = time.Now()
}

// Leave removes the connection if present. The second return reports whether
// the connection was actually a member, making removal idempotent for the
// explicit-leave-then-disconnect case.
func (r *Room) Leave(connID string) (models.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[connID]
	if !ok {
		return models.Participant{}, false
	}
	delete(r.participants, connID)
	delete(r.clients, connID)
	r.lastActive = time.Now()
	return p, true
}

func (r *Room) Participant(connID string) (models.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[connID]
	return p, ok
}

func (r *Room) Participants() []models.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	return out
}

func (r *Room) ParticipantCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

// Snapshot returns the current document state.
func (r *Room) Snapshot() models.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	comments := make([]interface{}, len(r.comments))
	copy(comments, r.comments)
	return models.RoomState{Code: r.code, Language: r.language, Comments: comments}
}

func (r *Room) SetCode(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = code
	r.lastActive = time.Now()
}

func (r *Room) SetLanguage(language string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.language = language
	r.lastActive = time.Now()
}

// SaveDocument overwrites code and language in one step (save-code event).
func (r *Room) SaveDocument(code, language string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = code
	r.language = language
	r.lastActive = time.Now()
}

func (r *Room) AppendComment(comment interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, comment)
	r.lastActive = time.Now()
}

// ReplaceComments overwrites the whole log, last writer wins.
func (r *Room) ReplaceComments(comments []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comments == nil {
		comments = []interface{}{}
	}
	r.comments = comments
	r.lastActive = time.Now()
}

func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

func (r *Room) touch() {
	r.mu.Lock()
	r.lastActive = time.Now()
	r.mu.Unlock()
}

// Broadcast sends frame to every member except the named sender.
func (r *Room) Broadcast(senderID string, frame models.WSFrame) {
	for _, c := range r.clientList() {
		if c.ID == senderID {
			continue
		}
		c.Send(frame)
	}
}

// BroadcastAll sends frame to every member including the sender, so clients
// render from the authoritative server copy instead of a local echo.
func (r *Room) BroadcastAll(frame models.WSFrame) {
	for _, c := range r.clientList() {
		c.Send(frame)
	}
}

func (r *Room) clientList() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

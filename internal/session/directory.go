package session

import "sync"

// Identity is the last-known identity for a connection, used to backfill
// events that omit it. Never authoritative over room membership.
type Identity struct {
	Username  string
	UserColor string
	RoomID    string
}

// Directory maps connection ids to their transient identity.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]Identity
}

func NewDirectory() *Directory {
	return &Directory{entries: make(map[string]Identity)}
}

// Register creates an empty entry on first contact from a connection.
func (d *Directory) Register(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.entries[connID]; !ok {
		d.entries[connID] = Identity{}
	}
}

func (d *Directory) Set(connID string, id Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[connID] = id
}

func (d *Directory) Lookup(connID string) (Identity, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.entries[connID]
	return id, ok
}

// ClearRoom drops the room affiliation but keeps the identity fields.
func (d *Directory) ClearRoom(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.entries[connID]; ok {
		id.RoomID = ""
		d.entries[connID] = id
	}
}

func (d *Directory) Remove(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, connID)
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

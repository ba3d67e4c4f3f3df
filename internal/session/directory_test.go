package session

import "testing"

func TestDirectoryLifecycle(t *testing.T) {
	dir := NewDirectory()

	dir.Register("conn-1")
	if id, ok := dir.Lookup("conn-1"); !ok || id.Username != "" {
		t.Fatalf("expected empty entry after register, got %#v ok=%v", id, ok)
	}

	dir.Set("conn-1", Identity{Username: "alice", UserColor: "#FF5733", RoomID: "abc"})
	id, ok := dir.Lookup("conn-1")
	if !ok || id.Username != "alice" || id.RoomID != "abc" {
		t.Fatalf("unexpected identity: %#v", id)
	}

	dir.ClearRoom("conn-1")
	if id, _ := dir.Lookup("conn-1"); id.RoomID != "" || id.Username != "alice" {
		t.Fatalf("expected room cleared but identity kept, got %#v", id)
	}

	dir.Remove("conn-1")
	if _, ok := dir.Lookup("conn-1"); ok {
		t.Fatalf("expected entry removed")
	}
	if dir.Len() != 0 {
		t.Fatalf("expected empty directory, got %d", dir.Len())
	}
}

func TestDirectoryRegisterDoesNotOverwrite(t *testing.T) {
	dir := NewDirectory()
	dir.Set("conn-1", Identity{Username: "alice"})
	dir.Register("conn-1")
	if id, _ := dir.Lookup("conn-1"); id.Username != "alice" {
		t.Fatalf("register must not clobber existing identity, got %#v", id)
	}
}

func TestDirectoryClearRoomMissingEntry(t *testing.T) {
	dir := NewDirectory()
	dir.ClearRoom("ghost") // no-op
	if dir.Len() != 0 {
		t.Fatalf("expected no entry created")
	}
}

package session

import (
	"encoding/json"
	"math/rand"
	"sync"

	"github.com/Maheen0312/realtime-code-collab/internal/metrics"
	"github.com/Maheen0312/realtime-code-collab/internal/models"
	"github.com/Maheen0312/realtime-code-collab/internal/utils"
)

var userColors = []string{
	"#FF5733", "#33FF57", "#3357FF", "#FF33F5",
	"#F5FF33", "#33FFF5", "#F533FF", "#FF8C33",
}

func randomColor() string { return userColors[rand.Intn(len(userColors))] }

// Coordinator validates and dispatches inbound frames against the registry
// and directory, and computes the broadcast set for each outbound event. It
// keeps no per-room state of its own, only the connection table needed for
// point-to-point relays.
type Coordinator struct {
	log      *utils.Logger
	registry *Registry
	dir      *Directory

	mu    sync.RWMutex
	conns map[string]*Client
}

func NewCoordinator(log *utils.Logger, registry *Registry, dir *Directory) *Coordinator {
	return &Coordinator{
		log:      log,
		registry: registry,
		dir:      dir,
		conns:    make(map[string]*Client),
	}
}

// Connect registers a new connection before its first frame is processed.
func (co *Coordinator) Connect(c *Client) {
	co.mu.Lock()
	co.conns[c.ID] = c
	n := len(co.conns)
	co.mu.Unlock()
	co.dir.Register(c.ID)
	metrics.SetActiveConnections(n)
	co.log.Info("connected", "socketId", c.ID)
}

// Disconnect is the transport-level departure path. It converges on the same
// cleanup as an explicit leave-room and is safe after one.
func (co *Coordinator) Disconnect(c *Client) {
	if id, ok := co.dir.Lookup(c.ID); ok && id.RoomID != "" {
		if room, live := co.registry.Get(id.RoomID); live {
			if _, member := room.Participant(c.ID); member {
				room.Broadcast(c.ID, models.WSFrame{Type: "disconnected", Data: models.Disconnected{
					SocketID: c.ID,
					Username: id.Username,
				}})
			}
		}
		co.leaveRoom(c, id.RoomID)
	}
	co.dir.Remove(c.ID)
	co.mu.Lock()
	delete(co.conns, c.ID)
	n := len(co.conns)
	co.mu.Unlock()
	metrics.SetActiveConnections(n)
	co.log.Info("disconnected", "socketId", c.ID)
}

func (co *Coordinator) client(connID string) (*Client, bool) {
	co.mu.RLock()
	defer co.mu.RUnlock()
	c, ok := co.conns[connID]
	return c, ok
}

// HandleFrame processes one inbound event from c.
func (co *Coordinator) HandleFrame(c *Client, frame models.WSFrame) {
	metrics.CountEvent(frame.Type)
	switch frame.Type {
	case "join-room":
		var req models.JoinRequest
		unmarshal(frame.Data, &req)
		co.handleJoin(c, req)
	case "code-change":
		var change models.CodeChange
		unmarshal(frame.Data, &change)
		co.handleCodeChange(c, change)
	case "language-change":
		var change models.LanguageChange
		unmarshal(frame.Data, &change)
		co.handleLanguageChange(c, change)
	case "sync-code":
		var sync models.SyncCode
		unmarshal(frame.Data, &sync)
		co.handleSyncCode(sync)
	case "cursor-position":
		var cur models.CursorPosition
		unmarshal(frame.Data, &cur)
		co.handleCursor(c, cur)
	case "user-typing":
		var typing models.UserTyping
		unmarshal(frame.Data, &typing)
		co.handleTyping(c, typing)
	case "code-selection":
		var sel models.CodeSelection
		unmarshal(frame.Data, &sel)
		co.handleSelection(c, sel)
	case "comment":
		var ev models.CommentEvent
		unmarshal(frame.Data, &ev)
		co.handleComment(c, ev)
	case "comments-sync":
		var sync models.CommentsSync
		unmarshal(frame.Data, &sync)
		co.handleCommentsSync(c, sync)
	case "save-code":
		var save models.SaveCode
		unmarshal(frame.Data, &save)
		co.handleSaveCode(c, save)
	case "send-signal":
		var sig models.Signal
		unmarshal(frame.Data, &sig)
		co.handleSignal(c, sig)
	case "leave-room":
		var req models.LeaveRequest
		unmarshal(frame.Data, &req)
		co.leaveRoom(c, req.RoomID)
	default:
		c.Send(errFrame("unknown event: " + frame.Type))
	}
}

func (co *Coordinator) handleJoin(c *Client, req models.JoinRequest) {
	if req.RoomID == "" || req.User == nil || req.User.Name == "" {
		c.Send(errFrame("invalid room or user data"))
		return
	}

	room, found := co.registry.GetOrCreate(req.RoomID, req.User.IsHost)
	if !found {
		co.log.Warn("join rejected, room absent", "roomId", req.RoomID, "name", req.User.Name)
		c.Send(models.WSFrame{Type: "room-not-found"})
		return
	}

	// A connection belongs to at most one room: moving to a different room
	// runs the full departure path for the old one first.
	if id, ok := co.dir.Lookup(c.ID); ok && id.RoomID != "" && id.RoomID != req.RoomID {
		co.leaveRoom(c, id.RoomID)
	}

	color := req.User.UserColor
	if color == "" {
		color = randomColor()
	}
	participant := models.Participant{
		SocketID:  c.ID,
		Name:      req.User.Name,
		IsHost:    req.User.IsHost,
		Video:     req.User.Video,
		Audio:     req.User.Audio,
		UserColor: color,
	}
	room.Join(c, participant)
	co.dir.Set(c.ID, Identity{Username: req.User.Name, UserColor: color, RoomID: req.RoomID})

	participants := room.Participants()
	state := room.Snapshot()

	// Ack the joiner with the full room snapshot.
	c.Send(models.WSFrame{Type: "room-joined", Data: models.RoomJoined{
		RoomID:       req.RoomID,
		Success:      true,
		Participants: participants,
		Code:         state.Code,
		Language:     state.Language,
		Comments:     state.Comments,
	}})

	// Tell everyone else a participant arrived, then refresh the list for all.
	room.Broadcast(c.ID, models.WSFrame{Type: "user-joined", Data: models.UserJoined{
		SocketID:  c.ID,
		Name:      participant.Name,
		IsHost:    participant.IsHost,
		UserColor: participant.UserColor,
	}})
	room.BroadcastAll(models.WSFrame{Type: "room-participants", Data: participants})

	co.log.Info("joined room", "roomId", req.RoomID, "socketId", c.ID, "name", participant.Name)
}

func (co *Coordinator) handleCodeChange(c *Client, change models.CodeChange) {
	if change.RoomID == "" {
		c.Send(errFrame("roomId is required"))
		return
	}
	room, ok := co.registry.Get(change.RoomID)
	if !ok {
		return // late event for a reclaimed room
	}
	room.SetCode(change.Code)
	room.Broadcast(c.ID, models.WSFrame{Type: "code-change", Data: models.CodeChange{
		Code:   change.Code,
		UserID: c.ID,
	}})
}

func (co *Coordinator) handleLanguageChange(c *Client, change models.LanguageChange) {
	if change.RoomID == "" {
		c.Send(errFrame("roomId is required"))
		return
	}
	room, ok := co.registry.Get(change.RoomID)
	if !ok {
		return
	}
	room.SetLanguage(change.Language)
	room.Broadcast(c.ID, models.WSFrame{Type: "language-change", Data: models.LanguageChange{
		Language: change.Language,
	}})
}

// handleSyncCode catches up a single connection without a full-room broadcast.
func (co *Coordinator) handleSyncCode(sync models.SyncCode) {
	target, ok := co.client(sync.SocketID)
	if !ok {
		return
	}
	target.Send(models.WSFrame{Type: "code-change", Data: models.CodeChange{Code: sync.Code}})
	target.Send(models.WSFrame{Type: "language-change", Data: models.LanguageChange{Language: sync.Language}})
}

func (co *Coordinator) handleCursor(c *Client, cur models.CursorPosition) {
	room, ok := co.registry.Get(cur.RoomID)
	if !ok {
		return
	}
	username, color := co.backfill(c.ID, cur.Username, cur.UserColor)
	room.Broadcast(c.ID, models.WSFrame{Type: "cursor-position", Data: models.CursorPosition{
		UserID:    c.ID,
		Position:  cur.Position,
		Username:  username,
		UserColor: color,
	}})
}

func (co *Coordinator) handleTyping(c *Client, typing models.UserTyping) {
	room, ok := co.registry.Get(typing.RoomID)
	if !ok {
		return
	}
	username, _ := co.backfill(c.ID, typing.Username, "")
	userID := typing.UserID
	if userID == "" {
		userID = c.ID
	}
	room.Broadcast(c.ID, models.WSFrame{Type: "user-typing", Data: models.UserTyping{
		UserID:   userID,
		Username: username,
		IsTyping: typing.IsTyping,
	}})
}

func (co *Coordinator) handleSelection(c *Client, sel models.CodeSelection) {
	room, ok := co.registry.Get(sel.RoomID)
	if !ok {
		return
	}
	username, color := co.backfill(c.ID, sel.Username, sel.UserColor)
	room.Broadcast(c.ID, models.WSFrame{Type: "code-selection", Data: models.CodeSelection{
		UserID:    c.ID,
		Selection: sel.Selection,
		Username:  username,
		UserColor: color,
	}})
}

func (co *Coordinator) handleComment(c *Client, ev models.CommentEvent) {
	if ev.RoomID == "" {
		c.Send(errFrame("roomId is required"))
		return
	}
	room, ok := co.registry.Get(ev.RoomID)
	if !ok {
		return
	}
	room.AppendComment(ev.Comment)
	room.BroadcastAll(models.WSFrame{Type: "comment", Data: models.CommentEvent{Comment: ev.Comment}})
}

func (co *Coordinator) handleCommentsSync(c *Client, sync models.CommentsSync) {
	if sync.RoomID == "" {
		c.Send(errFrame("roomId is required"))
		return
	}
	room, ok := co.registry.Get(sync.RoomID)
	if !ok {
		return
	}
	room.ReplaceComments(sync.Comments)
	room.BroadcastAll(models.WSFrame{Type: "comments-sync", Data: models.CommentsSync{Comments: sync.Comments}})
}

func (co *Coordinator) handleSaveCode(c *Client, save models.SaveCode) {
	room, ok := co.registry.Get(save.RoomID)
	if !ok {
		return
	}
	room.SaveDocument(save.Code, save.Language)
	c.Send(models.WSFrame{Type: "code-saved", Data: models.CodeSaved{Success: true}})
}

// handleSignal relays an opaque WebRTC payload to the named connection.
func (co *Coordinator) handleSignal(c *Client, sig models.Signal) {
	target, ok := co.client(sig.UserToSignal)
	if !ok {
		return
	}
	from := sig.From
	if from == "" {
		from = c.ID
	}
	target.Send(models.WSFrame{Type: "receive-signal", Data: models.Signal{From: from, Signal: sig.Signal}})
}

// leaveRoom is the shared removal path for leave-room and disconnect.
func (co *Coordinator) leaveRoom(c *Client, roomID string) {
	if roomID == "" {
		return
	}
	left, remaining, ok := co.registry.RemoveParticipant(roomID, c.ID)
	if !ok {
		return // already removed by the other path
	}
	co.dir.ClearRoom(c.ID)

	if remaining == nil {
		return // room emptied, nobody to notify
	}
	room, stillLive := co.registry.Get(roomID)
	if !stillLive {
		return
	}
	name := left.Name
	if name == "" {
		if id, ok := co.dir.Lookup(c.ID); ok {
			name = id.Username
		}
	}
	room.BroadcastAll(models.WSFrame{Type: "user-left", Data: models.UserLeft{SocketID: c.ID, Name: name}})
	room.BroadcastAll(models.WSFrame{Type: "room-participants", Data: remaining})
	co.log.Info("left room", "roomId", roomID, "socketId", c.ID)
}

// backfill resolves missing identity fields from the directory.
func (co *Coordinator) backfill(connID, username, color string) (string, string) {
	if username != "" && color != "" {
		return username, color
	}
	id, ok := co.dir.Lookup(connID)
	if !ok {
		return username, color
	}
	if username == "" {
		username = id.Username
	}
	if color == "" {
		color = id.UserColor
	}
	return username, color
}

// unmarshal round-trips frame data through JSON into a concrete payload.
func unmarshal(in any, out any) { b, _ := json.Marshal(in); _ = json.Unmarshal(b, out) }

func errFrame(msg string) models.WSFrame {
	return models.WSFrame{Type: "error", Data: models.ErrorPayload{Message: msg}}
}

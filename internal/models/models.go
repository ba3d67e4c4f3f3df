package models

// WSFrame is the envelope for every message on the collaboration socket.
type WSFrame struct {
	Type string      `json:"type"` // "join-room","code-change","language-change","sync-code","cursor-position","user-typing","code-selection","comment","comments-sync","save-code","send-signal","leave-room",...
	Data interface{} `json:"data,omitempty"`
}

// Participant is a connection's identity and role within one room.
type Participant struct {
	SocketID  string `json:"socketId"`
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
	Video     bool   `json:"video"`
	Audio     bool   `json:"audio"`
	UserColor string `json:"userColor"`
}

// JoinUser is the identity block carried by a join-room request.
type JoinUser struct {
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
	Video     bool   `json:"video"`
	Audio     bool   `json:"audio"`
	UserColor string `json:"userColor"`
}

type JoinRequest struct {
	RoomID string    `json:"roomId"`
	User   *JoinUser `json:"user"`
}

// RoomJoined acknowledges a successful join with the full room snapshot.
type RoomJoined struct {
	RoomID       string        `json:"roomId"`
	Success      bool          `json:"success"`
	Participants []Participant `json:"participants"`
	Code         string        `json:"code"`
	Language     string        `json:"language"`
	Comments     []interface{} `json:"comments"`
}

// RoomState is the document snapshot pushed to a freshly joined participant.
type RoomState struct {
	Code     string        `json:"code"`
	Language string        `json:"language"`
	Comments []interface{} `json:"comments"`
}

type UserJoined struct {
	SocketID  string `json:"socketId"`
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
	UserColor string `json:"userColor"`
}

type CodeChange struct {
	RoomID string `json:"roomId,omitempty"`
	Code   string `json:"code"`
	UserID string `json:"userId,omitempty"`
}

type LanguageChange struct {
	RoomID   string `json:"roomId,omitempty"`
	Language string `json:"language"`
}

// SyncCode is a point-to-point catch-up for a single connection.
type SyncCode struct {
	SocketID string `json:"socketId"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

type CursorPosition struct {
	RoomID    string      `json:"roomId,omitempty"`
	UserID    string      `json:"userId,omitempty"`
	Position  interface{} `json:"position"`
	Username  string      `json:"username,omitempty"`
	UserColor string      `json:"userColor,omitempty"`
}

type UserTyping struct {
	RoomID   string `json:"roomId,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

type CodeSelection struct {
	RoomID    string      `json:"roomId,omitempty"`
	UserID    string      `json:"userId,omitempty"`
	Selection interface{} `json:"selection"`
	Username  string      `json:"username,omitempty"`
	UserColor string      `json:"userColor,omitempty"`
}

// CommentEvent appends one opaque comment to the room log.
type CommentEvent struct {
	RoomID  string      `json:"roomId,omitempty"`
	Comment interface{} `json:"comment"`
}

// CommentsSync replaces the whole comment log, last writer wins.
type CommentsSync struct {
	RoomID   string        `json:"roomId,omitempty"`
	Comments []interface{} `json:"comments"`
}

type SaveCode struct {
	RoomID   string `json:"roomId"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

type CodeSaved struct {
	Success bool `json:"success"`
}

// Signal is an opaque WebRTC signaling payload relayed to one connection.
type Signal struct {
	UserToSignal string      `json:"userToSignal"`
	From         string      `json:"from"`
	Signal       interface{} `json:"signal"`
}

type LeaveRequest struct {
	RoomID string `json:"roomId"`
}

type UserLeft struct {
	SocketID string `json:"socketId"`
	Name     string `json:"name"`
}

type Disconnected struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

/*** HTTP boundary ***/

// CheckRoomResponse reports live-registry room state.
type CheckRoomResponse struct {
	Exists       bool          `json:"exists"`
	Participants []Participant `json:"participants,omitempty"`
	Count        int           `json:"count"`
	Language     string        `json:"language,omitempty"`
	HasCode      bool          `json:"hasCode,omitempty"`
	CommentCount int           `json:"commentCount"`
	Message      string        `json:"message,omitempty"`
}

type SaveRoomRequest struct {
	RoomID   string `json:"roomId"`
	Code     string `json:"code"`
	Language string `json:"language"`
	Owner    string `json:"owner"`
	RoomName string `json:"roomname"`
}

type SaveRoomResponse struct {
	Success bool   `json:"success"`
	RoomID  string `json:"roomId"`
}

type LoadRoomResponse struct {
	RoomID      string `json:"roomId"`
	Code        string `json:"code"`
	Language    string `json:"language"`
	RoomName    string `json:"roomname"`
	LastUpdated string `json:"lastUpdated"`
}

type AssistantRequest struct {
	Message string `json:"message"`
}

type AssistantResponse struct {
	Response string `json:"response"`
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Maheen0312/realtime-code-collab/internal/assistant"
	"github.com/Maheen0312/realtime-code-collab/internal/models"
	"github.com/Maheen0312/realtime-code-collab/internal/session"
	"github.com/Maheen0312/realtime-code-collab/internal/store"
	"github.com/Maheen0312/realtime-code-collab/internal/utils"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type Handlers struct {
	log         *utils.Logger
	registry    *session.Registry
	coordinator *session.Coordinator
	store       *store.RoomStore
	assistant   *assistant.Client
}

func NewHandlers(log *utils.Logger, registry *session.Registry, st *store.RoomStore, ai *assistant.Client) *Handlers {
	return &Handlers{
		log:         log,
		registry:    registry,
		coordinator: session.NewCoordinator(log, registry, session.NewDirectory()),
		store:       st,
		assistant:   ai,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// CollabWS runs the per-connection event loop. Teardown always flows through
// Disconnect so transport drops and explicit leaves converge on one cleanup.
func (h *Handlers) CollabWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := session.NewClient(conn)
	h.coordinator.Connect(client)
	defer h.coordinator.Disconnect(client)

	for {
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		h.coordinator.HandleFrame(client, frame)
	}
}

// CheckRoom reports live-registry state for a room id.
func (h *Handlers) CheckRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	room, ok := h.registry.Get(roomID)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(models.CheckRoomResponse{Exists: false, Message: "Room not found"})
		return
	}

	participants := room.Participants()
	state := room.Snapshot()
	writeJSON(w, models.CheckRoomResponse{
		Exists:       true,
		Participants: participants,
		Count:        len(participants),
		Language:     state.Language,
		HasCode:      state.Code != "",
		CommentCount: len(state.Comments),
	})
}

// SaveRoom persists a snapshot to the durable store. The live room stays
// authoritative: omitted code/language fall back to its current state.
func (h *Handlers) SaveRoom(w http.ResponseWriter, r *http.Request) {
	var req models.SaveRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.RoomID == "" {
		http.Error(w, "Room ID is required", http.StatusBadRequest)
		return
	}

	code, language := req.Code, req.Language
	if room, ok := h.registry.Get(req.RoomID); ok {
		state := room.Snapshot()
		if code == "" {
			code = state.Code
		}
		if language == "" {
			language = state.Language
		}
	}
	if language == "" {
		language = session.DefaultLanguage
	}

	rec := store.RoomRecord{
		RoomID:   req.RoomID,
		Code:     code,
		Language: language,
		Owner:    req.Owner,
		RoomName: req.RoomName,
	}
	if err := h.store.Save(r.Context(), rec); err != nil {
		h.log.Error("failed to save room snapshot", "roomId", req.RoomID, "error", err.Error())
		http.Error(w, "Failed to save room state", http.StatusInternalServerError)
		return
	}
	writeJSON(w, models.SaveRoomResponse{Success: true, RoomID: req.RoomID})
}

// LoadRoom returns the durable snapshot for a room id.
func (h *Handlers) LoadRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	rec, err := h.store.Load(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to load room snapshot", "roomId", roomID, "error", err.Error())
		http.Error(w, "Failed to load room state", http.StatusInternalServerError)
		return
	}
	writeJSON(w, models.LoadRoomResponse{
		RoomID:      rec.RoomID,
		Code:        rec.Code,
		Language:    rec.Language,
		RoomName:    rec.RoomName,
		LastUpdated: rec.LastUpdated.Format(time.RFC3339),
	})
}

// Assistant proxies a prompt to the external AI backend.
func (h *Handlers) Assistant(w http.ResponseWriter, r *http.Request) {
	var req models.AssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	answer, err := h.assistant.Ask(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, assistant.ErrTimeout) {
			http.Error(w, "AI request timed out", http.StatusGatewayTimeout)
			return
		}
		h.log.Error("assistant request failed", "error", err.Error())
		http.Error(w, "AI service unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, models.AssistantResponse{Response: answer})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

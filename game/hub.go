package game

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Session is one live client connection as the coordinator sees it.
// Send must not block; it reports false when the frame was dropped.
type Session interface {
	ID() string
	Send(data []byte) bool
}

// Envelope is the JSON frame exchanged over the event channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub groups sessions by room code and delivers named events to a single
// session or a whole room. A session belongs to at most one room.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[Session]bool
	membership map[Session]string
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[Session]bool),
		membership: make(map[Session]string),
	}
}

func (h *Hub) JoinRoom(roomCode string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.membership[s]; ok {
		h.dropLocked(prev, s)
	}
	group, ok := h.rooms[roomCode]
	if !ok {
		group = make(map[Session]bool)
		h.rooms[roomCode] = group
	}
	group[s] = true
	h.membership[s] = roomCode
}

func (h *Hub) Leave(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if roomCode, ok := h.membership[s]; ok {
		h.dropLocked(roomCode, s)
	}
}

func (h *Hub) dropLocked(roomCode string, s Session) {
	delete(h.membership, s)
	if group, ok := h.rooms[roomCode]; ok {
		delete(group, s)
		if len(group) == 0 {
			delete(h.rooms, roomCode)
		}
	}
}

func (h *Hub) Emit(s Session, event string, payload any) {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode outbound event")
		return
	}
	if !s.Send(data) {
		log.Warn().Str("event", event).Str("session_id", s.ID()).Msg("session send buffer full, frame dropped")
	}
}

func (h *Hub) Broadcast(roomCode, event string, payload any) {
	h.broadcast(roomCode, nil, event, payload)
}

// BroadcastExcept delivers to everyone in the room but the given session.
func (h *Hub) BroadcastExcept(roomCode string, except Session, event string, payload any) {
	h.broadcast(roomCode, except, event, payload)
}

func (h *Hub) broadcast(roomCode string, except Session, event string, payload any) {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode broadcast event")
		return
	}

	h.mu.RLock()
	targets := make([]Session, 0, len(h.rooms[roomCode]))
	for s := range h.rooms[roomCode] {
		if s != except {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if !s.Send(data) {
			log.Warn().Str("event", event).Str("room_code", roomCode).Str("session_id", s.ID()).Msg("broadcast frame dropped")
		}
	}
}

func encodeEnvelope(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

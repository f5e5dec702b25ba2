package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"inkwell/internal/connection"
	"inkwell/internal/document"
	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/datatypes"
)

// Inbound events.
const (
	EventJoinDocument           = "joinDocument"
	EventEditDocument           = "editDocument"
	EventUpdateConnectionStatus = "updateConnectionStatus"
)

// Outbound events.
const (
	EventJoinedDocument          = "joinedDocument"
	EventUserJoined              = "userJoined"
	EventUserLeft                = "userLeft"
	EventDocumentUpdated         = "documentUpdated"
	EventConnectionStatusUpdated = "connectionStatusUpdated"
	EventError                   = "error"
)

// Hub owns all realtime state: the set of live sessions and the room
// membership per document. Rooms live only in this process and only for the
// lifetime of the process; a restart starts from nothing.
type Hub struct {
	logger      *slog.Logger
	documents   *document.Service
	connections *connection.Service
	upgrader    websocket.Upgrader

	mu       sync.RWMutex
	sessions map[*session]bool
	rooms    map[string]map[*session]bool
}

func NewHub(documents *document.Service, connections *connection.Service, logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger,
		documents:   documents,
		connections: connections,
		upgrader: websocket.Upgrader{
			// Origin filtering happens in the CORS middleware ahead of
			// the upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[*session]bool),
		rooms:    make(map[string]map[*session]bool),
	}
}

// Serve upgrades the request and pumps events until the client goes away.
func (h *Hub) Serve(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	s := newSession(conn)
	h.mu.Lock()
	h.sessions[s] = true
	h.mu.Unlock()
	h.logger.Info("client connected", "session_id", s.id)

	h.listen(ctx.Request.Context(), s)
}

func (h *Hub) listen(ctx context.Context, s *session) {
	defer h.disconnect(s)

	for {
		var env Envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Error("websocket read failed", "session_id", s.id, "error", err)
			}
			return
		}

		switch env.Event {
		case EventJoinDocument:
			h.handleJoin(ctx, s, env.Data)
		case EventEditDocument:
			h.handleEdit(ctx, s, env.Data)
		case EventUpdateConnectionStatus:
			h.handleConnectionStatus(ctx, s, env.Data)
		default:
			h.sendError(s, "unknown event")
		}
	}
}

type joinPayload struct {
	DocumentID string `json:"documentId"`
	UserID     string `json:"userId"`
}

func (h *Hub) handleJoin(ctx context.Context, s *session, data json.RawMessage) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.DocumentID == "" || p.UserID == "" {
		h.sendError(s, "invalid joinDocument payload")
		return
	}

	// Authorization failures stay private to the caller; the room never
	// learns the join was attempted.
	if _, err := h.documents.Get(ctx, p.DocumentID, p.UserID); err != nil {
		h.sendError(s, "Access denied or document not found")
		return
	}

	h.mu.Lock()
	room, ok := h.rooms[p.DocumentID]
	if !ok {
		room = make(map[*session]bool)
		h.rooms[p.DocumentID] = room
	}
	room[s] = true
	h.mu.Unlock()

	if err := s.send(EventJoinedDocument, gin.H{"documentId": p.DocumentID}); err != nil {
		h.evict(s)
		return
	}
	h.broadcast(p.DocumentID, s, EventUserJoined, gin.H{"sessionId": s.id})

	h.logger.Info("session joined document", "session_id", s.id, "doc_id", p.DocumentID)
}

type editPayload struct {
	DocumentID string          `json:"documentId"`
	Content    json.RawMessage `json:"content"`
	UserID     string          `json:"userId"`
}

func (h *Hub) handleEdit(ctx context.Context, s *session, data json.RawMessage) {
	var p editPayload
	if err := json.Unmarshal(data, &p); err != nil || p.DocumentID == "" || p.UserID == "" || len(p.Content) == 0 {
		h.sendError(s, "invalid editDocument payload")
		return
	}

	// Every edit re-validates through the same lookup the join used.
	if _, err := h.documents.Get(ctx, p.DocumentID, p.UserID); err != nil {
		h.sendError(s, "Access denied or document not found")
		return
	}

	_, err := h.documents.Update(ctx, p.DocumentID, p.UserID, document.UpdateInput{
		Content: datatypes.JSON(p.Content),
	})
	if err != nil {
		h.sendError(s, "failed to save document")
		return
	}

	// Last write wins; edits fan out in arrival order with no merging.
	h.broadcast(p.DocumentID, s, EventDocumentUpdated, gin.H{
		"documentId": p.DocumentID,
		"content":    p.Content,
		"updatedBy":  p.UserID,
	})
}

type connectionStatusPayload struct {
	ID     string                  `json:"id"`
	Status models.ConnectionStatus `json:"status"`
}

func (h *Hub) handleConnectionStatus(ctx context.Context, s *session, data json.RawMessage) {
	var p connectionStatusPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ID == "" {
		h.sendError(s, "invalid updateConnectionStatus payload")
		return
	}

	conn, err := h.connections.UpdateStatus(ctx, p.ID, p.Status)
	if err != nil {
		h.sendError(s, err.Error())
		return
	}

	h.broadcastAll(EventConnectionStatusUpdated, conn)
}

// broadcast sends an event to every occupant of a room except the sender.
func (h *Hub) broadcast(docID string, sender *session, event string, data any) {
	for _, target := range h.roomSnapshot(docID, sender) {
		if err := target.send(event, data); err != nil {
			h.evict(target)
		}
	}
}

// broadcastAll fans an event out to every connected session, sender included.
func (h *Hub) broadcastAll(event string, data any) {
	h.mu.RLock()
	targets := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, target := range targets {
		if err := target.send(event, data); err != nil {
			h.evict(target)
		}
	}
}

func (h *Hub) roomSnapshot(docID string, exclude *session) []*session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.rooms[docID]
	targets := make([]*session, 0, len(room))
	for s := range room {
		if s != exclude {
			targets = append(targets, s)
		}
	}
	return targets
}

// disconnect tears a session down: it leaves every room it occupied, each
// remaining occupant hears userLeft, and empty rooms are dropped.
func (h *Hub) disconnect(s *session) {
	h.mu.Lock()
	if !h.sessions[s] {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s)

	left := make(map[string][]*session)
	for docID, room := range h.rooms {
		if !room[s] {
			continue
		}
		delete(room, s)
		if len(room) == 0 {
			delete(h.rooms, docID)
			continue
		}
		occupants := make([]*session, 0, len(room))
		for occupant := range room {
			occupants = append(occupants, occupant)
		}
		left[docID] = occupants
	}
	h.mu.Unlock()

	_ = s.conn.Close()

	for docID, occupants := range left {
		for _, occupant := range occupants {
			if err := occupant.send(EventUserLeft, gin.H{"sessionId": s.id}); err != nil {
				h.evict(occupant)
			}
		}
		h.logger.Info("session left document", "session_id", s.id, "doc_id", docID)
	}
}

// evict tears down a session whose writes are failing, off the caller's
// goroutine to avoid re-entering broadcast paths.
func (h *Hub) evict(s *session) {
	go h.disconnect(s)
}

func (h *Hub) sendError(s *session, message string) {
	if err := s.send(EventError, message); err != nil {
		h.evict(s)
	}
}

// RoomCount reports how many rooms currently have occupants.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

package realtime

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Envelope is the wire format for every socket event, inbound and outbound.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// session is one live websocket connection. Two sessions from the same user
// are tracked independently; membership is keyed by session id, not user id.
type session struct {
	id   string
	conn *websocket.Conn

	// serializes writes; broadcasts from different rooms may target the
	// same connection concurrently
	writeMu sync.Mutex
}

func newSession(conn *websocket.Conn) *session {
	return &session{id: newSessionID(), conn: conn}
}

func (s *session) send(event string, data any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(outboundEnvelope{Event: event, Data: data})
}

func newSessionID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inkwell/internal/connection"
	"inkwell/internal/database"
	"inkwell/internal/document"
	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type hubFixture struct {
	hub       *Hub
	documents *document.Service
	conns     *connection.Service
	db        *gorm.DB
	server    *httptest.Server
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	documents := document.NewService(db, nil, log)
	conns := connection.NewService(db, log)
	hub := NewHub(documents, conns, log)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/ws", hub.Serve)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return &hubFixture{hub: hub, documents: documents, conns: conns, db: db, server: server}
}

func (f *hubFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func (f *hubFixture) seedUser(t *testing.T, name string) *models.User {
	t.Helper()

	user := models.User{ID: uuid.NewString(), Email: name + "@example.com", Password: "hash", Name: name}
	require.NoError(t, f.db.Create(&user).Error)
	return &user
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"event": event, "data": data}))
}

func readEvent(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func assertNoEvent(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var env Envelope
	err := conn.ReadJSON(&env)
	assert.Error(t, err, "expected no event, got %q", env.Event)
}

func TestJoin_OwnerGetsAck_OthersGetUserJoined(t *testing.T) {
	f := newHubFixture(t)
	owner := f.seedUser(t, "owner")

	doc, err := f.documents.Create(context.Background(), owner.ID, document.CreateInput{Title: "shared pad"})
	require.NoError(t, err)

	first := f.dial(t)
	sendEvent(t, first, EventJoinDocument, gin.H{"documentId": doc.ID, "userId": owner.ID})

	env := readEvent(t, first)
	assert.Equal(t, EventJoinedDocument, env.Event)

	second := f.dial(t)
	sendEvent(t, second, EventJoinDocument, gin.H{"documentId": doc.ID, "userId": owner.ID})

	env = readEvent(t, second)
	assert.Equal(t, EventJoinedDocument, env.Event)

	// The earlier occupant hears about the newcomer; the newcomer does not
	// hear about itself.
	env = readEvent(t, first)
	assert.Equal(t, EventUserJoined, env.Event)
	assertNoEvent(t, second)
}

func TestJoin_DeniedStaysPrivate(t *testing.T) {
	f := newHubFixture(t)
	owner := f.seedUser(t, "owner")
	intruder := f.seedUser(t, "intruder")

	doc, err := f.documents.Create(context.Background(), owner.ID, document.CreateInput{Title: "private"})
	require.NoError(t, err)

	occupant := f.dial(t)
	sendEvent(t, occupant, EventJoinDocument, gin.H{"documentId": doc.ID, "userId": owner.ID})
	require.Equal(t, EventJoinedDocument, readEvent(t, occupant).Event)

	denied := f.dial(t)
	sendEvent(t, denied, EventJoinDocument, gin.H{"documentId": doc.ID, "userId": intruder.ID})

	env := readEvent(t, denied)
	assert.Equal(t, EventError, env.Event)

	// No userJoined leaks to the room.
	assertNoEvent(t, occupant)
}

func TestJoin_MissingDocument(t *testing.T) {
	f := newHubFixture(t)
	user := f.seedUser(t, "user")

	conn := f.dial(t)
	sendEvent(t, conn, EventJoinDocument, gin.H{"documentId": uuid.NewString(), "userId": user.ID})

	assert.Equal(t, EventError, readEvent(t, conn).Event)
}

func TestEdit_BroadcastsAndPersists(t *testing.T) {
	f := newHubFixture(t)
	owner := f.seedUser(t, "owner")
	ctx := context.Background()

	doc, err := f.documents.Create(ctx, owner.ID, document.CreateInput{Title: "pad"})
	require.NoError(t, err)

	a := f.dial(t)
	sendEvent(t, a, EventJoinDocument, gin.H{"documentId": doc.ID, "userId": owner.ID})
	require.Equal(t, EventJoinedDocument, readEvent(t, a).Event)

	b := f.dial(t)
	sendEvent(t, b, EventJoinDocument, gin.H{"documentId": doc.ID, "userId": owner.ID})
	require.Equal(t, EventJoinedDocument, readEvent(t, b).Event)
	require.Equal(t, EventUserJoined, readEvent(t, a).Event)

	content := map[string]any{"blocks": []any{map[string]any{"type": "text", "data": map[string]any{"text": "v2"}}}}
	sendEvent(t, a, EventEditDocument, gin.H{"documentId": doc.ID, "content": content, "userId": owner.ID})

	env := readEvent(t, b)
	require.Equal(t, EventDocumentUpdated, env.Event)

	var payload struct {
		DocumentID string          `json:"documentId"`
		Content    json.RawMessage `json:"content"`
		UpdatedBy  string          `json:"updatedBy"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, doc.ID, payload.DocumentID)
	assert.Equal(t, owner.ID, payload.UpdatedBy)

	// The sender is excluded from the fan-out.
	assertNoEvent(t, a)

	persisted, err := f.documents.Get(ctx, doc.ID, owner.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload.Content), string(persisted.Content))
}

func TestEdit_DeniedForNonOwner(t *testing.T) {
	f := newHubFixture(t)
	owner := f.seedUser(t, "owner")
	other := f.seedUser(t, "other")
	ctx := context.Background()

	doc, err := f.documents.Create(ctx, owner.ID, document.CreateInput{Title: "pad"})
	require.NoError(t, err)

	conn := f.dial(t)
	sendEvent(t, conn, EventEditDocument, gin.H{
		"documentId": doc.ID,
		"content":    gin.H{"blocks": []any{}},
		"userId":     other.ID,
	})

	assert.Equal(t, EventError, readEvent(t, conn).Event)
}

func TestDisconnect_BroadcastsUserLeft(t *testing.T) {
	f := newHubFixture(t)
	owner := f.seedUser(t, "owner")

	doc, err := f.documents.Create(context.Background(), owner.ID, document.CreateInput{Title: "pad"})
	require.NoError(t, err)

	stayer := f.dial(t)
	sendEvent(t, stayer, EventJoinDocument, gin.H{"documentId": doc.ID, "userId": owner.ID})
	require.Equal(t, EventJoinedDocument, readEvent(t, stayer).Event)

	leaver := f.dial(t)
	sendEvent(t, leaver, EventJoinDocument, gin.H{"documentId": doc.ID, "userId": owner.ID})
	require.Equal(t, EventJoinedDocument, readEvent(t, leaver).Event)

	joined := readEvent(t, stayer)
	require.Equal(t, EventUserJoined, joined.Event)
	var joinedPayload struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(joined.Data, &joinedPayload))

	require.NoError(t, leaver.Close())

	left := readEvent(t, stayer)
	require.Equal(t, EventUserLeft, left.Event)
	var leftPayload struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(left.Data, &leftPayload))
	assert.Equal(t, joinedPayload.SessionID, leftPayload.SessionID)

	// The room drains once the last occupant goes away.
	require.NoError(t, stayer.Close())
	assert.Eventually(t, func() bool { return f.hub.RoomCount() == 0 },
		2*time.Second, 20*time.Millisecond)
}

func TestUpdateConnectionStatus_FansOutToEveryone(t *testing.T) {
	f := newHubFixture(t)
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	ctx := context.Background()

	pending, err := f.conns.Request(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	watcher := f.dial(t)
	actor := f.dial(t)

	sendEvent(t, actor, EventUpdateConnectionStatus, gin.H{"id": pending.ID, "status": models.ConnectionAccepted})

	for _, conn := range []*websocket.Conn{watcher, actor} {
		env := readEvent(t, conn)
		require.Equal(t, EventConnectionStatusUpdated, env.Event)

		var updated models.Connection
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, models.ConnectionAccepted, updated.Status)
	}
}

func TestUnknownEvent(t *testing.T) {
	f := newHubFixture(t)

	conn := f.dial(t)
	sendEvent(t, conn, "teleport", gin.H{})

	assert.Equal(t, EventError, readEvent(t, conn).Event)
}

package connection

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return NewService(db, slog.New(slog.NewTextHandler(io.Discard, nil))), db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := models.User{
		ID:       uuid.NewString(),
		Email:    name + "@example.com",
		Password: "hash",
		Name:     name,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestRequest_CreatesPending(t *testing.T) {
	t.Parallel()

	s, db := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conn, err := s.Request(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, conn.Status)
	assert.Equal(t, alice.ID, conn.RequesterID)
	assert.Equal(t, bob.ID, conn.ReceiverID)
}

func TestRequest_SelfAndMissingReceiver(t *testing.T) {
	t.Parallel()

	s, db := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")

	_, err := s.Request(ctx, alice.ID, alice.ID)
	assert.True(t, models.IsValidation(err))

	_, err = s.Request(ctx, alice.ID, uuid.NewString())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestList_EnrichedBothDirections(t *testing.T) {
	t.Parallel()

	s, db := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	_, err := s.Request(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = s.Request(ctx, carol.ID, alice.ID)
	require.NoError(t, err)

	page, err := s.List(ctx, alice.ID, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)

	// Newest first: carol's request to alice.
	newest := page.Data[0]
	require.NotNil(t, newest.Requester)
	require.NotNil(t, newest.Receiver)
	assert.Equal(t, "carol", newest.Requester.Name)
	assert.Equal(t, "alice", newest.Receiver.Name)

	// Bob only sees the one he is part of.
	page, err = s.List(ctx, bob.ID, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}

func TestList_StatusFilter(t *testing.T) {
	t.Parallel()

	s, db := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	accepted, err := s.Request(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = s.Request(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, accepted.ID, models.ConnectionAccepted)
	require.NoError(t, err)

	page, err := s.List(ctx, alice.ID, models.ConnectionAccepted, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, accepted.ID, page.Data[0].ID)

	_, err = s.List(ctx, alice.ID, "FROZEN", 1, 10)
	assert.True(t, models.IsValidation(err))
}

func TestUpdateStatus_PermissiveTransitions(t *testing.T) {
	t.Parallel()

	s, db := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conn, err := s.Request(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Any status can follow any other.
	for _, status := range []models.ConnectionStatus{
		models.ConnectionBlocked,
		models.ConnectionAccepted,
		models.ConnectionPending,
		models.ConnectionRejected,
	} {
		updated, err := s.UpdateStatus(ctx, conn.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	_, err = s.UpdateStatus(ctx, conn.ID, "MAYBE")
	assert.True(t, models.IsValidation(err))
}

func TestUpdateStatus_NotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)

	_, err := s.UpdateStatus(context.Background(), uuid.NewString(), models.ConnectionAccepted)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

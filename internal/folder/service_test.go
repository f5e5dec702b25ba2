package folder

import (
	"context"
	"io"
	"log/slog"
	"testing"

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

func createDocument(t *testing.T, db *gorm.DB, ownerID, title string) *models.Document {
	t.Helper()

	doc := models.Document{
		ID:      uuid.NewString(),
		Title:   title,
		OwnerID: ownerID,
		Status:  models.StatusDraft,
	}
	require.NoError(t, db.Create(&doc).Error)
	return &doc
}

func TestCreate_BlankNameFails(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)

	_, err := s.Create(context.Background(), CreateInput{Name: "   ", OwnerID: "u1"})
	assert.True(t, models.IsValidation(err))
}

func TestCreate_AttachesOwnedDocumentsOnly(t *testing.T) {
	t.Parallel()

	s, db := newTestService(t)
	ctx := context.Background()

	mine := createDocument(t, db, "u1", "mine")
	theirs := createDocument(t, db, "u2", "theirs")

	folder, err := s.Create(ctx, CreateInput{
		Name:        "projects",
		OwnerID:     "u1",
		DocumentIDs: []string{mine.ID, theirs.ID},
	})
	require.NoError(t, err)
	require.Len(t, folder.Documents, 1)
	assert.Equal(t, mine.ID, folder.Documents[0].ID)

	var unchanged models.Document
	require.NoError(t, db.First(&unchanged, "id = ?", theirs.ID).Error)
	assert.Nil(t, unchanged.FolderID)
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)

	_, err := s.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdate_RenamesFolder(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()

	folder, err := s.Create(ctx, CreateInput{Name: "old", OwnerID: "u1"})
	require.NoError(t, err)

	name := "new"
	updated, err := s.Update(ctx, folder.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Name)

	blank := ""
	_, err = s.Update(ctx, folder.ID, UpdateInput{Name: &blank})
	assert.True(t, models.IsValidation(err))
}

func TestDelete_DetachesDocuments(t *testing.T) {
	t.Parallel()

	s, db := newTestService(t)
	ctx := context.Background()

	doc := createDocument(t, db, "u1", "kept")
	folder, err := s.Create(ctx, CreateInput{
		Name:        "doomed",
		OwnerID:     "u1",
		DocumentIDs: []string{doc.ID},
	})
	require.NoError(t, err)

	_, err = s.Delete(ctx, folder.ID)
	require.NoError(t, err)

	_, err = s.Get(ctx, folder.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	var survivor models.Document
	require.NoError(t, db.First(&survivor, "id = ?", doc.ID).Error)
	assert.Nil(t, survivor.FolderID)
}

func TestList_SearchAndPagination(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"work", "work archive", "personal"} {
		_, err := s.Create(ctx, CreateInput{Name: name, OwnerID: "u1"})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, CreateInput{Name: "work", OwnerID: "u2"})
	require.NoError(t, err)

	page, err := s.List(ctx, ListQuery{OwnerID: "u1", Search: "work"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = s.List(ctx, ListQuery{OwnerID: "u1", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 2, page.TotalPages)
}

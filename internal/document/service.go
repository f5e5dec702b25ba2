package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cache is the slice of the redis cache the service needs. A nil cache
// disables caching and every read goes to the database.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Del(ctx context.Context, keys ...string) error
}

type Service struct {
	db     *gorm.DB
	cache  Cache
	logger *slog.Logger
}

func NewService(db *gorm.DB, c Cache, logger *slog.Logger) *Service {
	return &Service{db: db, cache: c, logger: logger}
}

type CreateInput struct {
	Title    string
	Content  datatypes.JSON
	FolderID *string
}

type UpdateInput struct {
	Title    *string
	Content  datatypes.JSON
	FolderID *string
}

type ListQuery struct {
	Search string
	Status models.DocumentStatus
	Page   int
	Limit  int
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*models.Document, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.Invalid("title", "title is required")
	}

	doc := models.Document{
		ID:       uuid.NewString(),
		Title:    in.Title,
		Content:  in.Content,
		OwnerID:  ownerID,
		Status:   models.StatusDraft,
		FolderID: in.FolderID,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		s.logger.Error("failed to create document", "owner_id", ownerID, "error", err)
		return nil, models.ErrInternal
	}

	return &doc, nil
}

// List returns the caller's documents that are not in the trash, newest
// update first. Trashed rows are only visible through ListTrashed.
func (s *Service) List(ctx context.Context, ownerID string, q ListQuery) (models.Page[models.Document], error) {
	page, limit := normalizePage(q.Page, q.Limit)

	tx := s.db.WithContext(ctx).Model(&models.Document{}).
		Where("owner_id = ? AND in_trash = ?", ownerID, false)
	if q.Search != "" {
		tx = tx.Where("title LIKE ?", "%"+q.Search+"%")
	}
	if q.Status != "" {
		if !q.Status.Valid() {
			return models.Page[models.Document]{}, models.Invalid("status", "unknown document status")
		}
		tx = tx.Where("status = ?", q.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		s.logger.Error("failed to count documents", "owner_id", ownerID, "error", err)
		return models.Page[models.Document]{}, models.ErrInternal
	}

	var docs []models.Document
	err := tx.Order("updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		s.logger.Error("failed to list documents", "owner_id", ownerID, "error", err)
		return models.Page[models.Document]{}, models.ErrInternal
	}

	return models.NewPage(docs, total, page, limit), nil
}

// Get loads a document and enforces the single ownership rule: only the
// owner may see it. Sharing grants deliberately do not bypass this check.
func (s *Service) Get(ctx context.Context, id, callerID string) (*models.Document, error) {
	doc, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != callerID {
		return nil, models.ErrForbidden
	}
	return doc, nil
}

func (s *Service) Update(ctx context.Context, id, callerID string, in UpdateInput) (*models.Document, error) {
	doc, err := s.Get(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, models.Invalid("title", "title cannot be empty")
		}
		updates["title"] = *in.Title
	}
	if in.Content != nil {
		updates["content"] = in.Content
	}
	if in.FolderID != nil {
		updates["folder_id"] = *in.FolderID
	}
	if len(updates) == 0 {
		return doc, nil
	}

	if err := s.db.WithContext(ctx).Model(doc).Updates(updates).Error; err != nil {
		s.logger.Error("failed to update document", "doc_id", id, "error", err)
		return nil, models.ErrInternal
	}
	s.invalidate(ctx, id)

	return s.byID(ctx, id)
}

func (s *Service) Remove(ctx context.Context, id, callerID string) (*models.Document, error) {
	doc, err := s.Get(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id).Error; err != nil {
		s.logger.Error("failed to delete document", "doc_id", id, "error", err)
		return nil, models.ErrInternal
	}
	s.invalidate(ctx, id)

	return doc, nil
}

func (s *Service) MoveToTrash(ctx context.Context, id, callerID string) (*models.Document, error) {
	return s.setTrash(ctx, id, callerID, true)
}

func (s *Service) RestoreFromTrash(ctx context.Context, id, callerID string) (*models.Document, error) {
	doc, err := s.Get(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if !doc.InTrash {
		return nil, models.Invalid("inTrash", "document is not in trash")
	}
	return s.setTrash(ctx, id, callerID, false)
}

func (s *Service) setTrash(ctx context.Context, id, callerID string, inTrash bool) (*models.Document, error) {
	doc, err := s.Get(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(doc).Update("in_trash", inTrash).Error; err != nil {
		s.logger.Error("failed to change trash state", "doc_id", id, "error", err)
		return nil, models.ErrInternal
	}
	s.invalidate(ctx, id)

	return s.byID(ctx, id)
}

func (s *Service) ListTrashed(ctx context.Context, ownerID string) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND in_trash = ?", ownerID, true).
		Order("updated_at DESC").
		Find(&docs).Error
	if err != nil {
		s.logger.Error("failed to list trashed documents", "owner_id", ownerID, "error", err)
		return nil, models.ErrInternal
	}
	return docs, nil
}

// EmptyTrash permanently deletes the caller's trashed documents and returns
// how many rows went away. Other users' trash is untouched.
func (s *Service) EmptyTrash(ctx context.Context, ownerID string) (int64, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Document{}).
		Where("owner_id = ? AND in_trash = ?", ownerID, true).
		Pluck("id", &ids).Error
	if err != nil {
		s.logger.Error("failed to collect trashed documents", "owner_id", ownerID, "error", err)
		return 0, models.ErrInternal
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).Delete(&models.Document{}, "id IN ?", ids)
	if res.Error != nil {
		s.logger.Error("failed to empty trash", "owner_id", ownerID, "error", res.Error)
		return 0, models.ErrInternal
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cache.Key(id))
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, keys...); err != nil {
			s.logger.Warn("failed to invalidate document cache", "error", err)
		}
	}

	return res.RowsAffected, nil
}

// ChangeStatus sets any valid status value; there is no transition table.
func (s *Service) ChangeStatus(ctx context.Context, id, callerID string, status models.DocumentStatus) (*models.Document, error) {
	if !status.Valid() {
		return nil, models.Invalid("status", "unknown document status")
	}

	doc, err := s.Get(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(doc).Update("status", status).Error; err != nil {
		s.logger.Error("failed to change document status", "doc_id", id, "error", err)
		return nil, models.ErrInternal
	}
	s.invalidate(ctx, id)

	return s.byID(ctx, id)
}

// ListByOwner returns everything a user owns, trash included. Used by the
// user profile endpoints.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&docs).Error
	if err != nil {
		s.logger.Error("failed to list documents by owner", "owner_id", ownerID, "error", err)
		return nil, models.ErrInternal
	}
	return docs, nil
}

func (s *Service) byID(ctx context.Context, id string) (*models.Document, error) {
	if s.cache != nil {
		if docJSON, err := s.cache.Get(ctx, cache.Key(id)); err == nil && docJSON != "" {
			var doc models.Document
			if err := json.Unmarshal([]byte(docJSON), &doc); err == nil {
				return &doc, nil
			}
		}
	}

	var doc models.Document
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, models.ErrNotFound)
		}
		s.logger.Error("failed to get document", "doc_id", id, "error", err)
		return nil, models.ErrInternal
	}

	if s.cache != nil {
		if docJSON, err := json.Marshal(&doc); err == nil {
			if err := s.cache.Set(ctx, cache.Key(id), string(docJSON)); err != nil {
				s.logger.Warn("failed to cache document", "doc_id", id, "error", err)
			}
		}
	}

	return &doc, nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.Key(id)); err != nil {
		s.logger.Warn("failed to invalidate document cache", "doc_id", id, "error", err)
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

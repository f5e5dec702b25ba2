package folder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

type CreateInput struct {
	Name        string
	OwnerID     string
	DocumentIDs []string
}

type UpdateInput struct {
	Name *string
}

type ListQuery struct {
	OwnerID string
	Search  string
	Page    int
	Limit   int
}

// Create makes a folder and optionally attaches existing documents to it.
// Only documents the owner actually owns can be attached.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Folder, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.Invalid("name", "name is required")
	}

	folder := models.Folder{
		ID:      uuid.NewString(),
		Name:    in.Name,
		OwnerID: in.OwnerID,
	}
	if err := s.db.WithContext(ctx).Create(&folder).Error; err != nil {
		s.logger.Error("failed to create folder", "owner_id", in.OwnerID, "error", err)
		return nil, models.ErrInternal
	}

	if len(in.DocumentIDs) > 0 {
		err := s.db.WithContext(ctx).Model(&models.Document{}).
			Where("id IN ? AND owner_id = ?", in.DocumentIDs, in.OwnerID).
			Update("folder_id", folder.ID).Error
		if err != nil {
			s.logger.Error("failed to attach documents to folder", "folder_id", folder.ID, "error", err)
			return nil, models.ErrInternal
		}
	}

	return s.Get(ctx, folder.ID)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Folder, error) {
	var folder models.Folder
	err := s.db.WithContext(ctx).Preload("Documents").Where("id = ?", id).First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("folder %s: %w", id, models.ErrNotFound)
		}
		s.logger.Error("failed to get folder", "folder_id", id, "error", err)
		return nil, models.ErrInternal
	}
	return &folder, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Folder, error) {
	folder, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, models.Invalid("name", "name cannot be empty")
		}
		if err := s.db.WithContext(ctx).Model(folder).Update("name", *in.Name).Error; err != nil {
			s.logger.Error("failed to update folder", "folder_id", id, "error", err)
			return nil, models.ErrInternal
		}
	}

	return s.Get(ctx, id)
}

// Delete removes the folder; documents inside keep living with a cleared
// folder reference.
func (s *Service) Delete(ctx context.Context, id string) (*models.Folder, error) {
	folder, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.Document{}).
		Where("folder_id = ?", id).
		Update("folder_id", nil).Error
	if err != nil {
		s.logger.Error("failed to detach documents", "folder_id", id, "error", err)
		return nil, models.ErrInternal
	}

	if err := s.db.WithContext(ctx).Delete(&models.Folder{}, "id = ?", id).Error; err != nil {
		s.logger.Error("failed to delete folder", "folder_id", id, "error", err)
		return nil, models.ErrInternal
	}

	return folder, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) (models.Page[models.Folder], error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	tx := s.db.WithContext(ctx).Model(&models.Folder{}).Where("owner_id = ?", q.OwnerID)
	if q.Search != "" {
		tx = tx.Where("name LIKE ?", "%"+q.Search+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		s.logger.Error("failed to count folders", "owner_id", q.OwnerID, "error", err)
		return models.Page[models.Folder]{}, models.ErrInternal
	}

	var folders []models.Folder
	err := tx.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&folders).Error
	if err != nil {
		s.logger.Error("failed to list folders", "owner_id", q.OwnerID, "error", err)
		return models.Page[models.Folder]{}, models.ErrInternal
	}

	return models.NewPage(folders, total, page, limit), nil
}

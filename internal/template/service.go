package template

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service manages reusable document templates. Templates are global, not
// per-user.
type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

type CreateInput struct {
	Name        string
	Description string
	Content     datatypes.JSON
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.DocumentTemplate, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.Invalid("name", "name is required")
	}

	tpl := models.DocumentTemplate{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Content:     in.Content,
	}
	if err := s.db.WithContext(ctx).Create(&tpl).Error; err != nil {
		s.logger.Error("failed to create template", "error", err)
		return nil, models.ErrInternal
	}
	return &tpl, nil
}

func (s *Service) List(ctx context.Context) ([]models.DocumentTemplate, error) {
	var templates []models.DocumentTemplate
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&templates).Error; err != nil {
		s.logger.Error("failed to list templates", "error", err)
		return nil, models.ErrInternal
	}
	return templates, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.DocumentTemplate, error) {
	var tpl models.DocumentTemplate
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("template %s: %w", id, models.ErrNotFound)
		}
		s.logger.Error("failed to get template", "template_id", id, "error", err)
		return nil, models.ErrInternal
	}
	return &tpl, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.DocumentTemplate{}, "id = ?", id)
	if res.Error != nil {
		s.logger.Error("failed to delete template", "template_id", id, "error", res.Error)
		return models.ErrInternal
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("template %s: %w", id, models.ErrNotFound)
	}
	return nil
}

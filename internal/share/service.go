package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"inkwell/internal/mail"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

type Service struct {
	db      *gorm.DB
	mailer  mail.Mailer
	logger  *slog.Logger
	baseURL string
}

func NewService(db *gorm.DB, mailer mail.Mailer, logger *slog.Logger, baseURL string) *Service {
	return &Service{db: db, mailer: mailer, logger: logger, baseURL: baseURL}
}

// Share grants a user an access level on a document. At most one grant may
// exist per (document, user) pair. The "document shared" email is
// best-effort: a delivery failure is logged and never rolls the grant back.
func (s *Service) Share(ctx context.Context, documentID, userID string, level models.AccessLevel) (*models.SharedDocument, error) {
	if !level.Valid() {
		return nil, models.Invalid("accessLevel", "unknown access level")
	}

	var doc models.Document
	err := s.db.WithContext(ctx).Where("id = ?", documentID).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %s: %w", documentID, models.ErrNotFound)
		}
		s.logger.Error("failed to get document", "doc_id", documentID, "error", err)
		return nil, models.ErrInternal
	}

	var grantee models.User
	err = s.db.WithContext(ctx).Where("id = ?", userID).First(&grantee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
		}
		s.logger.Error("failed to get user", "user_id", userID, "error", err)
		return nil, models.ErrInternal
	}

	var existing models.SharedDocument
	err = s.db.WithContext(ctx).
		Where("document_id = ? AND user_id = ?", documentID, userID).
		First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("document already shared with this user: %w", models.ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("failed to check existing grant", "doc_id", documentID, "error", err)
		return nil, models.ErrInternal
	}

	grant := models.SharedDocument{
		DocumentID:  documentID,
		UserID:      userID,
		AccessLevel: level,
	}
	if err := s.db.WithContext(ctx).Create(&grant).Error; err != nil {
		s.logger.Error("failed to create grant", "doc_id", documentID, "user_id", userID, "error", err)
		return nil, models.ErrInternal
	}

	s.notify(ctx, &doc, &grantee)

	return &grant, nil
}

func (s *Service) notify(ctx context.Context, doc *models.Document, grantee *models.User) {
	var sender models.User
	if err := s.db.WithContext(ctx).Where("id = ?", doc.OwnerID).First(&sender).Error; err != nil {
		s.logger.Warn("share notification skipped, owner not found", "doc_id", doc.ID, "error", err)
		return
	}

	link := fmt.Sprintf("%s/documents/%s", s.baseURL, doc.ID)
	err := s.mailer.SendDocumentShared(grantee.Email, grantee.Name, sender.Name, doc.Title, link)
	if err != nil {
		s.logger.Warn("failed to send share notification",
			"doc_id", doc.ID, "to", grantee.Email, "error", err)
	}
}

// ListForUser returns the grants issued to a user together with the
// documents they point at.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.SharedDocument, error) {
	var grants []models.SharedDocument
	err := s.db.WithContext(ctx).
		Preload("Document").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&grants).Error
	if err != nil {
		s.logger.Error("failed to list grants", "user_id", userID, "error", err)
		return nil, models.ErrInternal
	}
	return grants, nil
}

func (s *Service) Revoke(ctx context.Context, documentID, userID string) error {
	res := s.db.WithContext(ctx).
		Where("document_id = ? AND user_id = ?", documentID, userID).
		Delete(&models.SharedDocument{})
	if res.Error != nil {
		s.logger.Error("failed to revoke grant", "doc_id", documentID, "user_id", userID, "error", res.Error)
		return models.ErrInternal
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("shared access not found: %w", models.ErrNotFound)
	}
	return nil
}

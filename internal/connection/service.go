package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

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

// UserSummary is the slice of a profile each connection row carries.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type View struct {
	models.Connection
	Requester *UserSummary `json:"requester,omitempty"`
	Receiver  *UserSummary `json:"receiver,omitempty"`
}

// Request creates a PENDING connection from requester to receiver.
// Duplicate requests are allowed; requesting yourself is not.
func (s *Service) Request(ctx context.Context, requesterID, receiverID string) (*models.Connection, error) {
	if receiverID == "" {
		return nil, models.Invalid("receiverId", "receiverId is required")
	}
	if requesterID == receiverID {
		return nil, models.Invalid("receiverId", "cannot request a connection with yourself")
	}

	var receiver models.User
	err := s.db.WithContext(ctx).Where("id = ?", receiverID).First(&receiver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", receiverID, models.ErrNotFound)
		}
		s.logger.Error("failed to get receiver", "user_id", receiverID, "error", err)
		return nil, models.ErrInternal
	}

	conn := models.Connection{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.ConnectionPending,
	}
	if err := s.db.WithContext(ctx).Create(&conn).Error; err != nil {
		s.logger.Error("failed to create connection", "requester_id", requesterID, "error", err)
		return nil, models.ErrInternal
	}

	return &conn, nil
}

// List returns connections where the user is requester or receiver,
// newest-first, each row enriched with both parties' profile summaries.
func (s *Service) List(ctx context.Context, userID string, status models.ConnectionStatus, page, limit int) (models.Page[View], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	tx := s.db.WithContext(ctx).Model(&models.Connection{}).
		Where("requester_id = ? OR receiver_id = ?", userID, userID)
	if status != "" {
		if !status.Valid() {
			return models.Page[View]{}, models.Invalid("status", "unknown connection status")
		}
		tx = tx.Where("status = ?", status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		s.logger.Error("failed to count connections", "user_id", userID, "error", err)
		return models.Page[View]{}, models.ErrInternal
	}

	var conns []models.Connection
	err := tx.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&conns).Error
	if err != nil {
		s.logger.Error("failed to list connections", "user_id", userID, "error", err)
		return models.Page[View]{}, models.ErrInternal
	}

	views, err := s.enrich(ctx, conns)
	if err != nil {
		return models.Page[View]{}, err
	}

	return models.NewPage(views, total, page, limit), nil
}

func (s *Service) enrich(ctx context.Context, conns []models.Connection) ([]View, error) {
	idSet := map[string]struct{}{}
	for _, c := range conns {
		idSet[c.RequesterID] = struct{}{}
		idSet[c.ReceiverID] = struct{}{}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var users []models.User
	if len(ids) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
			s.logger.Error("failed to load connection parties", "error", err)
			return nil, models.ErrInternal
		}
	}
	byID := make(map[string]*UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}

	views := make([]View, 0, len(conns))
	for _, c := range conns {
		views = append(views, View{
			Connection: c,
			Requester:  byID[c.RequesterID],
			Receiver:   byID[c.ReceiverID],
		})
	}
	return views, nil
}

// UpdateStatus sets any valid status on a connection. Transitions are
// deliberately unconstrained: BLOCKED can go back to ACCEPTED and so on.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.ConnectionStatus) (*models.Connection, error) {
	if !status.Valid() {
		return nil, models.Invalid("status", "unknown connection status")
	}

	var conn models.Connection
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("connection %s: %w", id, models.ErrNotFound)
		}
		s.logger.Error("failed to get connection", "connection_id", id, "error", err)
		return nil, models.ErrInternal
	}

	if err := s.db.WithContext(ctx).Model(&conn).Update("status", status).Error; err != nil {
		s.logger.Error("failed to update connection status", "connection_id", id, "error", err)
		return nil, models.ErrInternal
	}

	return &conn, nil
}

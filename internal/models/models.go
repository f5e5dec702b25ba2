package models

import (
	"time"

	"gorm.io/datatypes"
)

type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "DRAFT"
	StatusPublished DocumentStatus = "PUBLISHED"
	StatusArchived  DocumentStatus = "ARCHIVED"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type AccessLevel string

const (
	AccessView AccessLevel = "VIEW"
	AccessEdit AccessLevel = "EDIT"
)

func (a AccessLevel) Valid() bool {
	return a == AccessView || a == AccessEdit
}

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "PENDING"
	ConnectionAccepted ConnectionStatus = "ACCEPTED"
	ConnectionRejected ConnectionStatus = "REJECTED"
	ConnectionBlocked  ConnectionStatus = "BLOCKED"
)

func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionPending, ConnectionAccepted, ConnectionRejected, ConnectionBlocked:
		return true
	}
	return false
}

type User struct {
	ID        string    `gorm:"primaryKey;not null" json:"id"`
	Email     string    `gorm:"not null;unique" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Document struct {
	ID        string         `gorm:"primaryKey;not null" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	Content   datatypes.JSON `json:"content"`
	OwnerID   string         `gorm:"not null;index" json:"ownerId"`
	Status    DocumentStatus `gorm:"not null;default:DRAFT" json:"status"`
	InTrash   bool           `gorm:"not null;default:false" json:"inTrash"`
	FolderID  *string        `gorm:"index" json:"folderId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type Folder struct {
	ID        string     `gorm:"primaryKey;not null" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	OwnerID   string     `gorm:"not null;index" json:"ownerId"`
	Documents []Document `gorm:"foreignKey:FolderID" json:"documents,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type SharedDocument struct {
	DocumentID  string      `gorm:"primaryKey;not null" json:"documentId"`
	UserID      string      `gorm:"primaryKey;not null" json:"userId"`
	AccessLevel AccessLevel `gorm:"not null" json:"accessLevel"`
	Document    *Document   `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type Connection struct {
	ID          string           `gorm:"primaryKey;not null" json:"id"`
	RequesterID string           `gorm:"not null;index" json:"requesterId"`
	ReceiverID  string           `gorm:"not null;index" json:"receiverId"`
	Status      ConnectionStatus `gorm:"not null;default:PENDING" json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type DocumentTemplate struct {
	ID          string         `gorm:"primaryKey;not null" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Content     datatypes.JSON `json:"content"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Page is the envelope every paginated listing endpoint returns.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPage[T any](data []T, total int64, page, limit int) Page[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page[T]{Data: data, Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

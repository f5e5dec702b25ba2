package database

import (
	"inkwell/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Manager struct {
	DB *gorm.DB
}

func NewManager() *Manager {
	return &Manager{}
}

func (dbm *Manager) Connect(dsn string) error {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	if err := Migrate(db); err != nil {
		return err
	}
	dbm.DB = db
	return nil
}

// Migrate keeps the schema in sync with the model set. Shared by the server
// startup and the test suites.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Document{},
		&models.Folder{},
		&models.SharedDocument{},
		&models.Connection{},
		&models.DocumentTemplate{},
	)
}

func (dbm *Manager) Close() error {
	db, err := dbm.DB.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

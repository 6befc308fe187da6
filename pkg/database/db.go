package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"avrctl/pkg/config"
	"avrctl/pkg/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect initializes the embedded database connection and migrates the schema.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	slog.Info("Connected to database", "component", "Database", "path", cfg.DBPath)
	return db, nil
}

// Migrate creates or updates the schema for all tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Receiver{},
		&models.Command{},
		&models.CommandParameter{},
		&models.DiscoveredReceiver{},
		&models.ErrorLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

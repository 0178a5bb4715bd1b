package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flowsight/flowsight/internal/common/config"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// NewSQLite creates a Database backed by SQLite.
func NewSQLite(cfg *config.DatabaseConfig) (Database, error) {
	dir := filepath.Dir(cfg.DBName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	gormDB, err := gorm.Open(sqlite.Open(cfg.DBName), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return newStore(gormDB)
}

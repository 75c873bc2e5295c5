package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// registers the "sqlite3" driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/yigit/coursegpa/internal/config"
)

// SQLiteDB wraps the embedded database handle
type SQLiteDB struct {
	DB   *sql.DB
	Path string
}

// NewSQLiteDB opens (creating if needed) the SQLite file named in the config
func NewSQLiteDB(cfg *config.Config) (*SQLiteDB, error) {
	path := cfg.Database.Path
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", cfg.GetSQLiteDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// WAL lets readers run alongside the single writer
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	return &SQLiteDB{DB: sqlDB, Path: path}, nil
}

// Close closes the database handle
func (db *SQLiteDB) Close() error {
	if db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

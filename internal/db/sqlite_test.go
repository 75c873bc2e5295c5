package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursegpa/internal/config"
)

func TestNewSQLiteDBCreatesDirectory(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(t.TempDir(), "nested", "dir", "courses.db")

	database, err := NewSQLiteDB(cfg)
	require.NoError(t, err)
	defer database.Close()

	var mode string
	require.NoError(t, database.DB.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
	assert.FileExists(t, cfg.Database.Path)
}

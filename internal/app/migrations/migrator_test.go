package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "m.db")+"?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateCreatesCoursesTable(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	m, err := NewMigrator(db, "sqlite", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Migrate(ctx))

	_, err = db.ExecContext(ctx, `INSERT INTO courses (courseName, creditHour, letterGrade) VALUES ('Calculus', 4, 'A')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO courses (courseName, creditHour, letterGrade) VALUES ('Calculus', 3, 'B')`)
	assert.Error(t, err, "courseName must be unique")

	_, err = db.ExecContext(ctx, `INSERT INTO courses (courseName, creditHour, letterGrade) VALUES ('Negative', -1, 'B')`)
	assert.Error(t, err, "creditHour must be non-negative")

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"001"}, applied)
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	m, err := NewMigrator(db, "sqlite", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Migrate(ctx))
	require.NoError(t, m.Migrate(ctx))

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 1)
}

func TestMigrateOrderAndRollback(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	files := fstest.MapFS{
		"002_add_index.sql": {Data: []byte(`CREATE INDEX idx_t_name ON t (name);`)},
		"001_create_t.sql":  {Data: []byte(`CREATE TABLE t (name TEXT);`)},
		"003_broken.sql":    {Data: []byte(`CREATE TABLE nope (;`)},
		"README.md":         {Data: []byte(`ignored`)},
	}

	m, err := NewMigrator(db, "sqlite", zerolog.Nop())
	require.NoError(t, err)
	m.WithFiles(files)

	err = m.Migrate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "003_broken.sql")

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "002"}, applied)
}

func TestNewMigratorUnknownDialect(t *testing.T) {
	_, err := NewMigrator(openSQLite(t), "oracle", zerolog.Nop())
	assert.Error(t, err)
}

func TestPostgresMigrationsEmbedded(t *testing.T) {
	m, err := NewMigrator(openSQLite(t), "postgres", zerolog.Nop())
	require.NoError(t, err)

	content, err := fs.ReadFile(m.files, "001_create_courses.sql")
	require.NoError(t, err)
	assert.Contains(t, string(content), "BIGSERIAL")
	assert.Contains(t, string(content), "UNIQUE (courseName)")
}

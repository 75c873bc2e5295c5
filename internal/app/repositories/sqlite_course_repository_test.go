package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursegpa/internal/app/migrations"
	"github.com/yigit/coursegpa/internal/app/models"
	"github.com/yigit/coursegpa/internal/pkg/apperrors"
)

func newTestRepo(t *testing.T) (*SQLiteCourseRepository, *sql.DB) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "courses.db") + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := migrations.NewMigrator(db, "sqlite", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Migrate(context.Background()))

	return NewSQLiteCourseRepository(db), db
}

func TestSQLiteInsertAssignsIDs(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	id1, err := repo.Insert(ctx, models.NewCourse("Calculus", 4, "A"))
	require.NoError(t, err)
	id2, err := repo.Insert(ctx, models.NewCourse("History", 3, "B+"))
	require.NoError(t, err)

	assert.Positive(t, id1)
	assert.Greater(t, id2, id1)
}

func TestSQLiteInsertDuplicateReturnsSentinel(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	_, err := repo.Insert(ctx, models.NewCourse("X", 3, "A"))
	require.NoError(t, err)

	id, err := repo.Insert(ctx, models.NewCourse("X", 2, "B"))
	require.NoError(t, err)
	assert.Equal(t, DuplicateRowID, id)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "X", all[0].CourseName)
	assert.Equal(t, 3, all[0].CreditHour)
	assert.Equal(t, "A", all[0].LetterGrade)
}

func TestSQLiteFindByNameExactMatch(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	_, err := repo.Insert(ctx, models.NewCourse("Physics", 4, "B"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, models.NewCourse("Physics II", 4, "A-"))
	require.NoError(t, err)

	found, err := repo.FindByName(ctx, "Physics")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "B", found[0].LetterGrade)

	none, err := repo.FindByName(ctx, "physics")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSQLiteDeleteByName(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	_, err := repo.Insert(ctx, models.NewCourse("Art", 3, "F"))
	require.NoError(t, err)

	n, err := repo.DeleteByName(ctx, "Missing")
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	n, err = repo.DeleteByName(ctx, "Art")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLiteListAllInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	names := []string{"Zoology", "Algebra", "Music", "Biology"}
	for _, n := range names {
		_, err := repo.Insert(ctx, models.NewCourse(n, 3, "B"))
		require.NoError(t, err)
	}
	_, err := repo.DeleteByName(ctx, "Music")
	require.NoError(t, err)
	_, err = repo.Insert(ctx, models.NewCourse("Music", 1, "A"))
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)

	got := make([]string, 0, len(all))
	for _, c := range all {
		got = append(got, c.CourseName)
	}
	assert.Equal(t, []string{"Zoology", "Algebra", "Biology", "Music"}, got)
}

func TestSQLiteConcurrentDuplicateInsertsOneWins(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	const workers = 8
	var wins atomic.Int32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := repo.Insert(ctx, models.NewCourse("Race", i, "A"))
			if err != nil {
				errs <- err
				return
			}
			if id != DuplicateRowID {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), wins.Load())

	found, err := repo.FindByName(ctx, "Race")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestSQLiteStorageFault(t *testing.T) {
	ctx := context.Background()
	repo, db := newTestRepo(t)
	require.NoError(t, db.Close())

	_, err := repo.Insert(ctx, models.NewCourse("Any", 1, "A"))
	assert.True(t, apperrors.IsStorageFault(err), fmt.Sprint(err))

	_, err = repo.ListAll(ctx)
	assert.True(t, apperrors.IsStorageFault(err))

	_, err = repo.FindByName(ctx, "Any")
	assert.True(t, apperrors.IsStorageFault(err))

	_, err = repo.DeleteByName(ctx, "Any")
	assert.True(t, apperrors.IsStorageFault(err))

	assert.True(t, apperrors.IsStorageFault(repo.Ping(ctx)))
}

package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pgDup := &pgconn.PgError{Code: "23505", ConstraintName: "courses_coursename_key"}
	pgOther := &pgconn.PgError{Code: "23514"}
	liteDup := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	liteCheck := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}

	assert.True(t, IsUniqueViolation(pgDup))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", pgDup)))
	assert.False(t, IsUniqueViolation(pgOther))
	assert.True(t, IsUniqueViolation(liteDup))
	assert.False(t, IsUniqueViolation(liteCheck))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsDuplicateConstraintError(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "courses_coursename_key"}
	assert.True(t, IsDuplicateConstraintError(err, "courses_coursename_key"))
	assert.False(t, IsDuplicateConstraintError(err, "other_key"))
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.False(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrIoErr}))
}

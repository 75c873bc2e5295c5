package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/coursegpa/internal/app/models"
	"github.com/yigit/coursegpa/internal/pkg/apperrors"
	"github.com/yigit/coursegpa/internal/pkg/dberrors"
	"github.com/yigit/coursegpa/internal/pkg/logger"
)

// SQLiteCourseRepository handles course operations on the embedded store
type SQLiteCourseRepository struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

// NewSQLiteCourseRepository creates a new SQLiteCourseRepository
func NewSQLiteCourseRepository(db *sql.DB) *SQLiteCourseRepository {
	return &SQLiteCourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Insert adds a course unless the name already exists. The unique constraint
// on courseName decides, so concurrent inserts of one name cannot both win.
func (r *SQLiteCourseRepository) Insert(ctx context.Context, course *models.Course) (int64, error) {
	query, args, err := r.sb.Insert(coursesTable).
		Columns("courseName", "creditHour", "letterGrade").
		Values(course.CourseName, course.CreditHour, course.LetterGrade).
		Suffix("ON CONFLICT (courseName) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert course query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return DuplicateRowID, nil
		}
		logWriteError(err, "insert course", course.CourseName)
		return 0, apperrors.NewStorageError("insert course", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewStorageError("insert course", err)
	}
	if affected == 0 {
		return DuplicateRowID, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.NewStorageError("insert course", err)
	}
	return id, nil
}

// FindByName retrieves courses by exact name
func (r *SQLiteCourseRepository) FindByName(ctx context.Context, name string) ([]*models.Course, error) {
	query, args, err := r.sb.Select(courseColumns...).
		From(coursesTable).
		Where(squirrel.Eq{"courseName": name}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find course query: %w", err)
	}

	return r.queryCourses(ctx, "find courses by name", query, args...)
}

// DeleteByName deletes courses by exact name
func (r *SQLiteCourseRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	query, args, err := r.sb.Delete(coursesTable).
		Where(squirrel.Eq{"courseName": name}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete course query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logWriteError(err, "delete course", name)
		return 0, apperrors.NewStorageError("delete course", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewStorageError("delete course", err)
	}
	return affected, nil
}

// ListAll retrieves all courses in insertion order
func (r *SQLiteCourseRepository) ListAll(ctx context.Context) ([]*models.Course, error) {
	query, args, err := r.sb.Select(courseColumns...).
		From(coursesTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	return r.queryCourses(ctx, "list courses", query, args...)
}

// Ping checks the database handle
func (r *SQLiteCourseRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return apperrors.NewStorageError("ping", err)
	}
	return nil
}

func (r *SQLiteCourseRepository) queryCourses(ctx context.Context, op, query string, args ...any) ([]*models.Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error executing course query")
		return nil, apperrors.NewStorageError(op, err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			logger.Error().Err(err).Str("op", op).Msg("Error scanning course row")
			return nil, apperrors.NewStorageError(op, err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error iterating course rows")
		return nil, apperrors.NewStorageError(op, err)
	}

	return courses, nil
}

// logWriteError logs a failed write; lock timeouts are logged as warnings
func logWriteError(err error, op, courseName string) {
	if dberrors.IsBusy(err) {
		logger.Warn().Err(err).Str("op", op).Str("courseName", courseName).Msg("Database busy, write gave up waiting for lock")
		return
	}
	logger.Error().Err(err).Str("op", op).Str("courseName", courseName).Msg("Error executing course write")
}

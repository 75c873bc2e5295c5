package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursegpa/internal/app/models"
	"github.com/yigit/coursegpa/internal/pkg/apperrors"
	"github.com/yigit/coursegpa/internal/pkg/dberrors"
	"github.com/yigit/coursegpa/internal/pkg/logger"
)

// PostgresCourseRepository handles course operations on PostgreSQL
type PostgresCourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostgresCourseRepository creates a new PostgresCourseRepository
func NewPostgresCourseRepository(db *pgxpool.Pool) *PostgresCourseRepository {
	return &PostgresCourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// buildInsert is split out so the statement can be checked without a server
func (r *PostgresCourseRepository) buildInsert(course *models.Course) (string, []any, error) {
	return r.sb.Insert(coursesTable).
		Columns("courseName", "creditHour", "letterGrade").
		Values(course.CourseName, course.CreditHour, course.LetterGrade).
		Suffix("ON CONFLICT (courseName) DO NOTHING RETURNING id").
		ToSql()
}

// Insert adds a course unless the name already exists. A conflicting insert
// returns no row, which is reported as DuplicateRowID.
func (r *PostgresCourseRepository) Insert(ctx context.Context, course *models.Course) (int64, error) {
	query, args, err := r.buildInsert(course)
	if err != nil {
		return 0, fmt.Errorf("failed to build insert course query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || dberrors.IsDuplicateConstraintError(err, courseNameConstraint) {
			return DuplicateRowID, nil
		}
		logger.Error().Err(err).Str("courseName", course.CourseName).Msg("Error executing insert course query")
		return 0, apperrors.NewStorageError("insert course", err)
	}

	return id, nil
}

// FindByName retrieves courses by exact name
func (r *PostgresCourseRepository) FindByName(ctx context.Context, name string) ([]*models.Course, error) {
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
func (r *PostgresCourseRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	query, args, err := r.sb.Delete(coursesTable).
		Where(squirrel.Eq{"courseName": name}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete course query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("courseName", name).Msg("Error executing delete course query")
		return 0, apperrors.NewStorageError("delete course", err)
	}

	return cmdTag.RowsAffected(), nil
}

// ListAll retrieves all courses in insertion order
func (r *PostgresCourseRepository) ListAll(ctx context.Context) ([]*models.Course, error) {
	query, args, err := r.sb.Select(courseColumns...).
		From(coursesTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	return r.queryCourses(ctx, "list courses", query, args...)
}

// Ping checks the pool
func (r *PostgresCourseRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return apperrors.NewStorageError("ping", err)
	}
	return nil
}

func (r *PostgresCourseRepository) queryCourses(ctx context.Context, op, query string, args ...any) ([]*models.Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
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

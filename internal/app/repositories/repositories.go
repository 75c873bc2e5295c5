package repositories

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursegpa/internal/app/models"
)

// DuplicateRowID is returned by Insert when a course with the same name is
// already stored. It is a sentinel, not an error.
const DuplicateRowID int64 = -1

const coursesTable = "courses"

// courseNameConstraint is the unique constraint created by the migrations
const courseNameConstraint = "courses_coursename_key"

// courseColumns is the select list shared by every course query
var courseColumns = []string{"id", "courseName", "creditHour", "letterGrade"}

// CourseRepository is the persistence contract for courses.
type CourseRepository interface {
	// Insert stores course unless its name is taken. Returns the new id or
	// DuplicateRowID.
	Insert(ctx context.Context, course *models.Course) (int64, error)
	// FindByName returns every course whose name matches exactly.
	FindByName(ctx context.Context, name string) ([]*models.Course, error)
	// DeleteByName removes every course with this name. Returns the number of
	// rows removed; zero is not an error.
	DeleteByName(ctx context.Context, name string) (int64, error)
	// ListAll returns all courses in insertion order.
	ListAll(ctx context.Context) ([]*models.Course, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// Repositories holds all the repository instances
type Repositories struct {
	CourseRepository CourseRepository
}

// NewSQLiteRepositories wires repositories over the embedded SQLite store
func NewSQLiteRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		CourseRepository: NewSQLiteCourseRepository(db),
	}
}

// NewPostgresRepositories wires repositories over a PostgreSQL pool
func NewPostgresRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		CourseRepository: NewPostgresCourseRepository(pool),
	}
}

// rowScanner is satisfied by *sql.Row, *sql.Rows, pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	course := &models.Course{}
	if err := row.Scan(&course.ID, &course.CourseName, &course.CreditHour, &course.LetterGrade); err != nil {
		return nil, err
	}
	return course, nil
}

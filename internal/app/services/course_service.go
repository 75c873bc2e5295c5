package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/coursegpa/internal/app/models"
	"github.com/yigit/coursegpa/internal/app/repositories"
	"github.com/yigit/coursegpa/internal/pkg/apperrors"
	"github.com/yigit/coursegpa/internal/pkg/feed"
)

// CourseSubscription delivers course list snapshots in commit order
type CourseSubscription = feed.Subscription[*models.CourseSnapshot]

// CourseService defines the interface for course-related operations
type CourseService interface {
	InsertCourse(ctx context.Context, course *models.Course) (int64, error)
	FindCourses(ctx context.Context, name string) ([]*models.Course, error)
	DeleteCourse(ctx context.Context, name string) (int64, error)
	ListCourses(ctx context.Context) ([]*models.Course, error)
	WatchCourses(ctx context.Context) (*CourseSubscription, error)
	CalculateGPA(ctx context.Context) (*models.GPAResult, error)
	Ping(ctx context.Context) error
	Close()
}

// courseServiceImpl implements the CourseService interface
type courseServiceImpl struct {
	courseRepo repositories.CourseRepository
	// writeMu serializes inserts, deletes and snapshot publication so the
	// feed sees writes in commit order
	writeMu sync.Mutex
	primed  bool
	feed    *feed.Feed[*models.CourseSnapshot]
	logger  zerolog.Logger
}

// NewCourseService creates a new course service instance
func NewCourseService(courseRepo repositories.CourseRepository, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{
		courseRepo: courseRepo,
		feed:       feed.New[*models.CourseSnapshot](),
		logger:     logger.With().Str("component", "course_service").Logger(),
	}
}

// validateCourse validates course data before database operations
func validateCourse(course *models.Course) error {
	if course == nil {
		return apperrors.NewValidationError("course", "course is nil")
	}
	if course.CourseName == "" {
		return apperrors.NewValidationError("courseName", "course name cannot be empty")
	}
	if course.CreditHour < 0 {
		return apperrors.NewValidationError("creditHour", "credit hours cannot be negative")
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

// InsertCourse stores the course unless its name is taken, in which case it
// returns repositories.DuplicateRowID and leaves the store unchanged.
func (s *courseServiceImpl) InsertCourse(ctx context.Context, course *models.Course) (int64, error) {
	if course != nil {
		normalized := *course
		normalized.CourseName = normalizeName(course.CourseName)
		normalized.LetterGrade = strings.TrimSpace(course.LetterGrade)
		course = &normalized
	}
	if err := validateCourse(course); err != nil {
		return 0, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id, err := s.courseRepo.Insert(ctx, course)
	if err != nil {
		return 0, fmt.Errorf("error inserting course: %w", err)
	}

	if id == repositories.DuplicateRowID {
		s.logger.Debug().Str("courseName", course.CourseName).Msg("Duplicate course name, insert skipped")
		return id, nil
	}

	s.logger.Info().Str("courseName", course.CourseName).Int64("rowId", id).Msg("Course inserted")
	s.publishLocked(ctx)
	return id, nil
}

// FindCourses returns the courses with exactly this name
func (s *courseServiceImpl) FindCourses(ctx context.Context, name string) ([]*models.Course, error) {
	name = normalizeName(name)
	if name == "" {
		return []*models.Course{}, nil
	}

	courses, err := s.courseRepo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("error finding courses: %w", err)
	}
	return courses, nil
}

// DeleteCourse removes every course with this name and returns how many rows
// went away. An unknown name is a no-op that removes 0.
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, name string) (int64, error) {
	name = normalizeName(name)
	if name == "" {
		return 0, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	removed, err := s.courseRepo.DeleteByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("error deleting course: %w", err)
	}
	if removed == 0 {
		return 0, nil
	}

	s.logger.Info().Str("courseName", name).Int64("removed", removed).Msg("Course deleted")
	s.publishLocked(ctx)
	return removed, nil
}

// ListCourses returns all courses in insertion order
func (s *courseServiceImpl) ListCourses(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.courseRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	return courses, nil
}

// WatchCourses returns a subscription that first yields the current course
// list and then every later committed change. It closes when ctx is done;
// callers may also close it earlier themselves.
func (s *courseServiceImpl) WatchCourses(ctx context.Context) (*CourseSubscription, error) {
	if err := s.prime(ctx); err != nil {
		return nil, err
	}

	sub := s.feed.Subscribe()
	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.Done():
		}
	}()
	return sub, nil
}

// CalculateGPA computes the GPA over everything currently stored
func (s *courseServiceImpl) CalculateGPA(ctx context.Context) (*models.GPAResult, error) {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeGPA(courses), nil
}

// Ping checks the underlying store
func (s *courseServiceImpl) Ping(ctx context.Context) error {
	return s.courseRepo.Ping(ctx)
}

// Close ends all subscriptions
func (s *courseServiceImpl) Close() {
	s.feed.Close()
}

// prime loads the first snapshot so new subscribers never start empty
func (s *courseServiceImpl) prime(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.primed {
		return nil
	}

	courses, err := s.courseRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("error loading course snapshot: %w", err)
	}
	s.publish(courses)
	s.primed = true
	return nil
}

// publishLocked re-reads the list after a committed write and publishes it.
// Must be called with writeMu held. The write already committed, so a failed
// re-read is logged and the next write publishes the full state again.
func (s *courseServiceImpl) publishLocked(ctx context.Context) {
	if !s.primed && s.feed.Len() == 0 {
		return
	}

	courses, err := s.courseRepo.ListAll(context.WithoutCancel(ctx))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to reload courses after write, subscribers not notified")
		s.primed = false
		return
	}
	s.publish(courses)
	s.primed = true
}

func (s *courseServiceImpl) publish(courses []*models.Course) {
	snapshot := &models.CourseSnapshot{
		Courses: courses,
		GPA:     CalculateGPA(courses),
	}
	for _, c := range courses {
		snapshot.TotalCredits += c.CreditHour
	}

	ev := s.feed.Publish(snapshot)
	s.logger.Debug().Uint64("seq", ev.Seq).Int("courses", len(courses)).Msg("Course snapshot published")
}

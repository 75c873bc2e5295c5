package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/coursegpa/internal/app/models"
	appRepos "github.com/yigit/coursegpa/internal/app/repositories"
	appServices "github.com/yigit/coursegpa/internal/app/services"
	"github.com/yigit/coursegpa/internal/pkg/apperrors"
	"gopkg.in/yaml.v3"
)

// File is the layout of a seed YAML file
type File struct {
	Courses []*appModels.Course `yaml:"courses"`
}

// Result counts what a seed run did
type Result struct {
	Inserted int
	Skipped  int
	Invalid  int
}

// LoadCourses reads the course list from a seed file
func LoadCourses(path string) ([]*appModels.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return f.Courses, nil
}

// CreateDefaultData inserts the courses from the seed file. Names that are
// already stored are skipped, so running it again changes nothing. Invalid
// entries are logged and reported together; a storage fault stops the run.
func CreateDefaultData(ctx context.Context, svc appServices.CourseService, path string, lgr zerolog.Logger) (Result, error) {
	var res Result

	courses, err := LoadCourses(path)
	if err != nil {
		return res, err
	}

	lgr.Info().Str("file", path).Int("courses", len(courses)).Msg("Seeding default courses...")
	var finalErr error // To collect invalid entries without stopping the run

	for i, course := range courses {
		id, err := svc.InsertCourse(ctx, course)
		switch {
		case apperrors.IsStorageFault(err):
			return res, fmt.Errorf("seeding stopped at entry %d: %w", i, err)
		case errors.Is(err, apperrors.ErrValidationFailed):
			lgr.Warn().Err(err).Int("entry", i).Msg("Skipping invalid seed course")
			res.Invalid++
			finalErr = errors.Join(finalErr, fmt.Errorf("entry %d: %w", i, err))
		case err != nil:
			return res, err
		case id == appRepos.DuplicateRowID:
			res.Skipped++
		default:
			res.Inserted++
		}
	}

	lgr.Info().
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Int("invalid", res.Invalid).
		Msg("Default course seeding finished")
	return res, finalErr
}

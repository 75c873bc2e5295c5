package dto

import (
	"github.com/yigit/coursegpa/internal/app/models"
	"github.com/yigit/coursegpa/internal/domain"
)

// CreateCourseRequest represents a request to add a course record.
// CreditHour is a pointer so an omitted value fails validation while an
// explicit 0 is accepted.
type CreateCourseRequest struct {
	CourseName  string `json:"courseName" binding:"required,notblank,max=200"`
	CreditHour  *int   `json:"creditHour" binding:"required,min=0,max=100"`
	LetterGrade string `json:"letterGrade" binding:"max=8"`
}

// ToModel converts the request into a course
func (r *CreateCourseRequest) ToModel() *models.Course {
	credits := 0
	if r.CreditHour != nil {
		credits = *r.CreditHour
	}
	return models.NewCourse(r.CourseName, credits, r.LetterGrade)
}

// CreateCourseResponse reports the outcome of an insert. A duplicate name
// yields Inserted=false and ID=-1.
type CreateCourseResponse struct {
	ID       int64 `json:"id"`
	Inserted bool  `json:"inserted"`
}

// CourseResponse is a course as shown to clients
type CourseResponse struct {
	ID            int64    `json:"id"`
	CourseName    string   `json:"courseName"`
	CreditHour    int      `json:"creditHour"`
	LetterGrade   string   `json:"letterGrade"`
	GradeBand     string   `json:"gradeBand,omitempty"`
	QualityPoints *float64 `json:"qualityPoints,omitempty"`
}

// NewCourseResponse builds the client view of a course. Unrecognized
// grades carry no band and no quality points.
func NewCourseResponse(course *models.Course) CourseResponse {
	resp := CourseResponse{
		ID:          course.ID,
		CourseName:  course.CourseName,
		CreditHour:  course.CreditHour,
		LetterGrade: course.LetterGrade,
		GradeBand:   domain.GradeBand(course.LetterGrade),
	}
	if points, ok := domain.QualityPoints(course.LetterGrade); ok {
		resp.QualityPoints = &points
	}
	return resp
}

// NewCourseResponses maps a course list, keeping order
func NewCourseResponses(courses []*models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		if c == nil {
			continue
		}
		out = append(out, NewCourseResponse(c))
	}
	return out
}

// DeleteCourseResponse echoes the normalized name and how many rows went away
type DeleteCourseResponse struct {
	CourseName string `json:"courseName"`
	Removed    int64  `json:"removed"`
}

// GradeScaleEntry is one letter grade on the scale
type GradeScaleEntry struct {
	Grade         string  `json:"grade"`
	QualityPoints float64 `json:"qualityPoints"`
	GradeBand     string  `json:"gradeBand"`
}

// GradeScaleResponse lists the recognized grades from highest to lowest
type GradeScaleResponse struct {
	Grades           []GradeScaleEntry `json:"grades"`
	MaxQualityPoints float64           `json:"maxQualityPoints"`
}

// NewGradeScaleResponse builds the scale from the domain grade table
func NewGradeScaleResponse() GradeScaleResponse {
	grades := domain.Grades()
	resp := GradeScaleResponse{
		Grades:           make([]GradeScaleEntry, 0, len(grades)),
		MaxQualityPoints: domain.MaxQualityPoints,
	}
	for _, g := range grades {
		points, _ := domain.QualityPoints(g)
		resp.Grades = append(resp.Grades, GradeScaleEntry{
			Grade:         g,
			QualityPoints: points,
			GradeBand:     domain.GradeBand(g),
		})
	}
	return resp
}

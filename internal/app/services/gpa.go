package services

import (
	"math"

	"github.com/yigit/coursegpa/internal/app/models"
	"github.com/yigit/coursegpa/internal/domain"
)

// CalculateGPA returns the credit-weighted mean of quality points over
// courses. Zero total credits yields 0. Grades outside the scale count as 0
// quality points. Nil entries are skipped.
func CalculateGPA(courses []*models.Course) float64 {
	totalCredits := 0
	for _, c := range courses {
		if c == nil {
			continue
		}
		totalCredits += c.CreditHour
	}
	if totalCredits == 0 {
		return 0.0
	}

	totalPoints := 0.0
	for _, c := range courses {
		if c == nil {
			continue
		}
		points, _ := domain.QualityPoints(c.LetterGrade)
		totalPoints += float64(c.CreditHour) * points
	}

	return totalPoints / float64(totalCredits)
}

// RoundGPA rounds to two decimals, half away from zero
func RoundGPA(gpa float64) float64 {
	return math.Round(gpa*100) / 100
}

// SummarizeGPA computes the GPA together with the figures shown next to it
func SummarizeGPA(courses []*models.Course) *models.GPAResult {
	result := &models.GPAResult{}
	for _, c := range courses {
		if c == nil {
			continue
		}
		result.CourseCount++
		result.TotalCredits += c.CreditHour
		if !domain.IsRecognizedGrade(c.LetterGrade) {
			result.UnrecognizedGrades = append(result.UnrecognizedGrades, c.CourseName)
		}
	}

	result.GPA = CalculateGPA(courses)
	result.Rounded = RoundGPA(result.GPA)
	return result
}

package domain

import "strings"

// gradePoints is the fixed US letter-grade scale. Keys are canonical uppercase.
var gradePoints = map[string]float64{
	"A":  4.00,
	"A-": 3.67,
	"B+": 3.33,
	"B":  3.00,
	"B-": 2.67,
	"C+": 2.33,
	"C":  2.00,
	"C-": 1.67,
	"D+": 1.33,
	"D":  1.00,
	"D-": 0.67,
	"F":  0.00,
}

// MaxQualityPoints is the highest value on the scale
const MaxQualityPoints = 4.00

// NormalizeGrade returns the canonical uppercase form of a letter grade
func NormalizeGrade(grade string) string {
	return strings.ToUpper(strings.TrimSpace(grade))
}

// QualityPoints looks up a letter grade case-insensitively. Unknown grades
// yield (0, false).
func QualityPoints(grade string) (float64, bool) {
	points, ok := gradePoints[NormalizeGrade(grade)]
	return points, ok
}

// IsRecognizedGrade reports whether grade is on the scale
func IsRecognizedGrade(grade string) bool {
	_, ok := QualityPoints(grade)
	return ok
}

// Grades returns the scale from highest to lowest
func Grades() []string {
	return []string{"A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-", "F"}
}

// GradeBand returns the letter family of a recognized grade ("A" for "A-",
// "B" for "b+") or "" when the grade is not on the scale.
func GradeBand(grade string) string {
	g := NormalizeGrade(grade)
	if _, ok := gradePoints[g]; !ok {
		return ""
	}
	return g[:1]
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityPointsTable(t *testing.T) {
	cases := map[string]float64{
		"A": 4.00, "A-": 3.67,
		"B+": 3.33, "B": 3.00, "B-": 2.67,
		"C+": 2.33, "C": 2.00, "C-": 1.67,
		"D+": 1.33, "D": 1.00, "D-": 0.67,
		"F": 0.00,
	}
	for grade, want := range cases {
		got, ok := QualityPoints(grade)
		assert.True(t, ok, grade)
		assert.Equal(t, want, got, grade)
	}
	assert.Len(t, Grades(), len(cases))
}

func TestQualityPointsCaseInsensitive(t *testing.T) {
	got, ok := QualityPoints("b+")
	assert.True(t, ok)
	assert.Equal(t, 3.33, got)

	got, ok = QualityPoints(" a- ")
	assert.True(t, ok)
	assert.Equal(t, 3.67, got)
}

func TestQualityPointsUnknown(t *testing.T) {
	for _, g := range []string{"", "E", "A+", "pass", "4.0"} {
		got, ok := QualityPoints(g)
		assert.False(t, ok, g)
		assert.Zero(t, got, g)
		assert.False(t, IsRecognizedGrade(g), g)
	}
}

func TestGradeBand(t *testing.T) {
	assert.Equal(t, "A", GradeBand("a-"))
	assert.Equal(t, "B", GradeBand("B+"))
	assert.Equal(t, "F", GradeBand("f"))
	assert.Equal(t, "", GradeBand("A+"))
	assert.Equal(t, "", GradeBand(""))
}

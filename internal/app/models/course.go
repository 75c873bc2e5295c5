package models

// Course is a single graded course taken by the student.
type Course struct {
	ID          int64  `json:"id" db:"id"`
	CourseName  string `json:"courseName" db:"courseName" yaml:"courseName"`
	CreditHour  int    `json:"creditHour" db:"creditHour" yaml:"creditHour"`
	LetterGrade string `json:"letterGrade" db:"letterGrade" yaml:"letterGrade"`
}

// NewCourse builds an unsaved course
func NewCourse(name string, creditHour int, letterGrade string) *Course {
	return &Course{
		CourseName:  name,
		CreditHour:  creditHour,
		LetterGrade: letterGrade,
	}
}

// CourseSnapshot is the full course list at one committed point in time,
// along with the values derived from it.
type CourseSnapshot struct {
	Courses      []*Course `json:"courses"`
	TotalCredits int       `json:"totalCredits"`
	GPA          float64   `json:"gpa"`
}

// GPAResult is the outcome of a GPA calculation over the stored courses.
type GPAResult struct {
	GPA                float64  `json:"gpa"`
	Rounded            float64  `json:"rounded"`
	TotalCredits       int      `json:"totalCredits"`
	CourseCount        int      `json:"courseCount"`
	UnrecognizedGrades []string `json:"unrecognizedGrades,omitempty"`
}

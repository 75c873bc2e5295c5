// Package services holds the business logic between controllers and
// repositories.
//
// Services defined in this package:
//   - CourseService: course records, change notification and GPA
//
// GPA arithmetic lives in gpa.go as plain functions so it can be reused
// without a store.
package services

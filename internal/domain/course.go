package domain

import "fmt"

// ErrNilCourse is returned when a nil course is validated.
var ErrNilCourse = NewDomainError(ErrCodeValidation, "course cannot be nil")

// Lesson represents a single lesson within a course document.
type Lesson struct {
	Number int
	Title  string
	Link   string
}

// Course represents a parsed course document. A course is immutable once
// ingested; re-ingesting the same title replaces it wholesale.
type Course struct {
	Title      string
	Link       string
	Instructor string
	Lessons    []Lesson
}

// LessonCount returns the number of lessons in the course.
func (c *Course) LessonCount() int {
	return len(c.Lessons)
}

// CourseStats is the aggregated catalog view of an ingested course.
type CourseStats struct {
	Title       string
	LessonCount int
}

// ValidateCourse validates a Course instance.
func ValidateCourse(c *Course) error {
	if c == nil {
		return ErrNilCourse
	}

	if c.Title == "" {
		return ErrMissingCourseTitle
	}

	seen := make(map[int]bool, len(c.Lessons))
	for _, l := range c.Lessons {
		if l.Number < 0 {
			return NewDomainError(ErrCodeValidation, fmt.Sprintf("lesson number cannot be negative: %d", l.Number))
		}
		if seen[l.Number] {
			return NewDomainError(ErrCodeValidation, fmt.Sprintf("duplicate lesson number: %d", l.Number))
		}
		seen[l.Number] = true
	}

	return nil
}

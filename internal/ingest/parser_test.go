package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `Course Title: Introduction to Python
Course Link: https://example.com/python
Course Instructor: John Doe

Welcome to the course. This preamble describes what you will learn.

Lesson 1: Getting Started
Lesson Link: https://example.com/python/lesson1
Python is an interpreted language. Install it from python.org to begin.

Lesson 2: Variables
Lesson Link: https://example.com/python/lesson2
Variables hold values. Assignment uses the equals sign.
`

func TestParseCourseDocument_Header(t *testing.T) {
	course, _, _ := parseCourseDocument("intro_to_python", sampleDocument)

	assert.Equal(t, "Introduction to Python", course.Title)
	assert.Equal(t, "https://example.com/python", course.Link)
	assert.Equal(t, "John Doe", course.Instructor)
}

func TestParseCourseDocument_Lessons(t *testing.T) {
	course, _, blocks := parseCourseDocument("doc", sampleDocument)

	require.Len(t, course.Lessons, 2)
	assert.Equal(t, 1, course.Lessons[0].Number)
	assert.Equal(t, "Getting Started", course.Lessons[0].Title)
	assert.Equal(t, "https://example.com/python/lesson1", course.Lessons[0].Link)
	assert.Equal(t, 2, course.Lessons[1].Number)
	assert.Equal(t, "Variables", course.Lessons[1].Title)

	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0].content.String(), "interpreted language")
	assert.Contains(t, blocks[1].content.String(), "Assignment uses the equals sign")
}

func TestParseCourseDocument_Preamble(t *testing.T) {
	_, preamble, _ := parseCourseDocument("doc", sampleDocument)

	assert.Contains(t, preamble, "This preamble describes what you will learn")
	assert.NotContains(t, preamble, "interpreted language")
}

func TestParseCourseDocument_TitleFallsBackToName(t *testing.T) {
	course, _, _ := parseCourseDocument("my_course", "Lesson 1: Only\nSome content here.")

	assert.Equal(t, "my_course", course.Title)
	require.Len(t, course.Lessons, 1)
}

func TestParseCourseDocument_LessonLinkOnlyAtBlockStart(t *testing.T) {
	doc := `Course Title: T

Lesson 1: A
Some content first.
Lesson Link: https://example.com/late
More content.
`
	course, _, blocks := parseCourseDocument("doc", doc)

	require.Len(t, course.Lessons, 1)
	assert.Empty(t, course.Lessons[0].Link)
	// A late link line is plain content, not metadata.
	assert.Contains(t, blocks[0].content.String(), "https://example.com/late")
}

func TestParseCourseDocument_NoLessons(t *testing.T) {
	course, preamble, blocks := parseCourseDocument("doc", "Course Title: Bare\n\nJust some text with no lessons.")

	assert.Equal(t, "Bare", course.Title)
	assert.Empty(t, blocks)
	assert.Contains(t, preamble, "Just some text")
}

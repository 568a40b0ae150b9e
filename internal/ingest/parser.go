package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/studyloop/studyloop/internal/domain"
)

// Course documents follow a plain-text layout: a metadata header, then one
// block per lesson.
//
//	Course Title: Introduction to Python
//	Course Link: https://example.com/python
//	Course Instructor: John Doe
//
//	Lesson 1: Getting Started
//	Lesson Link: https://example.com/python/lesson1
//	<lesson content>
const (
	courseTitlePrefix      = "Course Title:"
	courseLinkPrefix       = "Course Link:"
	courseInstructorPrefix = "Course Instructor:"
	lessonLinkPrefix       = "Lesson Link:"
)

var lessonHeaderRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// lessonBlock holds a lesson header plus its accumulated content lines.
type lessonBlock struct {
	lesson  domain.Lesson
	content strings.Builder
}

// parseCourseDocument parses a course document into its course metadata and
// the raw text per lesson. Text before the first lesson header is returned
// as the preamble.
func parseCourseDocument(name, text string) (*domain.Course, string, []*lessonBlock) {
	course := &domain.Course{Title: name}

	lines := strings.Split(text, "\n")
	var preamble strings.Builder
	var blocks []*lessonBlock
	var current *lessonBlock

	headerDone := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if !headerDone {
			switch {
			case strings.HasPrefix(line, courseTitlePrefix):
				if v := strings.TrimSpace(strings.TrimPrefix(line, courseTitlePrefix)); v != "" {
					course.Title = v
				}
				continue
			case strings.HasPrefix(line, courseLinkPrefix):
				course.Link = strings.TrimSpace(strings.TrimPrefix(line, courseLinkPrefix))
				continue
			case strings.HasPrefix(line, courseInstructorPrefix):
				course.Instructor = strings.TrimSpace(strings.TrimPrefix(line, courseInstructorPrefix))
				continue
			case line == "":
				continue
			default:
				headerDone = true
			}
		}

		if m := lessonHeaderRe.FindStringSubmatch(line); m != nil {
			number, _ := strconv.Atoi(m[1])
			current = &lessonBlock{
				lesson: domain.Lesson{
					Number: number,
					Title:  strings.TrimSpace(m[2]),
				},
			}
			blocks = append(blocks, current)
			continue
		}

		if current != nil && strings.HasPrefix(line, lessonLinkPrefix) && current.content.Len() == 0 {
			current.lesson.Link = strings.TrimSpace(strings.TrimPrefix(line, lessonLinkPrefix))
			continue
		}

		if current != nil {
			current.content.WriteString(raw)
			current.content.WriteString("\n")
		} else {
			preamble.WriteString(raw)
			preamble.WriteString("\n")
		}
	}

	for _, b := range blocks {
		course.Lessons = append(course.Lessons, b.lesson)
	}

	return course, preamble.String(), blocks
}

// Package ingest turns raw course documents into normalized, overlapping
// text chunks ready for embedding.
package ingest

import (
	"path/filepath"
	"strings"

	"github.com/studyloop/studyloop/internal/domain"
)

// Processor parses course documents and splits them into chunks. Processing
// is deterministic: the same document always produces the same course and
// the same chunk sequence, which keeps re-ingestion idempotent.
type Processor struct {
	cfg ChunkConfig
}

// NewProcessor creates a Processor with the given chunking configuration.
func NewProcessor(cfg ChunkConfig) *Processor {
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	return &Processor{cfg: cfg}
}

// Process parses one course document and returns its metadata plus the
// chunk sequence, with chunk indices increasing monotonically across the
// whole course. PDF documents are converted to plain text first.
//
// Returns ErrMalformedDocument when no text can be extracted; the caller is
// expected to skip the document and continue with the rest of the corpus.
func (p *Processor) Process(path string, raw []byte) (*domain.Course, []domain.CourseChunk, error) {
	text := string(raw)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		extracted, err := extractPDFText(raw)
		if err != nil {
			return nil, nil, domain.NewDomainErrorWithCause(domain.ErrCodeMalformedDocument, "failed to extract pdf text", err)
		}
		text = extracted
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil, domain.ErrMalformedDocument
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	course, preamble, blocks := parseCourseDocument(name, text)

	var chunks []domain.CourseChunk
	index := 0

	appendChunks := func(content string, lessonNumber int, lessonLink string) {
		for _, c := range chunkText(content, p.cfg) {
			chunks = append(chunks, domain.CourseChunk{
				CourseTitle:  course.Title,
				LessonNumber: lessonNumber,
				LessonLink:   lessonLink,
				ChunkIndex:   index,
				Content:      c,
			})
			index++
		}
	}

	appendChunks(preamble, domain.NoLesson, "")
	for _, b := range blocks {
		appendChunks(b.content.String(), b.lesson.Number, b.lesson.Link)
	}

	if len(chunks) == 0 {
		return nil, nil, domain.ErrMalformedDocument
	}

	return course, chunks, nil
}

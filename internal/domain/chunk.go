package domain

// NoLesson marks a chunk that belongs to the course preamble rather than a
// specific lesson.
const NoLesson = -1

// CourseChunk represents a retrieval unit: a bounded slice of a course
// document's text with its metadata. Chunks are owned by the vector store
// once ingested and are never mutated, only replaced.
type CourseChunk struct {
	CourseTitle  string
	LessonNumber int // NoLesson when the chunk precedes any lesson
	LessonLink   string
	ChunkIndex   int
	Content      string
	Embedding    []float32
}

// ScoredChunk pairs a chunk with its similarity score for one query.
// CourseLink comes from the catalog and backs citations for chunks that have
// no lesson link of their own.
type ScoredChunk struct {
	Chunk      CourseChunk
	Score      float32
	CourseLink string
}

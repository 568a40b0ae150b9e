//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyloop/studyloop/internal/domain"
	"github.com/studyloop/studyloop/internal/testutil"
)

// unitVector returns a 1536-dim unit vector pointing along one axis, so
// cosine distances between different axes are exactly 1.
func unitVector(axis int) []float32 {
	v := make([]float32, 1536)
	v[axis] = 1
	return v
}

func seedCourse(ctx context.Context, t *testing.T, courses *CourseRepository, title, link string) {
	t.Helper()
	require.NoError(t, courses.Upsert(ctx, &domain.Course{
		Title:   title,
		Link:    link,
		Lessons: []domain.Lesson{{Number: 1, Title: "Start"}},
	}))
}

func TestChunkRepository_ReplaceAndSearch(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	courses := NewCourseRepository(pool)
	chunks := NewChunkRepository(pool)

	seedCourse(ctx, t, courses, "Intro to X", "https://example.com/x")

	stored := []domain.CourseChunk{
		{CourseTitle: "Intro to X", LessonNumber: 1, LessonLink: "https://example.com/x/l1", ChunkIndex: 0, Content: "near", Embedding: unitVector(0)},
		{CourseTitle: "Intro to X", LessonNumber: domain.NoLesson, ChunkIndex: 1, Content: "far", Embedding: unitVector(1)},
	}
	require.NoError(t, chunks.ReplaceCourseChunks(ctx, "Intro to X", stored))

	results, err := chunks.SearchChunks(ctx, unitVector(0), "", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The chunk on the query's axis comes first, with zero distance.
	assert.Equal(t, "near", results[0].Chunk.Content)
	assert.Equal(t, 1, results[0].Chunk.LessonNumber)
	assert.Equal(t, "https://example.com/x/l1", results[0].Chunk.LessonLink)
	assert.Equal(t, "https://example.com/x", results[0].CourseLink)
	assert.InDelta(t, 1.0, results[0].Score, 0.001)

	assert.Equal(t, "far", results[1].Chunk.Content)
	assert.Equal(t, domain.NoLesson, results[1].Chunk.LessonNumber)
	assert.InDelta(t, 0.5, results[1].Score, 0.001)
}

func TestChunkRepository_Replace_Idempotent(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	courses := NewCourseRepository(pool)
	chunks := NewChunkRepository(pool)

	seedCourse(ctx, t, courses, "Intro to X", "")

	stored := []domain.CourseChunk{
		{CourseTitle: "Intro to X", LessonNumber: 1, ChunkIndex: 0, Content: "v1", Embedding: unitVector(0)},
	}
	require.NoError(t, chunks.ReplaceCourseChunks(ctx, "Intro to X", stored))
	require.NoError(t, chunks.ReplaceCourseChunks(ctx, "Intro to X", stored))

	count, err := chunks.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestChunkRepository_Search_CourseFilter(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	courses := NewCourseRepository(pool)
	chunks := NewChunkRepository(pool)

	seedCourse(ctx, t, courses, "Course A", "")
	seedCourse(ctx, t, courses, "Course B", "")

	require.NoError(t, chunks.ReplaceCourseChunks(ctx, "Course A", []domain.CourseChunk{
		{CourseTitle: "Course A", LessonNumber: 1, ChunkIndex: 0, Content: "a", Embedding: unitVector(0)},
	}))
	require.NoError(t, chunks.ReplaceCourseChunks(ctx, "Course B", []domain.CourseChunk{
		{CourseTitle: "Course B", LessonNumber: 1, ChunkIndex: 0, Content: "b", Embedding: unitVector(0)},
	}))

	results, err := chunks.SearchChunks(ctx, unitVector(0), "Course B", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Course B", results[0].Chunk.CourseTitle)
}

func TestChunkRepository_Search_EmptyStore(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	chunks := NewChunkRepository(pool)

	results, err := chunks.SearchChunks(ctx, unitVector(0), "", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChunkRepository_Search_TiesFollowIngestionOrder(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	courses := NewCourseRepository(pool)
	chunks := NewChunkRepository(pool)

	seedCourse(ctx, t, courses, "Intro to X", "")

	// Equidistant chunks: the search must return them in ingestion order
	// every time.
	stored := []domain.CourseChunk{
		{CourseTitle: "Intro to X", LessonNumber: 1, ChunkIndex: 0, Content: "first", Embedding: unitVector(1)},
		{CourseTitle: "Intro to X", LessonNumber: 1, ChunkIndex: 1, Content: "second", Embedding: unitVector(2)},
		{CourseTitle: "Intro to X", LessonNumber: 1, ChunkIndex: 2, Content: "third", Embedding: unitVector(3)},
	}
	require.NoError(t, chunks.ReplaceCourseChunks(ctx, "Intro to X", stored))

	for i := 0; i < 3; i++ {
		results, err := chunks.SearchChunks(ctx, unitVector(0), "", 5)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "first", results[0].Chunk.Content)
		assert.Equal(t, "second", results[1].Chunk.Content)
		assert.Equal(t, "third", results[2].Chunk.Content)
	}
}

func TestChunkRepository_ReplaceCascadesOnCourseDelete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	courses := NewCourseRepository(pool)
	chunks := NewChunkRepository(pool)

	seedCourse(ctx, t, courses, "Doomed", "")
	require.NoError(t, chunks.ReplaceCourseChunks(ctx, "Doomed", []domain.CourseChunk{
		{CourseTitle: "Doomed", LessonNumber: 1, ChunkIndex: 0, Content: "c", Embedding: unitVector(0)},
	}))

	require.NoError(t, courses.Delete(ctx, "Doomed"))

	count, err := chunks.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/studyloop/studyloop/internal/domain"
)

// ChunkRepository handles persistence of embedded course chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// ReplaceCourseChunks deletes existing chunks for a course and inserts new
// ones, keeping re-ingestion idempotent rather than additive.
func (r *ChunkRepository) ReplaceCourseChunks(ctx context.Context, courseTitle string, chunks []domain.CourseChunk) error {
	_, err := r.db.Exec(ctx, `DELETE FROM course_chunks WHERE course_title = $1`, courseTitle)
	if err != nil {
		return err
	}

	for _, c := range chunks {
		var lessonNumber *int
		if c.LessonNumber != domain.NoLesson {
			n := c.LessonNumber
			lessonNumber = &n
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO course_chunks
				(course_title, lesson_number, lesson_link, chunk_index, content, embedding)
			 VALUES
				($1, $2, $3, $4, $5, $6)`,
			courseTitle,
			lessonNumber,
			nullableString(c.LessonLink),
			c.ChunkIndex,
			c.Content,
			pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// SearchChunks returns the chunks nearest to the query embedding by cosine
// similarity, highest score first. Ties fall back to ingestion order (the
// serial row id) so a fixed query over a fixed corpus always returns the
// same sequence. An empty store yields an empty result, not an error.
func (r *ChunkRepository) SearchChunks(ctx context.Context, embedding []float32, courseFilter string, limit int) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(embedding)

	query := `
		SELECT cc.course_title, cc.lesson_number, cc.lesson_link, cc.chunk_index, cc.content,
		       1.0 / (1.0 + (cc.embedding <=> $1)) AS score,
		       c.link
		FROM course_chunks cc
		LEFT JOIN courses c ON c.title = cc.course_title
		ORDER BY cc.embedding <=> $1, cc.id
		LIMIT $2`
	args := []any{vec, limit}

	if courseFilter != "" {
		query = `
		SELECT cc.course_title, cc.lesson_number, cc.lesson_link, cc.chunk_index, cc.content,
		       1.0 / (1.0 + (cc.embedding <=> $1)) AS score,
		       c.link
		FROM course_chunks cc
		LEFT JOIN courses c ON c.title = cc.course_title
		WHERE cc.course_title = $2
		ORDER BY cc.embedding <=> $1, cc.id
		LIMIT $3`
		args = []any{vec, courseFilter, limit}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.ScoredChunk, 0, limit)
	for rows.Next() {
		var sc domain.ScoredChunk
		var lessonNumber *int
		var lessonLink, courseLink *string
		if err := rows.Scan(
			&sc.Chunk.CourseTitle,
			&lessonNumber,
			&lessonLink,
			&sc.Chunk.ChunkIndex,
			&sc.Chunk.Content,
			&sc.Score,
			&courseLink,
		); err != nil {
			return nil, err
		}
		sc.Chunk.LessonNumber = domain.NoLesson
		if lessonNumber != nil {
			sc.Chunk.LessonNumber = *lessonNumber
		}
		if lessonLink != nil {
			sc.Chunk.LessonLink = *lessonLink
		}
		if courseLink != nil {
			sc.CourseLink = *courseLink
		}
		results = append(results, sc)
	}

	return results, rows.Err()
}

// CountChunks returns the total number of stored chunks.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM course_chunks`).Scan(&count)
	return count, err
}

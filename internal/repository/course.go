package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyloop/studyloop/internal/domain"
)

// CourseRepository handles persistence of the course catalog.
type CourseRepository struct {
	db dbtx
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: pool}
}

func NewCourseRepositoryWithTx(tx pgx.Tx) *CourseRepository {
	return &CourseRepository{db: tx}
}

// Upsert inserts the course or replaces its catalog entry when the title
// already exists.
func (r *CourseRepository) Upsert(ctx context.Context, c *domain.Course) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO courses (title, link, instructor, lesson_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (title) DO UPDATE
		 SET link = EXCLUDED.link,
		     instructor = EXCLUDED.instructor,
		     lesson_count = EXCLUDED.lesson_count,
		     updated_at = EXCLUDED.updated_at`,
		c.Title, nullableString(c.Link), nullableString(c.Instructor), c.LessonCount(), now,
	)
	return err
}

// GetByTitle returns the catalog entry for a course.
func (r *CourseRepository) GetByTitle(ctx context.Context, title string) (*domain.CourseStats, error) {
	var stats domain.CourseStats
	err := r.db.QueryRow(ctx,
		`SELECT title, lesson_count FROM courses WHERE title = $1`,
		title,
	).Scan(&stats.Title, &stats.LessonCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}
	return &stats, nil
}

// List returns catalog stats for every ingested course, ordered by title
// for stable output.
func (r *CourseRepository) List(ctx context.Context) ([]domain.CourseStats, error) {
	rows, err := r.db.Query(ctx,
		`SELECT title, lesson_count FROM courses ORDER BY title`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]domain.CourseStats, 0)
	for rows.Next() {
		var s domain.CourseStats
		if err := rows.Scan(&s.Title, &s.LessonCount); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// ExistingTitles returns the set of course titles already in the catalog.
func (r *CourseRepository) ExistingTitles(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT title FROM courses`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make(map[string]bool)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles[title] = true
	}

	return titles, rows.Err()
}

// Delete removes a course and, via cascade, its chunks.
func (r *CourseRepository) Delete(ctx context.Context, title string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE title = $1`, title)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

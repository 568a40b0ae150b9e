package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyloop/studyloop/internal/service"
)

// QueryLogRepository stores answered queries for evaluation/feedback loops.
type QueryLogRepository struct {
	pool *pgxpool.Pool
}

func NewQueryLogRepository(pool *pgxpool.Pool) *QueryLogRepository {
	return &QueryLogRepository{pool: pool}
}

func (r *QueryLogRepository) CreateQueryLog(ctx context.Context, entry service.QueryLogEntry) (string, error) {
	sourcesJSON, _ := json.Marshal(entry.Sources)

	var id string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO query_logs (session_id, query, course_filter, retrieved_count, sources, degraded, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		entry.SessionID,
		entry.Query,
		nullableString(entry.CourseFilter),
		entry.RetrievedCount,
		sourcesJSON,
		entry.Degraded,
		entry.DurationMs,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

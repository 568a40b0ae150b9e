package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/studyloop/studyloop/internal/domain"
)

// DefaultMaxResults bounds how many chunks a search returns when the caller
// does not say otherwise.
const DefaultMaxResults = 5

// embedBatchSize bounds how many chunk texts go into one embeddings request.
const embedBatchSize = 100

// Embedder defines the embedding operations the vector store depends on
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// CourseRepositoryInterface defines the catalog operations the store depends on
type CourseRepositoryInterface interface {
	Upsert(ctx context.Context, c *domain.Course) error
	GetByTitle(ctx context.Context, title string) (*domain.CourseStats, error)
	List(ctx context.Context) ([]domain.CourseStats, error)
	ExistingTitles(ctx context.Context) (map[string]bool, error)
}

// ChunkRepositoryInterface defines the chunk persistence operations the store depends on
type ChunkRepositoryInterface interface {
	ReplaceCourseChunks(ctx context.Context, courseTitle string, chunks []domain.CourseChunk) error
	SearchChunks(ctx context.Context, embedding []float32, courseFilter string, limit int) ([]domain.ScoredChunk, error)
	CountChunks(ctx context.Context) (int, error)
}

// TxRepositories provides repositories bound to a single transaction.
type TxRepositories interface {
	Courses() CourseRepositoryInterface
	Chunks() ChunkRepositoryInterface
}

// TxRunnerInterface runs a function within a database transaction.
type TxRunnerInterface interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

// VectorStore embeds course chunks into the database and answers similarity
// searches over them.
type VectorStore struct {
	embedder   Embedder
	courses    CourseRepositoryInterface
	chunks     ChunkRepositoryInterface
	txRunner   TxRunnerInterface
	maxResults int

	mu          sync.Mutex
	courseLocks map[string]*sync.Mutex
}

func NewVectorStore(embedder Embedder, courses CourseRepositoryInterface, chunks ChunkRepositoryInterface, txRunner TxRunnerInterface, maxResults int) *VectorStore {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &VectorStore{
		embedder:    embedder,
		courses:     courses,
		chunks:      chunks,
		txRunner:    txRunner,
		maxResults:  maxResults,
		courseLocks: make(map[string]*sync.Mutex),
	}
}

// courseLock returns the mutex serializing ingestion for one course title.
// Different courses ingest concurrently; the same course never does.
func (s *VectorStore) courseLock(title string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock := s.courseLocks[title]
	if lock == nil {
		lock = &sync.Mutex{}
		s.courseLocks[title] = lock
	}
	return lock
}

// Ingest embeds the chunks and stores the course with them, replacing any
// previous content for the same title in one transaction. When force is
// false a title already in the catalog is skipped. Returns whether the
// course was written.
func (s *VectorStore) Ingest(ctx context.Context, course *domain.Course, chunks []domain.CourseChunk, force bool) (bool, error) {
	if err := domain.ValidateCourse(course); err != nil {
		return false, err
	}

	lock := s.courseLock(course.Title)
	lock.Lock()
	defer lock.Unlock()

	if !force {
		_, err := s.courses.GetByTitle(ctx, course.Title)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, domain.ErrCourseNotFound) {
			return false, fmt.Errorf("check catalog for %q: %w", course.Title, err)
		}
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}
		embeddings, err := s.embedder.GenerateEmbeddings(ctx, texts)
		if err != nil {
			return false, fmt.Errorf("embed chunks for %q: %w", course.Title, err)
		}
		for i, e := range embeddings {
			chunks[start+i].Embedding = e
		}
	}

	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Courses().Upsert(ctx, course); err != nil {
			return err
		}
		return repos.Chunks().ReplaceCourseChunks(ctx, course.Title, chunks)
	})
	if err != nil {
		return false, fmt.Errorf("store course %q: %w", course.Title, err)
	}

	return true, nil
}

// Search embeds the query and returns the most similar chunks, best first.
// An empty store yields an empty slice, not an error. Failures come back as
// RETRIEVAL_FAILED with the cause attached.
func (s *VectorStore) Search(ctx context.Context, query, courseFilter string, limit int) ([]domain.ScoredChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil && domain.IsTransportTimeout(err) {
		embedding, err = s.embedder.GenerateEmbedding(ctx, query)
	}
	if err != nil {
		return nil, domain.RetrievalError(err)
	}

	results, err := s.chunks.SearchChunks(ctx, embedding, courseFilter, limit)
	if err != nil {
		return nil, domain.RetrievalError(err)
	}
	return results, nil
}

// CourseStats returns catalog statistics for every ingested course.
func (s *VectorStore) CourseStats(ctx context.Context) ([]domain.CourseStats, error) {
	return s.courses.List(ctx)
}

// IngestedTitles returns the set of course titles already in the catalog,
// letting corpus loads skip known courses before doing any embedding work.
func (s *VectorStore) IngestedTitles(ctx context.Context) (map[string]bool, error) {
	return s.courses.ExistingTitles(ctx)
}

// ChunkCount returns the total number of stored chunks.
func (s *VectorStore) ChunkCount(ctx context.Context) (int, error) {
	return s.chunks.CountChunks(ctx)
}

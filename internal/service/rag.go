package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/studyloop/studyloop/internal/domain"
	"github.com/studyloop/studyloop/internal/telemetry"
)

// FallbackAnswer is returned when generation fails after retrieval
// succeeded. The caller still gets a well-formed result.
const FallbackAnswer = "I'm sorry, something went wrong while generating an answer. Please try asking again."

// VectorStoreInterface defines the retrieval operations the orchestrator depends on
type VectorStoreInterface interface {
	Ingest(ctx context.Context, course *domain.Course, chunks []domain.CourseChunk, force bool) (bool, error)
	Search(ctx context.Context, query, courseFilter string, limit int) ([]domain.ScoredChunk, error)
	CourseStats(ctx context.Context) ([]domain.CourseStats, error)
	ChunkCount(ctx context.Context) (int, error)
	IngestedTitles(ctx context.Context) (map[string]bool, error)
}

// GeneratorInterface defines the answer generation operation the orchestrator depends on
type GeneratorInterface interface {
	Generate(ctx context.Context, query string, history []domain.Turn, retrieved []domain.ScoredChunk) (string, []domain.Source, error)
}

// SessionStore defines the conversation state operations the orchestrator depends on
type SessionStore interface {
	CreateSession() string
	GetHistory(sessionID string) []domain.Turn
	RecordTurn(sessionID, query, answer string, sources []domain.Source)
	ClearSession(sessionID string)
}

// DocumentProcessor turns one raw course document into a course and its
// chunks.
type DocumentProcessor interface {
	Process(path string, raw []byte) (*domain.Course, []domain.CourseChunk, error)
}

// DocumentSource enumerates and fetches raw course documents, wherever they
// live.
type DocumentSource interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, path string) ([]byte, error)
}

// QueryLogEntry captures one answered query for offline evaluation.
type QueryLogEntry struct {
	SessionID      string
	Query          string
	CourseFilter   string
	RetrievedCount int
	Sources        []domain.Source
	Degraded       bool
	DurationMs     int64
}

// QueryLogger persists query log entries. Logging is best-effort; the
// orchestrator never fails a query over it.
type QueryLogger interface {
	CreateQueryLog(ctx context.Context, entry QueryLogEntry) (string, error)
}

// RAGService orchestrates one query through retrieval, generation and
// session recording. Individual stages may degrade; the caller always gets
// an answer.
type RAGService struct {
	store     VectorStoreInterface
	generator GeneratorInterface
	sessions  SessionStore
	processor DocumentProcessor
	queryLog  QueryLogger // optional
}

func NewRAGService(store VectorStoreInterface, generator GeneratorInterface, sessions SessionStore, processor DocumentProcessor, queryLog QueryLogger) *RAGService {
	return &RAGService{
		store:     store,
		generator: generator,
		sessions:  sessions,
		processor: processor,
		queryLog:  queryLog,
	}
}

// Query answers one question. An empty session id starts a new session and
// the minted id comes back in the result. Retrieval failure degrades to
// generation without context; generation failure degrades to the fallback
// answer. Only an empty query is an error.
func (s *RAGService) Query(ctx context.Context, query, sessionID, courseFilter string) (*domain.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	started := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "rag.query", telemetry.SpanAttributes{
		SessionID: sessionID,
		Course:    courseFilter,
		Operation: "query",
	})
	defer span.End()

	if sessionID == "" {
		sessionID = s.sessions.CreateSession()
	}
	history := s.sessions.GetHistory(sessionID)

	degraded := false

	retrieveCtx, retrieveSpan := telemetry.StartSpan(ctx, "rag.retrieve", telemetry.SpanAttributes{Course: courseFilter})
	retrieved, err := s.store.Search(retrieveCtx, query, courseFilter, 0)
	if err != nil {
		retrieveSpan.SetError(err)
		log.Printf("rag: retrieval failed, answering without context: %v", err)
		retrieved = nil
		degraded = true
	}
	retrieveSpan.End()

	generateCtx, generateSpan := telemetry.StartSpan(ctx, "rag.generate", telemetry.SpanAttributes{})
	answer, sources, err := s.generator.Generate(generateCtx, query, history, retrieved)
	if err != nil {
		generateSpan.SetError(err)
		log.Printf("rag: generation failed, returning fallback answer: %v", err)
		answer = FallbackAnswer
		sources = []domain.Source{}
		degraded = true
	}
	generateSpan.End()

	s.sessions.RecordTurn(sessionID, query, answer, sources)

	if s.queryLog != nil {
		entry := QueryLogEntry{
			SessionID:      sessionID,
			Query:          query,
			CourseFilter:   courseFilter,
			RetrievedCount: len(retrieved),
			Sources:        sources,
			Degraded:       degraded,
			DurationMs:     time.Since(started).Milliseconds(),
		}
		if _, err := s.queryLog.CreateQueryLog(ctx, entry); err != nil {
			log.Printf("rag: query log write failed: %v", err)
		}
	}

	return &domain.QueryResult{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	}, nil
}

// LoadCorpus ingests every document the source lists. Documents that fail to
// read, parse or ingest are skipped and reported; one bad file never aborts
// the load. Courses already in the catalog are skipped unless force is set.
func (s *RAGService) LoadCorpus(ctx context.Context, source DocumentSource, force bool) (*domain.LoadReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "rag.load_corpus", telemetry.SpanAttributes{Operation: "load_corpus"})
	defer span.End()

	paths, err := source.List(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	// Known titles are skipped before any embedding work happens. The
	// prefilter is best-effort; Ingest re-checks under its own lock.
	var existing map[string]bool
	if !force {
		existing, err = s.store.IngestedTitles(ctx)
		if err != nil {
			log.Printf("rag: catalog prefilter unavailable: %v", err)
			existing = nil
		}
	}

	report := &domain.LoadReport{}
	for _, path := range paths {
		raw, err := source.Read(ctx, path)
		if err != nil {
			log.Printf("rag: skipping %s: read failed: %v", path, err)
			report.AddSkip(path, "read failed: "+err.Error())
			continue
		}

		course, chunks, err := s.processor.Process(path, raw)
		if err != nil {
			log.Printf("rag: skipping %s: %v", path, err)
			report.AddSkip(path, err.Error())
			continue
		}

		if existing[course.Title] {
			report.AddSkip(path, "course already ingested: "+course.Title)
			continue
		}

		written, err := s.store.Ingest(ctx, course, chunks, force)
		if err != nil {
			log.Printf("rag: skipping %s: ingest failed: %v", path, err)
			report.AddSkip(path, "ingest failed: "+err.Error())
			continue
		}
		if !written {
			report.AddSkip(path, "course already ingested: "+course.Title)
			continue
		}

		report.Courses = append(report.Courses, domain.CourseStats{
			Title:       course.Title,
			LessonCount: course.LessonCount(),
		})
		report.TotalChunks += len(chunks)
		if existing != nil {
			existing[course.Title] = true
		}
		log.Printf("rag: ingested %q (%d lessons, %d chunks)", course.Title, course.LessonCount(), len(chunks))
	}

	return report, nil
}

// CourseStats reports the current catalog: every ingested course with its
// lesson count.
func (s *RAGService) CourseStats(ctx context.Context) ([]domain.CourseStats, error) {
	return s.store.CourseStats(ctx)
}

// ChunkCount reports how many chunks are stored across the whole catalog.
func (s *RAGService) ChunkCount(ctx context.Context) (int, error) {
	return s.store.ChunkCount(ctx)
}

// CreateSession mints a new conversation session.
func (s *RAGService) CreateSession() string {
	return s.sessions.CreateSession()
}

// ClearSession discards a conversation's history.
func (s *RAGService) ClearSession(sessionID string) {
	s.sessions.ClearSession(sessionID)
}

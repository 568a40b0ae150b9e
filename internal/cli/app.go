// Package cli wires the pipeline together behind cobra commands.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	sdkopenai "github.com/sashabaranov/go-openai"

	"github.com/studyloop/studyloop/internal/config"
	"github.com/studyloop/studyloop/internal/corpus"
	"github.com/studyloop/studyloop/internal/database"
	"github.com/studyloop/studyloop/internal/ingest"
	"github.com/studyloop/studyloop/internal/openai"
	"github.com/studyloop/studyloop/internal/repository"
	"github.com/studyloop/studyloop/internal/service"
	"github.com/studyloop/studyloop/internal/session"
	"github.com/studyloop/studyloop/internal/storage"
)

// App holds the wired pipeline shared by all commands.
type App struct {
	Cfg      *config.Config
	Pool     *pgxpool.Pool
	Store    *service.VectorStore
	RAG      *service.RAGService
	Sessions *session.Manager
}

func buildApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if !cfg.HasOpenAI() {
		return nil, fmt.Errorf("STUDYLOOP_OPENAI_API_KEY is required")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: sdkopenai.EmbeddingModel(cfg.EmbeddingModel),
		ChatModel:      cfg.ChatModel,
		EmbedTimeout:   cfg.EmbedTimeout,
		ChatTimeout:    cfg.GenerateTimeout,
	})

	courseRepo := repository.NewCourseRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	queryLogRepo := repository.NewQueryLogRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	store := service.NewVectorStore(client, courseRepo, chunkRepo, txRunner, cfg.MaxResults)
	generator := service.NewAIGenerator(client)
	sessions := session.NewManager(cfg.MaxHistory)
	processor := ingest.NewProcessor(ingest.ChunkConfig{
		Size:    cfg.ChunkSize,
		Overlap: cfg.ChunkOverlap,
	})

	rag := service.NewRAGService(store, generator, sessions, processor, queryLogRepo)

	return &App{
		Cfg:      cfg,
		Pool:     pool,
		Store:    store,
		RAG:      rag,
		Sessions: sessions,
	}, nil
}

func (a *App) Close() {
	a.Pool.Close()
}

// corpusSource resolves the configured corpus location into a document
// source: an s3://bucket/prefix URL or a local directory.
func (a *App) corpusSource(ctx context.Context) (service.DocumentSource, error) {
	if !corpus.IsS3Location(a.Cfg.DocsPath) {
		return corpus.NewDirSource(a.Cfg.DocsPath), nil
	}

	bucket, prefix, err := corpus.ParseS3Location(a.Cfg.DocsPath)
	if err != nil {
		return nil, err
	}

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        a.Cfg.S3Endpoint,
		Region:          a.Cfg.S3Region,
		AccessKeyID:     a.Cfg.S3AccessKey,
		SecretAccessKey: a.Cfg.S3SecretKey,
		Bucket:          bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return corpus.NewS3Source(s3Client, prefix), nil
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs a database/sql handle
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else {
		log.Printf("migrations: database at version %d", version)
	}

	return nil
}

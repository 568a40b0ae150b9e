package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/config"
	"github.com/studyloop/studyloop/internal/jobs"
	"github.com/studyloop/studyloop/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the corpus and keep it in sync",
		Long: "Serve ingests the configured corpus on startup and, when a rescan\n" +
			"interval is set, keeps watching the corpus location for new courses\n" +
			"until interrupted.",
		RunE: runServe,
	}

	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("force", false, "Re-ingest courses that are already in the catalog")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	app, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	log.Println("connected to database")

	source, err := app.corpusSource(ctx)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	report, err := app.RAG.LoadCorpus(ctx, source, force)
	if err != nil {
		return fmt.Errorf("initial corpus load failed: %w", err)
	}
	log.Printf("corpus loaded: %d course(s), %d chunk(s), %d skipped",
		len(report.Courses), report.TotalChunks, len(report.Skipped))

	var corpusWorker *jobs.Worker
	if cfg.RescanInterval > 0 {
		processor := jobs.NewCorpusWorker(app.RAG, source)
		corpusWorker = jobs.NewWorker(processor, cfg.RescanInterval)
		go corpusWorker.Start(ctx)
		log.Printf("corpus rescan worker started (interval %v)", cfg.RescanInterval)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if corpusWorker != nil {
		corpusWorker.Stop()
	}

	log.Println("exited")
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/config"
)

// LoadCmd returns the load command
func LoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Ingest the configured corpus into the vector store",
		Long: "Load parses every course document at the configured corpus location,\n" +
			"embeds its chunks and stores them. Courses already in the catalog are\n" +
			"skipped unless --force is set.",
		RunE: runLoad,
	}

	cmd.Flags().Bool("force", false, "Re-ingest courses that are already in the catalog")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations")

	return cmd
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
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

	source, err := app.corpusSource(ctx)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	report, err := app.RAG.LoadCorpus(ctx, source, force)
	if err != nil {
		return fmt.Errorf("corpus load failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ingested %d course(s), %d chunk(s)\n", len(report.Courses), report.TotalChunks)
	for _, c := range report.Courses {
		fmt.Fprintf(out, "  %s (%d lessons)\n", c.Title, c.LessonCount)
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d document(s):\n", len(report.Skipped))
		for _, s := range report.Skipped {
			fmt.Fprintf(out, "  %s: %s\n", s.Path, s.Reason)
		}
	}

	return nil
}

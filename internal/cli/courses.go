package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/config"
)

// CoursesCmd returns the courses command
func CoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List ingested courses and their lesson counts",
		RunE:  runCourses,
	}
}

func runCourses(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.RAG.CourseStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	chunkCount, err := app.RAG.ChunkCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d course(s), %d chunk(s)\n", len(stats), chunkCount)
	for _, s := range stats {
		fmt.Fprintf(out, "  %s (%d lessons)\n", s.Title, s.LessonCount)
	}

	return nil
}

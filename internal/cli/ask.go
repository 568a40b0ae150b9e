package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/config"
	"github.com/studyloop/studyloop/internal/domain"
)

// AskCmd returns the ask command
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question against the ingested corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	cmd.Flags().String("course", "", "Restrict retrieval to one course title")
	cmd.Flags().String("session", "", "Continue an existing session id")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	courseFilter, _ := cmd.Flags().GetString("course")
	sessionID, _ := cmd.Flags().GetString("session")

	result, err := app.RAG.Query(ctx, strings.Join(args, " "), sessionID, courseFilter)
	if err != nil {
		return err
	}

	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, result *domain.QueryResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Answer)
	if len(result.Sources) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, s := range result.Sources {
			if s.Link != "" {
				fmt.Fprintf(out, "  %s (%s)\n", s.Label, s.Link)
			} else {
				fmt.Fprintf(out, "  %s\n", s.Label)
			}
		}
	}
	fmt.Fprintf(out, "\nsession: %s\n", result.SessionID)
}

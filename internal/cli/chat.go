package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/config"
)

// ChatCmd returns the chat command
func ChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question-answering session",
		Long: "Chat keeps a conversation session across questions so follow-ups can\n" +
			"refer back to earlier answers. Type /quit to exit, /clear to start over.",
		RunE: runChat,
	}

	cmd.Flags().String("course", "", "Restrict retrieval to one course title")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
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
	sessionID := app.RAG.CreateSession()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session %s: ask away (/quit to exit, /clear to start over)\n", sessionID)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case line == "/clear":
			app.RAG.ClearSession(sessionID)
			sessionID = app.RAG.CreateSession()
			fmt.Fprintf(out, "started session %s\n", sessionID)
			continue
		}

		result, err := app.RAG.Query(ctx, line, sessionID, courseFilter)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		fmt.Fprintln(out, result.Answer)
		for _, s := range result.Sources {
			fmt.Fprintf(out, "  [%s]\n", s.Label)
		}
	}
}

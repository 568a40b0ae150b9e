package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd returns the studyloopd root command with all subcommands attached.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studyloopd",
		Short: "Course-corpus question answering service",
		Long: "studyloopd ingests course documents into a vector store and answers\n" +
			"questions about them with cited sources.",
		SilenceUsage: true,
	}

	root.AddCommand(
		ServeCmd(),
		LoadCmd(),
		AskCmd(),
		ChatCmd(),
		CoursesCmd(),
	)

	return root
}

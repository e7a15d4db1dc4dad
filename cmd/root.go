package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quizflow",
	Short: "Build, preview and serve branching quizzes",
	Long: `quizflow stores quizzes whose questions can jump ahead or end the quiz
depending on the option a respondent picks. Quizzes are edited from the
command line or imported from JSON/YAML documents, previewed in the
terminal, and served to web clients over HTTP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZFLOW_DB_DSN)")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(addQuestionCmd)
	rootCmd.AddCommand(editQuestionCmd)
	rootCmd.AddCommand(moveQuestionCmd)
	rootCmd.AddCommand(deleteQuestionCmd)
	rootCmd.AddCommand(setBranchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(responsesCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

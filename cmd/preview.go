package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizflow/internal/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview <quiz-id|file>",
	Short: "Take a quiz in the terminal",
	Long: `Run a quiz the way a respondent sees it, following its branching rules.

Completed runs of a stored quiz are recorded as responses unless --dry-run
is given. Documents loaded from a file are never recorded.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		q, stored, err := a.loadQuiz(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		opts := preview.Options{Resolver: a.cfg.Resolver()}
		if dry, _ := cmd.Flags().GetBool("dry-run"); stored && !dry {
			opts.Responses = a.responses
		}
		a.log.Debug("preview started", zap.String("quiz_id", q.ID), zap.Bool("recording", opts.Responses != nil))
		return preview.Run(cmd.Context(), q, opts)
	}),
}

func init() {
	previewCmd.Flags().Bool("dry-run", false, "Do not record the completed session")
}

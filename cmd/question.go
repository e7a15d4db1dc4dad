package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizflow/internal/builder"
	"github.com/abhisek/quizflow/internal/quiz"
)

var addQuestionCmd = &cobra.Command{
	Use:   "add-question <quiz-id>",
	Short: "Append a question to a quiz",
	Long: `Append a question to a quiz. Choice questions get two placeholder
options unless --option is given. The new question's ID and its option IDs
are printed so branching rules can be set.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		typ, _ := cmd.Flags().GetString("type")
		t, err := quiz.ParseQuestionType(typ)
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")

		q, added, err := a.editor.AddQuestion(ctx, args[0], t, title)
		if err != nil {
			return err
		}

		patch := questionPatch(cmd)
		if patch.Options != nil || patch.Required != nil {
			if q, err = a.editor.UpdateQuestion(ctx, q.ID, added.ID, patch); err != nil {
				return err
			}
			added, _ = q.Question(added.ID)
		}
		a.log.Debug("question added", zap.String("quiz_id", q.ID), zap.String("question_id", added.ID))
		printQuestion(cmd, added)
		return nil
	}),
}

var editQuestionCmd = &cobra.Command{
	Use:   "edit-question <quiz-id> <question-id>",
	Short: "Change a question's title, type, options or required flag",
	Long: `Change a question. --option replaces the whole option list. Rules for
options that disappear are dropped, and switching to a type without
options clears its branching.`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		patch := questionPatch(cmd)
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			patch.Title = &title
		}
		if cmd.Flags().Changed("type") {
			typ, _ := cmd.Flags().GetString("type")
			t, err := quiz.ParseQuestionType(typ)
			if err != nil {
				return err
			}
			patch.Type = &t
		}
		q, err := a.editor.UpdateQuestion(cmd.Context(), args[0], args[1], patch)
		if err != nil {
			return err
		}
		edited, _ := q.Question(args[1])
		printQuestion(cmd, edited)
		return nil
	}),
}

var moveQuestionCmd = &cobra.Command{
	Use:   "move-question <quiz-id> <question-id> <position>",
	Short: "Move a question to a 1-based position in the default order",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		pos, err := strconv.Atoi(args[2])
		if err != nil || pos < 1 {
			return fmt.Errorf("invalid position %q: must be a positive number", args[2])
		}
		_, err = a.editor.MoveQuestion(cmd.Context(), args[0], args[1], pos-1)
		return err
	}),
}

var deleteQuestionCmd = &cobra.Command{
	Use:   "delete-question <quiz-id> <question-id>",
	Short: "Remove a question; rules that pointed at it fall back to the default order",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		_, err := a.editor.DeleteQuestion(cmd.Context(), args[0], args[1])
		return err
	}),
}

var setBranchCmd = &cobra.Command{
	Use:   "set-branch <quiz-id> <question-id> <option-id> <target>",
	Short: "Route an option to a question, to completion, or back to the default order",
	Long: `Set where picking an option leads. target is a question ID, "complete"
to end the quiz, or "next" to follow the default order.`,
	Args: cobra.ExactArgs(4),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		target := quiz.ParseBranchTarget(args[3])
		_, err := a.editor.SetBranch(cmd.Context(), args[0], args[1], args[2], target)
		if err != nil {
			return err
		}
		a.log.Debug("branch set",
			zap.String("question_id", args[1]),
			zap.String("option_id", args[2]),
			zap.Stringer("target", target))
		return nil
	}),
}

// questionPatch reads the --option and --required flags shared by
// add-question and edit-question.
func questionPatch(cmd *cobra.Command) builder.QuestionPatch {
	var patch builder.QuestionPatch
	if cmd.Flags().Changed("option") {
		texts, _ := cmd.Flags().GetStringArray("option")
		opts := make([]quiz.Option, len(texts))
		for i, t := range texts {
			opts[i] = quiz.Option{Text: t}
		}
		patch.Options = &opts
	}
	if cmd.Flags().Changed("required") {
		req, _ := cmd.Flags().GetBool("required")
		patch.Required = &req
	}
	return patch
}

func printQuestion(cmd *cobra.Command, q quiz.Question) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, q.ID)
	for _, o := range q.Options {
		target := q.Branching.Target(o.ID)
		fmt.Fprintf(out, "  %s  %s  -> %s\n", o.ID, o.Text, target)
	}
}

func init() {
	addQuestionCmd.Flags().String("type", string(quiz.TypeTextList), "Question type: image-matrix, image-list, text-list, text-field or contact-fields")
	addQuestionCmd.Flags().String("title", "", "Question title")
	addQuestionCmd.Flags().StringArray("option", nil, "Option text (repeatable)")
	addQuestionCmd.Flags().Bool("required", false, "Mark the question as required")

	editQuestionCmd.Flags().String("type", "", "New question type")
	editQuestionCmd.Flags().String("title", "", "New title")
	editQuestionCmd.Flags().StringArray("option", nil, "Replacement option text (repeatable)")
	editQuestionCmd.Flags().Bool("required", false, "Mark the question as required")
}

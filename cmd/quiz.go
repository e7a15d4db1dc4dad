package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizflow/internal/document"
	"github.com/abhisek/quizflow/internal/graph"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an empty quiz",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		q, err := a.editor.NewQuiz(cmd.Context())
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		desc, _ := cmd.Flags().GetString("description")
		if title != "" || desc != "" {
			if title == "" {
				title = q.Title
			}
			if q, err = a.editor.Rename(cmd.Context(), q.ID, title, desc); err != nil {
				return err
			}
		}
		a.log.Debug("quiz created", zap.String("quiz_id", q.ID))
		fmt.Fprintln(cmd.OutOrStdout(), q.ID)
		return nil
	}),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored quizzes",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		quizzes, err := a.quizzes.List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-36s  %-30s  %9s  %9s  %s\n", "ID", "Title", "Questions", "Responses", "Created")
		fmt.Fprintln(out, strings.Repeat("─", 110))
		for _, q := range quizzes {
			n, err := a.responses.Count(cmd.Context(), q.ID)
			if err != nil {
				return err
			}
			title := q.Title
			if len(title) > 30 {
				title = title[:27] + "..."
			}
			fmt.Fprintf(out, "%-36s  %-30s  %9d  %9d  %s\n",
				q.ID, title, len(q.Questions), n, q.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(out, "\n%d quizzes\n", len(quizzes))
		return nil
	}),
}

var showCmd = &cobra.Command{
	Use:   "show <quiz-id>",
	Short: "Print a quiz as a JSON or YAML document",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		q, err := a.quizzes.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		f, _ := cmd.Flags().GetString("format")
		format, err := document.ParseFormat(f)
		if err != nil {
			return err
		}
		data, err := document.Encode(q, format)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}),
}

var renameCmd = &cobra.Command{
	Use:   "rename <quiz-id>",
	Short: "Change a quiz's title and description",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		q, err := a.quizzes.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		title, desc := q.Title, q.Description
		if cmd.Flags().Changed("title") {
			title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("description") {
			desc, _ = cmd.Flags().GetString("description")
		}
		_, err = a.editor.Rename(cmd.Context(), q.ID, title, desc)
		return err
	}),
}

var settingsCmd = &cobra.Command{
	Use:   "settings <quiz-id>",
	Short: "Change how a quiz is presented",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		q, err := a.quizzes.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		s := q.Settings
		flags := cmd.Flags()
		if flags.Changed("progress-type") {
			s.ProgressType, _ = flags.GetString("progress-type")
		}
		if flags.Changed("progress-color") {
			s.ProgressColor, _ = flags.GetString("progress-color")
		}
		if flags.Changed("mobile-only") {
			s.MobileOnly, _ = flags.GetBool("mobile-only")
		}
		if flags.Changed("cookie-tracking") {
			s.CookieTracking, _ = flags.GetBool("cookie-tracking")
		}
		_, err = a.editor.UpdateSettings(cmd.Context(), q.ID, s)
		return err
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <quiz-id>",
	Short: "Delete a quiz and its responses",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.quizzes.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		a.log.Info("quiz deleted", zap.String("quiz_id", args[0]))
		return nil
	}),
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a quiz document without storing it",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		q, err := document.Load(args[0], a.cfg.ValidateOptions()...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %q has %d questions\n", q.Title, len(q.Questions))
		return nil
	}),
}

var graphCmd = &cobra.Command{
	Use:   "graph <quiz-id|file>",
	Short: "Print the question flow as DOT, Mermaid or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		q, _, err := a.loadQuiz(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		var opts []graph.Option
		if end, _ := cmd.Flags().GetBool("end"); end {
			opts = append(opts, graph.WithEndNode())
		}
		g := graph.Project(q, opts...)

		out := cmd.OutOrStdout()
		switch f, _ := cmd.Flags().GetString("format"); f {
		case "dot":
			fmt.Fprint(out, g.DOT())
		case "mermaid":
			fmt.Fprint(out, g.Mermaid())
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		default:
			return fmt.Errorf("invalid format %q: must be dot, mermaid or json", f)
		}
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store a quiz document under a new ID",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		q, err := document.Load(args[0], a.cfg.ValidateOptions()...)
		if err != nil {
			return err
		}
		created, err := a.quizzes.Create(cmd.Context(), q)
		if err != nil {
			return err
		}
		a.log.Debug("quiz imported", zap.String("quiz_id", created.ID), zap.String("path", args[0]))
		fmt.Fprintln(cmd.OutOrStdout(), created.ID)
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export <quiz-id> <file>",
	Short: "Write a stored quiz to a JSON or YAML document",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		q, err := a.quizzes.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return document.Write(args[1], q)
	}),
}

func init() {
	newCmd.Flags().String("title", "", "Quiz title")
	newCmd.Flags().String("description", "", "Quiz description")

	showCmd.Flags().String("format", "yaml", "Output format: json or yaml")

	renameCmd.Flags().String("title", "", "New title")
	renameCmd.Flags().String("description", "", "New description")

	settingsCmd.Flags().String("progress-type", "", "Progress indicator: bar, steps or percentage")
	settingsCmd.Flags().String("progress-color", "", "Progress color name or #rrggbb")
	settingsCmd.Flags().Bool("mobile-only", false, "Publish for mobile devices only")
	settingsCmd.Flags().Bool("cookie-tracking", false, "Enable cookie tracking")

	graphCmd.Flags().String("format", "dot", "Output format: dot, mermaid or json")
	graphCmd.Flags().Bool("end", false, "Add a terminal node for completing transitions")
}

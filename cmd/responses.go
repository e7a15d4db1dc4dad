package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizflow/internal/store"
)

var responsesCmd = &cobra.Command{
	Use:   "responses <quiz-id>",
	Short: "List the completed sessions recorded for a quiz",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if _, err := a.quizzes.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		after, _ := cmd.Flags().GetInt64("after")
		list, err := a.responses.ListByQuiz(cmd.Context(), args[0], store.QueryOpts{Limit: limit, After: after})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			for _, r := range list {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		}

		fmt.Fprintf(out, "%6s  %-16s  %8s  %-24s  %s\n", "Seq", "Completed", "Duration", "Path", "Answers")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, r := range list {
			answers, err := json.Marshal(r.Answers)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%6d  %-16s  %8s  %-24s  %s\n",
				r.Sequence,
				r.CompletedAt.Local().Format("2006-01-02 15:04"),
				r.CompletedAt.Sub(r.StartedAt).Round(time.Second),
				strings.Join(r.Path, ">"),
				answers)
		}
		fmt.Fprintf(out, "\n%d responses\n", len(list))
		return nil
	}),
}

func init() {
	responsesCmd.Flags().Int("limit", 0, "Maximum number of responses (0 = all)")
	responsesCmd.Flags().Int64("after", 0, "Only responses with a sequence number above this")
	responsesCmd.Flags().Bool("json", false, "Print one JSON object per line")
}

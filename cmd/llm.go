package cmd

import (
	"fmt"
	"strconv"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/practix/internal/ui/components"
	"github.com/abhisek/practix/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show requests and token usage by purpose",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		window, _ := cmd.Flags().GetDuration("since")

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		since := time.Time{}
		if window > 0 {
			since = time.Now().Add(-window)
		}
		usage, err := st.EventRepo().LLMUsage(ctx, since)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(usage) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		var calls, failures, in, out int
		rows := make([][]string, 0, len(usage)+1)
		for _, u := range usage {
			rows = append(rows, []string{
				u.Purpose,
				strconv.Itoa(u.Requests),
				strconv.Itoa(u.Failures),
				strconv.Itoa(u.InputTokens),
				strconv.Itoa(u.OutputTokens),
				strconv.Itoa(u.InputTokens + u.OutputTokens),
			})
			calls += u.Requests
			failures += u.Failures
			in += u.InputTokens
			out += u.OutputTokens
		}
		rows = append(rows, []string{
			theme.Heading.Render("TOTAL"),
			strconv.Itoa(calls), strconv.Itoa(failures),
			strconv.Itoa(in), strconv.Itoa(out), strconv.Itoa(in + out),
		})
		lipgloss.Println(components.Table([]string{"Purpose", "Calls", "Failed", "Input", "Output", "Total"}, rows))
		return nil
	},
}

func init() {
	llmUsageCmd.Flags().Duration("since", 0, "Only count requests in this window, e.g. 24h (default all)")
	llmCmd.AddCommand(llmUsageCmd)
}

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/practix/internal/topicgraph"
	"github.com/abhisek/practix/internal/ui/components"
	"github.com/abhisek/practix/internal/ui/theme"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics of the catalog (optionally one branch)",
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")

		g, err := loadGraph(cfg)
		if err != nil {
			return err
		}

		var topics []topicgraph.Topic
		if branch != "" {
			topics = g.ByBranch(branch)
			if len(topics) == 0 {
				return fmt.Errorf("no topics found for branch %q", branch)
			}
		} else {
			topics = g.TopologicalOrder()
		}

		rows := make([][]string, 0, len(topics))
		for _, t := range topics {
			diffs := make([]string, 0, len(t.Difficulties))
			for _, d := range t.Difficulties {
				diffs = append(diffs, string(d))
			}
			rows = append(rows, []string{
				t.ID,
				t.Name,
				t.Branch,
				strings.Join(t.Prerequisites, ", "),
				strings.Join(diffs, "/"),
				strconv.Itoa(t.EstimatedMins),
			})
		}
		lipgloss.Println(components.Table([]string{"ID", "Name", "Branch", "Prerequisites", "Difficulties", "Mins"}, rows))
		lipgloss.Println(theme.Dim.Render(fmt.Sprintf("%d topics", len(topics))))
		return nil
	},
}

func init() {
	topicsCmd.Flags().String("branch", "", "Filter by branch ID (e.g. fractions)")
}

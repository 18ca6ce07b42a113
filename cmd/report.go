package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/practix/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export progress and set history to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out, _ := cmd.Flags().GetString("out")
		limit, _ := cmd.Flags().GetInt("history")

		svc, err := newServices(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		user := currentUser()
		b := &report.Builder{Tracker: svc.tracker, Ledger: svc.ledger, Sets: svc.sets, HistoryLimit: limit}
		data, err := b.Collect(ctx, user, time.Now())
		if err != nil {
			return fmt.Errorf("collect report: %w", err)
		}

		if out == "" {
			out = fmt.Sprintf("practix-%s-%s.xlsx", user, time.Now().Format("20060102"))
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		if err := report.Write(f, data); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close report: %w", err)
		}
		fmt.Println("Wrote", out)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringP("out", "o", "", "Output file (default practix-<user>-<date>.xlsx)")
	reportCmd.Flags().Int("history", 90, "Maximum number of sets in the history sheet")
}

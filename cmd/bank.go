package cmd

import (
	"fmt"
	"os"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/practix/internal/content"
	"github.com/abhisek/practix/internal/ui/components"
	"github.com/abhisek/practix/internal/ui/theme"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage the curated exercise bank",
}

var bankImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Validate and import exercises from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read bank file: %w", err)
		}

		g, err := loadGraph(cfg)
		if err != nil {
			return err
		}
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := content.ImportBank(ctx, st.ExerciseRepo(), g, data)
		if err != nil {
			return err
		}
		log.Info("bank imported", "file", args[0], "exercises", n)
		lipgloss.Println(theme.Correct.Render(fmt.Sprintf("Imported %d exercises.", n)))
		return nil
	},
}

var bankStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count bank exercises per topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g, err := loadGraph(cfg)
		if err != nil {
			return err
		}
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		repo := st.ExerciseRepo()
		var rows [][]string
		total := 0
		for _, t := range g.TopologicalOrder() {
			n, err := repo.CountExercises(ctx, t.ID)
			if err != nil {
				return fmt.Errorf("count exercises: %w", err)
			}
			total += n
			rows = append(rows, []string{t.ID, strconv.Itoa(n)})
		}
		lipgloss.Println(components.Table([]string{"Topic", "Exercises"}, rows))
		lipgloss.Println(theme.Dim.Render(fmt.Sprintf("%d exercises", total)))
		return nil
	},
}

func init() {
	bankCmd.AddCommand(bankImportCmd)
	bankCmd.AddCommand(bankStatsCmd)
}

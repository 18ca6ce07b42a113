package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/practix/internal/progress"
	"github.com/abhisek/practix/internal/rewards"
	"github.com/abhisek/practix/internal/ui/components"
	"github.com/abhisek/practix/internal/ui/theme"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show topic mastery by branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		branch, _ := cmd.Flags().GetString("branch")

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		g, err := loadGraph(cfg)
		if err != nil {
			return err
		}

		ledger := newLedger(st, cfg, log)
		tracker := progress.NewTracker(g, st.ProgressRepo(), cfg.Mastery, nil, ledger, log)

		user := currentUser()
		profile, err := ledger.Profile(ctx, user)
		if err != nil {
			return err
		}
		loc := localized(profile.Locale)

		found := false
		for _, bv := range tracker.View(ctx, user) {
			if branch != "" && bv.Branch.ID != branch {
				continue
			}
			found = true
			name := bv.Branch.Name
			if loc && bv.Branch.LocalizedName != "" {
				name = bv.Branch.LocalizedName
			}
			lipgloss.Println(theme.Title.Render(name))
			rows := make([][]string, 0, len(bv.Topics))
			for _, tv := range bv.Topics {
				star := ""
				if tv.Recommended {
					star = theme.Reward.Render("★")
				}
				rows = append(rows, []string{
					tv.Topic.DisplayName(loc),
					stateLabel(tv.State),
					strconv.Itoa(tv.Progress.Mastery),
					fmt.Sprintf("%d/%d", tv.Progress.CorrectAttempts, tv.Progress.TotalAttempts),
					strconv.Itoa(tv.Progress.DaysPracticed.Len()),
					star,
				})
			}
			lipgloss.Println(components.Table([]string{"Topic", "State", "Mastery", "Correct", "Days", ""}, rows))
			fmt.Println()
		}
		if !found {
			return fmt.Errorf("no branch %q", branch)
		}
		return nil
	},
}

func stateLabel(s progress.DisplayState) string {
	switch s {
	case progress.DisplayMastered:
		return theme.Correct.Render("mastered")
	case progress.DisplayInProgress:
		return theme.Reward.Render("in progress")
	case progress.DisplayLocked:
		return theme.Dim.Render("locked")
	default:
		return theme.Body.Render("available")
	}
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show XP, level and streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ledger := newLedger(st, cfg, log)
		p, err := ledger.Profile(ctx, currentUser())
		if err != nil {
			return err
		}
		printProfile(p, ledger.Config().LevelProgress(p.TotalXP))
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update timezone, locale or daily goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var prefs rewards.Preferences
		prefs.Timezone, _ = cmd.Flags().GetString("timezone")
		prefs.Locale, _ = cmd.Flags().GetString("locale")
		prefs.DailyGoal, _ = cmd.Flags().GetInt("goal")

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ledger := newLedger(st, cfg, log)
		p, err := ledger.UpdatePreferences(ctx, currentUser(), prefs)
		if err != nil {
			return err
		}
		printProfile(p, ledger.Config().LevelProgress(p.TotalXP))
		return nil
	},
}

func init() {
	progressCmd.Flags().String("branch", "", "Only show one branch")
	profileSetCmd.Flags().String("timezone", "", "IANA timezone, e.g. Asia/Jerusalem")
	profileSetCmd.Flags().String("locale", "", "Locale for problem text, e.g. he")
	profileSetCmd.Flags().Int("goal", 0, "Problems per daily set (1-10)")
	profileCmd.AddCommand(profileSetCmd)
}

func printProfile(p rewards.Profile, lp rewards.LevelProgress) {
	lipgloss.Println(theme.Title.Render(p.UserID))
	next := fmt.Sprintf("%d/%d XP to level %d", lp.XPIntoLevel, lp.XPForNext, lp.Level+1)
	if lp.MaxLevel {
		next = "max level"
	}
	lipgloss.Println(components.NewProgressBar(fmt.Sprintf("Level %d", lp.Level), float64(lp.Percent())/100, true, barWidth).View())
	lipgloss.Println(theme.Dim.Render(next))

	goal := "default"
	if p.DailyGoal > 0 {
		goal = strconv.Itoa(p.DailyGoal)
	}
	last := p.LastPracticeDate
	if last == "" {
		last = "never"
	}
	rows := [][]string{
		{"Total XP", strconv.Itoa(p.TotalXP)},
		{"Streak", fmt.Sprintf("%d (longest %d)", p.CurrentStreak, p.LongestStreak)},
		{"Last practice", last},
		{"Timezone", p.Timezone},
		{"Locale", p.Locale},
		{"Daily goal", goal},
	}
	lipgloss.Println(components.Table([]string{"Profile", ""}, rows))
}

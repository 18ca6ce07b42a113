package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/practix/internal/dailyset"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show today's practice set, creating it on first use",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := newServices(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		user := currentUser()
		set, err := svc.sets.GetOrCreate(ctx, user)
		if err != nil {
			return fmt.Errorf("daily set: %w", err)
		}
		return showSet(ctx, svc, user, set)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <set-id|today> <problem-id|number> [answer]",
	Short: "Answer a problem of a set",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		image, _ := cmd.Flags().GetString("image")
		skip, _ := cmd.Flags().GetBool("skip")
		if len(args) < 3 && image == "" && !skip {
			return fmt.Errorf("give an answer, --image or --skip")
		}

		svc, err := newServices(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		user := currentUser()
		set, err := lookupSet(ctx, svc, user, args[0])
		if err != nil {
			return err
		}
		sub := dailyset.Submission{
			UserID:    user,
			SetID:     set.ID,
			ProblemID: problemRef(set, args[1]),
			ImageRef:  image,
			Skipped:   skip,
		}
		if len(args) == 3 {
			sub.Answer = args[2]
		}

		res, err := svc.sets.SubmitAnswer(ctx, sub)
		if err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		printResult(res)
		return nil
	},
}

var practiceCmd = &cobra.Command{
	Use:   "practice <topic-id>",
	Short: "Start an extra practice session on one topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		count, _ := cmd.Flags().GetInt("count")

		svc, err := newServices(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		user := currentUser()
		set, err := svc.sets.StartPractice(ctx, user, args[0], count)
		if err != nil {
			return fmt.Errorf("practice: %w", err)
		}
		return showSet(ctx, svc, user, set)
	},
}

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "List recent sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		svc, err := newServices(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		sets, err := svc.sets.History(ctx, currentUser(), limit)
		if err != nil {
			return fmt.Errorf("list sets: %w", err)
		}
		printHistory(sets)
		return nil
	},
}

func init() {
	submitCmd.Flags().String("image", "", "Reference to an uploaded image of a handwritten answer")
	submitCmd.Flags().Bool("skip", false, "Skip the problem")
	practiceCmd.Flags().Int("count", 0, "Number of problems (default from sets.practice_size)")
	setsCmd.Flags().Int("limit", 20, "Maximum number of sets to list")

	dailyCmd.AddCommand(setsCmd)
}

// lookupSet resolves "today" to the current daily set.
func lookupSet(ctx context.Context, svc *services, user, ref string) (*dailyset.Set, error) {
	if ref == "today" {
		return svc.sets.GetOrCreate(ctx, user)
	}
	set, err := svc.sets.Set(ctx, user, ref)
	if err != nil {
		return nil, fmt.Errorf("load set: %w", err)
	}
	return set, nil
}

// problemRef maps a 1-based position to the problem ID. Anything else is
// taken as an ID.
func problemRef(set *dailyset.Set, ref string) string {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(set.Problems) {
		return set.Problems[n-1].ID
	}
	return ref
}

func showSet(ctx context.Context, svc *services, user string, set *dailyset.Set) error {
	attempts, err := svc.sets.Attempts(ctx, user, set.ID)
	if err != nil {
		return fmt.Errorf("load attempts: %w", err)
	}
	profile, err := svc.ledger.Profile(ctx, user)
	if err != nil {
		return err
	}
	printSet(set, attempts, localized(profile.Locale))
	return nil
}

// localized reports whether locale prefers the localized problem text.
func localized(locale string) bool {
	return locale != "" && !strings.HasPrefix(locale, "en")
}

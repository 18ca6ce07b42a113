package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/practix/internal/dailyset"
	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/ui/components"
	"github.com/abhisek/practix/internal/ui/theme"
)

const barWidth = 48

func attemptMark(a *dailyset.Attempt) string {
	switch {
	case a == nil:
		return theme.Dim.Render("·")
	case a.Skipped:
		return theme.Dim.Render("skipped")
	case a.IsCorrect == nil:
		return theme.Hint.Render("pending review")
	case *a.IsCorrect:
		return theme.Correct.Render("✓")
	default:
		return theme.Incorrect.Render("✗")
	}
}

func printSet(set *dailyset.Set, attempts []dailyset.Attempt, localized bool) {
	byProblem := make(map[string]*dailyset.Attempt, len(attempts))
	for i := range attempts {
		byProblem[attempts[i].ProblemID] = &attempts[i]
	}

	title := "Daily set · " + set.Date
	if set.Kind == dailyset.KindPractice {
		title = "Practice · " + set.FocusTopicName
	}
	lipgloss.Println(theme.Title.Render(title))
	if set.Kind == dailyset.KindDaily {
		lipgloss.Println(theme.Dim.Render("Focus: " + set.FocusTopicName))
	}
	lipgloss.Println(theme.Dim.Render("Set " + set.ID))
	fmt.Println()

	done := 0.0
	if set.Total() > 0 {
		done = float64(set.CompletedCount) / float64(set.Total())
	}
	label := fmt.Sprintf("%d/%d", set.CompletedCount, set.Total())
	lipgloss.Println(components.NewProgressBar(label, done, true, barWidth).View())
	fmt.Println()

	rows := make([][]string, 0, len(set.Problems))
	for i, p := range set.Problems {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.TopicName,
			string(p.Slot),
			string(p.Difficulty),
			strconv.Itoa(p.XPReward),
			attemptMark(byProblem[p.ID]),
		})
	}
	lipgloss.Println(components.Table([]string{"#", "Topic", "Slot", "Difficulty", "XP", "Status"}, rows))
	fmt.Println()

	for i, p := range set.Problems {
		lipgloss.Println(theme.Heading.Render(fmt.Sprintf("%d.", i+1)) + " " + theme.Body.Render(questionText(p, localized)))
		if byProblem[p.ID] == nil {
			if hint := hintText(p, localized); hint != "" {
				lipgloss.Println("   " + theme.Hint.Render("Hint: "+hint))
			}
		}
	}

	if set.IsCompleted() {
		fmt.Println()
		lipgloss.Println(theme.Reward.Render(fmt.Sprintf("Completed · %d XP earned", set.XPEarned)))
	}
}

func questionText(p problemgen.Problem, localized bool) string {
	if localized && p.QuestionLocalized != "" {
		return p.QuestionLocalized
	}
	return p.Question
}

func hintText(p problemgen.Problem, localized bool) string {
	if localized && p.HintLocalized != "" {
		return p.HintLocalized
	}
	return p.Hint
}

func printResult(res *dailyset.SubmitResult) {
	if res.AlreadyAnswered {
		lipgloss.Println(theme.Dim.Render("Already answered; nothing changed."))
	}

	a := res.Attempt
	switch {
	case a.Skipped:
		lipgloss.Println(theme.Dim.Render("Skipped."))
	case a.IsCorrect == nil:
		lipgloss.Println(theme.Hint.Render("Could not check this answer automatically."))
	case *a.IsCorrect:
		lipgloss.Println(theme.Correct.Render("Correct!") + "  " + theme.Reward.Render(fmt.Sprintf("+%d XP", res.XPAwarded)))
	default:
		lipgloss.Println(theme.Incorrect.Render("Not quite."))
	}
	if a.Feedback != "" {
		lipgloss.Println(theme.Body.Render(a.Feedback))
	}
	if a.IsCorrect == nil || !*a.IsCorrect {
		lipgloss.Println(theme.Dim.Render("Answer: ") + theme.Body.Render(res.CorrectAnswer))
	}
	for _, step := range res.Steps {
		lipgloss.Println(theme.Dim.Render("  • " + step))
	}

	if res.SetCompleted && res.Bonus != nil {
		b := res.Bonus
		parts := []string{fmt.Sprintf("completion +%d", b.Completion), fmt.Sprintf("streak +%d", b.Streak)}
		if b.Perfect > 0 {
			parts = append(parts, fmt.Sprintf("perfect day +%d", b.Perfect))
		}
		card := theme.Reward.Render("Set complete!") + "\n" +
			theme.Body.Render(strings.Join(parts, " · ")) + "\n" +
			theme.Dim.Render(fmt.Sprintf("Streak: %d days", res.Streak))
		lipgloss.Println(theme.Card.Render(card))
	}

	if res.Set != nil && !res.Set.IsCompleted() {
		lipgloss.Println(theme.Dim.Render(fmt.Sprintf("%d/%d answered", res.Set.CompletedCount, res.Set.Total())))
	}
}

func printHistory(sets []*dailyset.Set) {
	if len(sets) == 0 {
		fmt.Println("No sets yet.")
		return
	}
	rows := make([][]string, 0, len(sets))
	for _, s := range sets {
		status := fmt.Sprintf("%d/%d", s.CompletedCount, s.Total())
		if s.IsCompleted() {
			status = theme.Correct.Render("done")
		}
		rows = append(rows, []string{s.Date, string(s.Kind), s.FocusTopicName, status, strconv.Itoa(s.XPEarned), s.ID})
	}
	lipgloss.Println(components.Table([]string{"Date", "Kind", "Focus", "Progress", "XP", "ID"}, rows))
}

package rewards

import "github.com/abhisek/practix/internal/clock"

// StreakUpdate is the result of applying one practice day to a streak.
type StreakUpdate struct {
	Current  int
	Longest  int
	LastDate string

	// Changed is false when the user already practiced today.
	Changed bool
}

// NextStreak applies a practice on today (a local calendar date) to the
// stored streak state: same day leaves it unchanged, the day after the
// last practice increments it, anything else restarts it at 1.
func NextStreak(current, longest int, lastDate, today string) StreakUpdate {
	if clock.IsSameDay(lastDate, today) {
		return StreakUpdate{Current: current, Longest: max(longest, current), LastDate: lastDate}
	}

	next := 1
	if clock.IsConsecutiveDay(lastDate, today) {
		next = current + 1
	}
	return StreakUpdate{
		Current:  next,
		Longest:  max(longest, next),
		LastDate: today,
		Changed:  true,
	}
}

package rewards

import (
	"math"

	"github.com/abhisek/practix/internal/topicgraph"
)

// ProblemXP returns the base XP for a correct answer at difficulty d.
// Unknown difficulties earn the easy rate.
func (c Config) ProblemXP(d topicgraph.Difficulty) int {
	m, ok := c.Multipliers[d]
	if !ok {
		m = 1
	}
	return int(math.Round(float64(c.BaseXP) * m))
}

// CompletionXP returns the set completion bonus.
func (c Config) CompletionXP() int {
	return c.CompletionBonus
}

// StreakBonus returns min(streak * per-day rate, cap).
func (c Config) StreakBonus(streak int) int {
	if streak <= 0 {
		return 0
	}
	return min(streak*c.StreakPerDay, c.StreakCap)
}

// PerfectDayXP returns the perfect-day bonus when allCorrect, else 0.
func (c Config) PerfectDayXP(allCorrect bool) int {
	if !allCorrect {
		return 0
	}
	return c.PerfectDayBonus
}

// DayBonus is the breakdown of XP awarded when a daily set completes.
type DayBonus struct {
	Completion int `json:"completion"`
	Streak     int `json:"streak"`
	Perfect    int `json:"perfect"`
}

// Total returns the sum of all bonus parts.
func (b DayBonus) Total() int {
	return b.Completion + b.Streak + b.Perfect
}

// CompletionBonuses computes the bonus breakdown for a completed set. The
// streak bonus uses the streak after today's update.
func (c Config) CompletionBonuses(streakAfterUpdate int, allCorrect bool) DayBonus {
	return DayBonus{
		Completion: c.CompletionXP(),
		Streak:     c.StreakBonus(streakAfterUpdate),
		Perfect:    c.PerfectDayXP(allCorrect),
	}
}

// Package rewards computes XP, bonuses, streaks and levels, and applies
// them to user profiles.
package rewards

import (
	"fmt"

	"github.com/abhisek/practix/internal/topicgraph"
)

// Config is the reward table. It is immutable configuration injected into
// the ledger; nothing in this package mutates it.
type Config struct {
	// BaseXP is the XP for a correct easy answer.
	BaseXP int `mapstructure:"base_xp"`

	// Multipliers scale BaseXP per difficulty.
	Multipliers map[topicgraph.Difficulty]float64 `mapstructure:"multipliers"`

	// CompletionBonus is awarded once when a daily set is completed.
	CompletionBonus int `mapstructure:"completion_bonus"`

	// StreakPerDay and StreakCap define the streak bonus:
	// min(streak * StreakPerDay, StreakCap).
	StreakPerDay int `mapstructure:"streak_per_day"`
	StreakCap    int `mapstructure:"streak_cap"`

	// PerfectDayBonus is awarded when every problem in the set was correct.
	PerfectDayBonus int `mapstructure:"perfect_day_bonus"`

	// LevelThresholds[i] is the minimum cumulative XP for level i+1.
	// The first entry must be 0.
	LevelThresholds []int `mapstructure:"level_thresholds"`
}

// DefaultConfig returns the default reward table.
func DefaultConfig() Config {
	return Config{
		BaseXP: 10,
		Multipliers: map[topicgraph.Difficulty]float64{
			topicgraph.Easy:   1,
			topicgraph.Medium: 1.5,
			topicgraph.Hard:   2,
		},
		CompletionBonus: 50,
		StreakPerDay:    5,
		StreakCap:       50,
		PerfectDayBonus: 25,
		LevelThresholds: []int{0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 12000},
	}
}

// Validate checks the table for consistency.
func (c Config) Validate() error {
	if c.BaseXP <= 0 {
		return fmt.Errorf("rewards base_xp must be > 0, got %d", c.BaseXP)
	}
	for _, d := range topicgraph.AllDifficulties() {
		m, ok := c.Multipliers[d]
		if !ok {
			return fmt.Errorf("rewards: missing multiplier for %s", d)
		}
		if m <= 0 {
			return fmt.Errorf("rewards: multiplier for %s must be > 0, got %v", d, m)
		}
	}
	if c.CompletionBonus < 0 || c.StreakPerDay < 0 || c.StreakCap < 0 || c.PerfectDayBonus < 0 {
		return fmt.Errorf("rewards: bonuses must be non-negative")
	}
	if len(c.LevelThresholds) == 0 || c.LevelThresholds[0] != 0 {
		return fmt.Errorf("rewards: level thresholds must start at 0")
	}
	for i := 1; i < len(c.LevelThresholds); i++ {
		if c.LevelThresholds[i] <= c.LevelThresholds[i-1] {
			return fmt.Errorf("rewards: level thresholds must be strictly increasing (level %d)", i+1)
		}
	}
	return nil
}

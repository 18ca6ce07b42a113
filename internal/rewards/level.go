package rewards

// Level returns the highest level whose threshold is <= xp. Level(0) is 1.
func (c Config) Level(xp int) int {
	level := 1
	for i, threshold := range c.LevelThresholds {
		if xp >= threshold {
			level = i + 1
		}
	}
	return level
}

// LevelProgress describes progress within the current level.
type LevelProgress struct {
	Level int `json:"level"`

	// XPIntoLevel is XP earned since reaching the current level.
	XPIntoLevel int `json:"xpIntoLevel"`

	// XPForNext is the XP span of the current level, or 0 at max level.
	XPForNext int `json:"xpForNext"`

	MaxLevel bool `json:"maxLevel"`
}

// Percent returns progress to the next level in [0, 100].
func (p LevelProgress) Percent() int {
	if p.MaxLevel || p.XPForNext == 0 {
		return 100
	}
	return p.XPIntoLevel * 100 / p.XPForNext
}

// LevelProgress returns the level and progress toward the next one.
func (c Config) LevelProgress(xp int) LevelProgress {
	level := c.Level(xp)
	floor := 0
	if len(c.LevelThresholds) > 0 {
		floor = c.LevelThresholds[level-1]
	}
	lp := LevelProgress{Level: level, XPIntoLevel: xp - floor}
	if level >= len(c.LevelThresholds) {
		lp.MaxLevel = true
		return lp
	}
	lp.XPForNext = c.LevelThresholds[level] - floor
	return lp
}

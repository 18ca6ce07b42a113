package topicgraph

import "fmt"

// Difficulty is the difficulty tier of a problem.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// AllDifficulties returns all difficulty tiers in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// Rank returns the ordinal position of d (easy=0, medium=1, hard=2), or -1.
func (d Difficulty) Rank() int {
	switch d {
	case Easy:
		return 0
	case Medium:
		return 1
	case Hard:
		return 2
	default:
		return -1
	}
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	return d.Rank() >= 0
}

// ParseDifficulty converts a string to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// Branch is a named grouping of related topics.
type Branch struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	LocalizedName string `yaml:"localized_name"`
}

// Topic is a single curriculum node in the graph.
type Topic struct {
	ID            string       `yaml:"id"`
	Name          string       `yaml:"name"`
	LocalizedName string       `yaml:"localized_name"`
	Description   string       `yaml:"description"`
	Branch        string       `yaml:"branch"`
	Prerequisites []string     `yaml:"prerequisites"`
	Difficulties  []Difficulty `yaml:"difficulties"`
	Keywords      []string     `yaml:"keywords"`
	EstimatedMins int          `yaml:"estimated_mins"`
}

// Supports reports whether the topic offers problems at difficulty d.
// A topic that declares no difficulties supports all of them.
func (t Topic) Supports(d Difficulty) bool {
	if len(t.Difficulties) == 0 {
		return true
	}
	for _, td := range t.Difficulties {
		if td == d {
			return true
		}
	}
	return false
}

// ClosestDifficulty returns d when supported, otherwise the supported
// difficulty nearest to it (ties go to the easier tier).
func (t Topic) ClosestDifficulty(d Difficulty) Difficulty {
	if t.Supports(d) {
		return d
	}
	best := t.Difficulties[0]
	bestDist := abs(best.Rank() - d.Rank())
	for _, td := range t.Difficulties[1:] {
		dist := abs(td.Rank() - d.Rank())
		if dist < bestDist || (dist == bestDist && td.Rank() < best.Rank()) {
			best, bestDist = td, dist
		}
	}
	return best
}

// DisplayName returns the localized name when available and requested.
func (t Topic) DisplayName(localized bool) string {
	if localized && t.LocalizedName != "" {
		return t.LocalizedName
	}
	return t.Name
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

package composer

import "fmt"

// MaxProblems is the largest set a layout may describe.
const MaxProblems = 10

// Layout is the number of problems per slot kind in a set.
type Layout struct {
	Review     int `mapstructure:"review" json:"review"`
	Core       int `mapstructure:"core" json:"core"`
	Foundation int `mapstructure:"foundation" json:"foundation"`
	Challenge  int `mapstructure:"challenge" json:"challenge"`
}

// DefaultLayout is two review, two core and one challenge problem.
func DefaultLayout() Layout {
	return Layout{Review: 2, Core: 2, Foundation: 0, Challenge: 1}
}

// Total returns the number of problems in the layout.
func (l Layout) Total() int {
	return l.Review + l.Core + l.Foundation + l.Challenge
}

// Validate checks slot counts are non-negative and the total is 1..MaxProblems.
func (l Layout) Validate() error {
	if l.Review < 0 || l.Core < 0 || l.Foundation < 0 || l.Challenge < 0 {
		return fmt.Errorf("layout slot counts must not be negative: %+v", l)
	}
	if t := l.Total(); t < 1 || t > MaxProblems {
		return fmt.Errorf("layout total must be between 1 and %d, got %d", MaxProblems, t)
	}
	return nil
}

func (l Layout) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", l.Review, l.Core, l.Foundation, l.Challenge)
}

// fillOrder is the slot that the n-th problem of a sized layout goes to.
// The first five reproduce DefaultLayout.
var fillOrder = [MaxProblems]string{
	"core", "review", "core", "review", "challenge",
	"foundation", "core", "review", "foundation", "challenge",
}

// LayoutForTotal maps a learner's daily goal to a layout. n is clamped to
// 1..MaxProblems.
func LayoutForTotal(n int) Layout {
	n = min(max(n, 1), MaxProblems)
	var l Layout
	for _, slot := range fillOrder[:n] {
		switch slot {
		case "review":
			l.Review++
		case "core":
			l.Core++
		case "foundation":
			l.Foundation++
		case "challenge":
			l.Challenge++
		}
	}
	return l
}

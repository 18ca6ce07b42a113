package progress

import (
	"fmt"
	"math"
)

// Policy holds the mastery thresholds and score weights.
type Policy struct {
	// MinCorrect is the minimum number of correct answers for mastery.
	MinCorrect int `mapstructure:"min_correct"`

	// MinAccuracy is the minimum correct/total ratio for mastery.
	MinAccuracy float64 `mapstructure:"min_accuracy"`

	// MinDays is the minimum number of distinct practice days for mastery.
	MinDays int `mapstructure:"min_days"`

	// AccuracyWeight and VolumeWeight scale the mastery score. They should
	// sum to 100.
	AccuracyWeight float64 `mapstructure:"accuracy_weight"`
	VolumeWeight   float64 `mapstructure:"volume_weight"`
}

// DefaultPolicy returns the default mastery policy.
func DefaultPolicy() Policy {
	return Policy{
		MinCorrect:     10,
		MinAccuracy:    0.8,
		MinDays:        3,
		AccuracyWeight: 70,
		VolumeWeight:   30,
	}
}

// Validate checks that thresholds and weights are usable.
func (p Policy) Validate() error {
	if p.MinCorrect <= 0 {
		return fmt.Errorf("mastery min_correct must be > 0, got %d", p.MinCorrect)
	}
	if p.MinAccuracy <= 0 || p.MinAccuracy > 1 {
		return fmt.Errorf("mastery min_accuracy must be in (0, 1], got %v", p.MinAccuracy)
	}
	if p.MinDays <= 0 {
		return fmt.Errorf("mastery min_days must be > 0, got %d", p.MinDays)
	}
	if p.AccuracyWeight < 0 || p.VolumeWeight < 0 {
		return fmt.Errorf("mastery weights must be non-negative")
	}
	if w := p.AccuracyWeight + p.VolumeWeight; math.Abs(w-100) > 1e-9 {
		return fmt.Errorf("mastery weights must sum to 100, got %v", w)
	}
	return nil
}

// Status derives the topic status from the stored counters. It is a pure
// function: the same inputs always yield the same status, so a mastered
// topic whose accuracy later drops returns to in_progress.
func (p Policy) Status(correct, total, days int) Status {
	if total == 0 {
		return StatusNotStarted
	}
	accuracy := float64(correct) / float64(total)
	if correct >= p.MinCorrect && accuracy >= p.MinAccuracy && days >= p.MinDays {
		return StatusMastered
	}
	return StatusInProgress
}

// Score computes the 0-100 mastery score from accuracy and volume.
func (p Policy) Score(correct, total int) int {
	if total == 0 {
		return 0
	}
	accuracy := float64(correct) / float64(total)
	volume := 1.0
	if p.MinCorrect > 0 {
		volume = math.Min(float64(correct)/float64(p.MinCorrect), 1)
	}
	score := int(math.Round(p.AccuracyWeight*accuracy + p.VolumeWeight*volume))
	return max(0, min(100, score))
}

// Apply recomputes the status and mastery score of tp from scratch.
func (p Policy) Apply(tp *TopicProgress) {
	tp.Status = p.Status(tp.CorrectAttempts, tp.TotalAttempts, tp.DaysPracticed.Len())
	tp.Mastery = p.Score(tp.CorrectAttempts, tp.TotalAttempts)
}

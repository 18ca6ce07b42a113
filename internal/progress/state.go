package progress

import (
	"slices"
	"time"

	"github.com/abhisek/practix/internal/store"
)

// Status is a topic's position in the mastery lifecycle.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusMastered   Status = "mastered"
)

// DaySet is a set of calendar dates ("YYYY-MM-DD").
type DaySet map[string]struct{}

// NewDaySet builds a set from a list of dates, ignoring empties and duplicates.
func NewDaySet(days ...string) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s.Add(d)
	}
	return s
}

// Add inserts a date and reports whether it was new.
func (s DaySet) Add(day string) bool {
	if day == "" {
		return false
	}
	if _, ok := s[day]; ok {
		return false
	}
	s[day] = struct{}{}
	return true
}

// Has reports whether the set contains day.
func (s DaySet) Has(day string) bool {
	_, ok := s[day]
	return ok
}

// Len returns the number of distinct days.
func (s DaySet) Len() int { return len(s) }

// Sorted returns the dates in ascending order.
func (s DaySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// TopicProgress is a learner's progress on one topic.
type TopicProgress struct {
	UserID          string
	TopicID         string
	Status          Status
	CorrectAttempts int
	TotalAttempts   int
	LastPracticedAt *time.Time
	DaysPracticed   DaySet
	Mastery         int
}

// Accuracy returns correct/total, or 0 when there are no attempts.
func (p TopicProgress) Accuracy() float64 {
	if p.TotalAttempts == 0 {
		return 0
	}
	return float64(p.CorrectAttempts) / float64(p.TotalAttempts)
}

// Touched reports whether the learner has attempted the topic.
func (p TopicProgress) Touched() bool {
	return p.TotalAttempts > 0
}

// notStarted returns the zero-valued progress for a topic.
func notStarted(userID, topicID string) TopicProgress {
	return TopicProgress{
		UserID:        userID,
		TopicID:       topicID,
		Status:        StatusNotStarted,
		DaysPracticed: NewDaySet(),
	}
}

func fromRecord(rec store.ProgressRecord) TopicProgress {
	return TopicProgress{
		UserID:          rec.UserID,
		TopicID:         rec.TopicID,
		Status:          Status(rec.Status),
		CorrectAttempts: rec.CorrectAttempts,
		TotalAttempts:   rec.TotalAttempts,
		LastPracticedAt: rec.LastPracticedAt,
		DaysPracticed:   NewDaySet(rec.DaysPracticed...),
		Mastery:         rec.Mastery,
	}
}

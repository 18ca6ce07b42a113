package dailyset

import (
	"errors"
	"time"

	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/rewards"
	"github.com/abhisek/practix/internal/store"
)

var (
	// ErrSetNotFound is returned when a set does not exist.
	ErrSetNotFound = errors.New("set not found")

	// ErrProblemNotFound is returned when a set has no problem with the ID.
	ErrProblemNotFound = errors.New("problem not found")

	// ErrForbidden is returned when a set belongs to another user.
	ErrForbidden = errors.New("set belongs to another user")

	// ErrInvalidSubmission is returned for submissions without an answer.
	ErrInvalidSubmission = errors.New("invalid submission")
)

// Kind distinguishes the once-per-day set from on-demand practice.
type Kind string

const (
	KindDaily    Kind = store.KindDaily
	KindPractice Kind = store.KindPractice
)

// Set is a daily set or a practice session.
type Set struct {
	ID             string               `json:"id"`
	UserID         string               `json:"userId"`
	Kind           Kind                 `json:"kind"`
	Date           string               `json:"date"`
	Problems       []problemgen.Problem `json:"problems"`
	CurrentIndex   int                  `json:"currentIndex"`
	CompletedCount int                  `json:"completedCount"`
	CompletedAt    *time.Time           `json:"completedAt,omitempty"`
	XPEarned       int                  `json:"xpEarned"`
	FocusTopicID   string               `json:"focusTopicId"`
	FocusTopicName string               `json:"focusTopicName"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// Total is the number of problems in the set.
func (s *Set) Total() int { return len(s.Problems) }

// IsCompleted reports whether every problem has an attempt.
func (s *Set) IsCompleted() bool {
	return len(s.Problems) > 0 && s.CompletedCount >= len(s.Problems)
}

// Problem returns the problem with the given ID and its position.
func (s *Set) Problem(id string) (problemgen.Problem, int, bool) {
	for i, p := range s.Problems {
		if p.ID == id {
			return p, i, true
		}
	}
	return problemgen.Problem{}, -1, false
}

// Attempt is one answer to one problem.
type Attempt struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	SetID     string `json:"setId"`
	ProblemID string `json:"problemId"`
	TopicID   string `json:"topicId"`

	// IsCorrect is nil for skipped or undeterminable answers.
	IsCorrect       *bool     `json:"isCorrect"`
	Skipped         bool      `json:"skipped"`
	Answer          string    `json:"answer,omitempty"`
	ImageRef        string    `json:"imageRef,omitempty"`
	Feedback        string    `json:"feedback,omitempty"`
	ExtractedAnswer string    `json:"extractedAnswer,omitempty"`
	XPAwarded       int       `json:"xpAwarded"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Submission is an answer to a problem of a set.
type Submission struct {
	UserID    string
	SetID     string
	ProblemID string
	Answer    string
	ImageRef  string
	Skipped   bool
}

// SubmitResult describes what a submission changed.
type SubmitResult struct {
	Attempt Attempt `json:"attempt"`

	// AlreadyAnswered is true when the problem had an attempt before this
	// call. Nothing was changed.
	AlreadyAnswered bool `json:"alreadyAnswered"`

	// XPAwarded is the base XP for this answer.
	XPAwarded int `json:"xpAwarded"`

	CorrectAnswer string   `json:"correctAnswer"`
	Steps         []string `json:"steps,omitempty"`

	// SetCompleted is true only for the submission that completed the set.
	SetCompleted bool              `json:"setCompleted"`
	Bonus        *rewards.DayBonus `json:"bonus,omitempty"`
	Streak       int               `json:"streak,omitempty"`

	Set *Set `json:"set"`
}

func setFromRecord(rec *store.SetRecord) *Set {
	s := &Set{
		ID:             rec.ID,
		UserID:         rec.UserID,
		Kind:           Kind(rec.Kind),
		Date:           rec.LocalDate,
		Problems:       make([]problemgen.Problem, len(rec.Problems)),
		CurrentIndex:   rec.CurrentIndex,
		CompletedCount: rec.CompletedCount,
		CompletedAt:    rec.CompletedAt,
		XPEarned:       rec.XPEarned,
		FocusTopicID:   rec.FocusTopicID,
		FocusTopicName: rec.FocusTopicName,
		CreatedAt:      rec.CreatedAt,
	}
	for i, p := range rec.Problems {
		s.Problems[i] = problemgen.FromRecord(p)
	}
	return s
}

func setToRecord(s *Set) *store.SetRecord {
	rec := &store.SetRecord{
		ID:             s.ID,
		UserID:         s.UserID,
		Kind:           string(s.Kind),
		LocalDate:      s.Date,
		Problems:       make([]store.ProblemRecord, len(s.Problems)),
		CurrentIndex:   s.CurrentIndex,
		CompletedCount: s.CompletedCount,
		CompletedAt:    s.CompletedAt,
		XPEarned:       s.XPEarned,
		FocusTopicID:   s.FocusTopicID,
		FocusTopicName: s.FocusTopicName,
		CreatedAt:      s.CreatedAt,
	}
	for i, p := range s.Problems {
		rec.Problems[i] = p.ToRecord()
	}
	return rec
}

func attemptFromRecord(rec *store.AttemptRecord) Attempt {
	return Attempt{
		ID:              rec.ID,
		UserID:          rec.UserID,
		SetID:           rec.SetID,
		ProblemID:       rec.ProblemID,
		TopicID:         rec.TopicID,
		IsCorrect:       rec.IsCorrect,
		Skipped:         rec.Skipped,
		Answer:          rec.Answer,
		ImageRef:        rec.ImageRef,
		Feedback:        rec.Feedback,
		ExtractedAnswer: rec.ExtractedAnswer,
		XPAwarded:       rec.XPAwarded,
		CreatedAt:       rec.CreatedAt,
	}
}

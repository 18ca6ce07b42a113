package problemgen

import (
	"github.com/abhisek/practix/internal/store"
	"github.com/abhisek/practix/internal/topicgraph"
)

// SlotKind labels the purpose of a problem within a set.
type SlotKind string

const (
	SlotReview     SlotKind = "review"
	SlotCore       SlotKind = "core"
	SlotFoundation SlotKind = "foundation"
	SlotChallenge  SlotKind = "challenge"

	// SlotPractice is used for every problem of an on-demand practice session.
	SlotPractice SlotKind = "practice"
)

// Source records where a problem's content came from.
type Source string

const (
	SourceGenerated   Source = "generated"
	SourceBank        Source = "bank"
	SourcePlaceholder Source = "placeholder"
)

// AnswerType describes the representation of the correct answer.
type AnswerType string

const (
	AnswerTypeInteger  AnswerType = "integer"  // e.g. "623", "-15"
	AnswerTypeDecimal  AnswerType = "decimal"  // e.g. "3.75", "0.5"
	AnswerTypeFraction AnswerType = "fraction" // e.g. "3/4", "7/2"
	AnswerTypeText     AnswerType = "text"     // e.g. "acute", "x = 4"
)

// Valid reports whether t is a known answer type.
func (t AnswerType) Valid() bool {
	switch t {
	case AnswerTypeInteger, AnswerTypeDecimal, AnswerTypeFraction, AnswerTypeText:
		return true
	}
	return false
}

// Problem is a problem snapshot as embedded in a set. Content is copied in
// at creation so later bank edits never change a stored set.
type Problem struct {
	ID         string                `json:"id"`
	TopicID    string                `json:"topicId"`
	TopicName  string                `json:"topicName"`
	Slot       SlotKind              `json:"slot"`
	Difficulty topicgraph.Difficulty `json:"difficulty"`

	Question          string     `json:"question"`
	QuestionLocalized string     `json:"questionLocalized,omitempty"`
	Answer            string     `json:"answer"`
	AnswerType        AnswerType `json:"answerType"`
	Steps             []string   `json:"steps,omitempty"`
	StepsLocalized    []string   `json:"stepsLocalized,omitempty"`
	Hint              string     `json:"hint,omitempty"`
	HintLocalized     string     `json:"hintLocalized,omitempty"`
	EstimatedMinutes  int        `json:"estimatedMinutes"`

	// XPReward is the base XP for a correct answer.
	XPReward int `json:"xpReward"`

	Source Source `json:"source"`

	// SourceRef is the bank exercise ID for bank problems.
	SourceRef string `json:"sourceRef,omitempty"`
}

// GenerateInput holds all context needed to generate a problem.
type GenerateInput struct {
	Topic      topicgraph.Topic
	Difficulty topicgraph.Difficulty

	// Locale selects the language of the localized fields, e.g. "he".
	// Empty means no localized variant is requested.
	Locale string

	// PriorQuestions contains questions the learner saw recently on the
	// same topic, oldest first. Used for deduplication in the prompt.
	PriorQuestions []string
}

// Generated is the content produced by a Generator.
type Generated struct {
	Question          string
	QuestionLocalized string
	Answer            string
	AnswerType        AnswerType
	Steps             []string
	StepsLocalized    []string
	Hint              string
	HintLocalized     string
	EstimatedMinutes  int
}

// ToRecord converts p to its stored form.
func (p Problem) ToRecord() store.ProblemRecord {
	return store.ProblemRecord{
		ID:                p.ID,
		TopicID:           p.TopicID,
		TopicName:         p.TopicName,
		Slot:              string(p.Slot),
		Difficulty:        string(p.Difficulty),
		Question:          p.Question,
		QuestionLocalized: p.QuestionLocalized,
		Answer:            p.Answer,
		AnswerType:        string(p.AnswerType),
		Steps:             p.Steps,
		StepsLocalized:    p.StepsLocalized,
		Hint:              p.Hint,
		HintLocalized:     p.HintLocalized,
		EstimatedMinutes:  p.EstimatedMinutes,
		XPReward:          p.XPReward,
		Source:            string(p.Source),
		SourceRef:         p.SourceRef,
	}
}

// FromRecord converts a stored problem snapshot.
func FromRecord(r store.ProblemRecord) Problem {
	return Problem{
		ID:                r.ID,
		TopicID:           r.TopicID,
		TopicName:         r.TopicName,
		Slot:              SlotKind(r.Slot),
		Difficulty:        topicgraph.Difficulty(r.Difficulty),
		Question:          r.Question,
		QuestionLocalized: r.QuestionLocalized,
		Answer:            r.Answer,
		AnswerType:        AnswerType(r.AnswerType),
		Steps:             r.Steps,
		StepsLocalized:    r.StepsLocalized,
		Hint:              r.Hint,
		HintLocalized:     r.HintLocalized,
		EstimatedMinutes:  r.EstimatedMinutes,
		XPReward:          r.XPReward,
		Source:            Source(r.Source),
		SourceRef:         r.SourceRef,
	}
}

package httpapi

import (
	"time"

	"github.com/abhisek/practix/internal/dailyset"
	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/progress"
	"github.com/abhisek/practix/internal/rewards"
	"github.com/abhisek/practix/internal/topicgraph"
)

type topicView struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	LocalizedName string                  `json:"localizedName,omitempty"`
	Description   string                  `json:"description,omitempty"`
	Branch        string                  `json:"branch"`
	Prerequisites []string                `json:"prerequisites"`
	Difficulties  []topicgraph.Difficulty `json:"difficulties"`
	EstimatedMins int                     `json:"estimatedMins,omitempty"`
	Dependents    []string                `json:"dependents,omitempty"`
}

func newTopicView(t topicgraph.Topic) topicView {
	return topicView{
		ID:            t.ID,
		Name:          t.Name,
		LocalizedName: t.LocalizedName,
		Description:   t.Description,
		Branch:        t.Branch,
		Prerequisites: nonNil(t.Prerequisites),
		Difficulties:  nonNil(t.Difficulties),
		EstimatedMins: t.EstimatedMins,
	}
}

// problemView hides the answer and worked steps until the problem has an
// attempt.
type problemView struct {
	ID                string                `json:"id"`
	TopicID           string                `json:"topicId"`
	TopicName         string                `json:"topicName"`
	Slot              problemgen.SlotKind   `json:"slot"`
	Difficulty        topicgraph.Difficulty `json:"difficulty"`
	Question          string                `json:"question"`
	QuestionLocalized string                `json:"questionLocalized,omitempty"`
	AnswerType        problemgen.AnswerType `json:"answerType"`
	Hint              string                `json:"hint,omitempty"`
	HintLocalized     string                `json:"hintLocalized,omitempty"`
	EstimatedMinutes  int                   `json:"estimatedMinutes"`
	XPReward          int                   `json:"xpReward"`
	Source            problemgen.Source     `json:"source"`

	Answered bool              `json:"answered"`
	Attempt  *dailyset.Attempt `json:"attempt,omitempty"`
	Answer   string            `json:"answer,omitempty"`
	Steps    []string          `json:"steps,omitempty"`
}

type setView struct {
	ID             string        `json:"id"`
	Kind           dailyset.Kind `json:"kind"`
	Date           string        `json:"date"`
	Problems       []problemView `json:"problems"`
	CurrentIndex   int           `json:"currentIndex"`
	CompletedCount int           `json:"completedCount"`
	Total          int           `json:"total"`
	Completed      bool          `json:"completed"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty"`
	XPEarned       int           `json:"xpEarned"`
	FocusTopicID   string        `json:"focusTopicId"`
	FocusTopicName string        `json:"focusTopicName"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func newSetView(set *dailyset.Set, attempts []dailyset.Attempt) setView {
	byProblem := make(map[string]dailyset.Attempt, len(attempts))
	for _, a := range attempts {
		byProblem[a.ProblemID] = a
	}
	v := setView{
		ID:             set.ID,
		Kind:           set.Kind,
		Date:           set.Date,
		Problems:       make([]problemView, len(set.Problems)),
		CurrentIndex:   set.CurrentIndex,
		CompletedCount: set.CompletedCount,
		Total:          set.Total(),
		Completed:      set.IsCompleted(),
		CompletedAt:    set.CompletedAt,
		XPEarned:       set.XPEarned,
		FocusTopicID:   set.FocusTopicID,
		FocusTopicName: set.FocusTopicName,
		CreatedAt:      set.CreatedAt,
	}
	for i, p := range set.Problems {
		pv := problemView{
			ID:                p.ID,
			TopicID:           p.TopicID,
			TopicName:         p.TopicName,
			Slot:              p.Slot,
			Difficulty:        p.Difficulty,
			Question:          p.Question,
			QuestionLocalized: p.QuestionLocalized,
			AnswerType:        p.AnswerType,
			Hint:              p.Hint,
			HintLocalized:     p.HintLocalized,
			EstimatedMinutes:  p.EstimatedMinutes,
			XPReward:          p.XPReward,
			Source:            p.Source,
		}
		if a, ok := byProblem[p.ID]; ok {
			pv.Answered = true
			pv.Attempt = &a
			pv.Answer = p.Answer
			pv.Steps = p.Steps
		}
		v.Problems[i] = pv
	}
	return v
}

type setSummary struct {
	ID             string        `json:"id"`
	Kind           dailyset.Kind `json:"kind"`
	Date           string        `json:"date"`
	Total          int           `json:"total"`
	CompletedCount int           `json:"completedCount"`
	Completed      bool          `json:"completed"`
	XPEarned       int           `json:"xpEarned"`
	FocusTopicID   string        `json:"focusTopicId"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func newSetSummary(s *dailyset.Set) setSummary {
	return setSummary{
		ID:             s.ID,
		Kind:           s.Kind,
		Date:           s.Date,
		Total:          s.Total(),
		CompletedCount: s.CompletedCount,
		Completed:      s.IsCompleted(),
		XPEarned:       s.XPEarned,
		FocusTopicID:   s.FocusTopicID,
		CreatedAt:      s.CreatedAt,
	}
}

type topicProgressView struct {
	TopicID         string                `json:"topicId"`
	Name            string                `json:"name"`
	State           progress.DisplayState `json:"state"`
	Status          progress.Status       `json:"status"`
	CorrectAttempts int                   `json:"correctAttempts"`
	TotalAttempts   int                   `json:"totalAttempts"`
	Accuracy        float64               `json:"accuracy"`
	Mastery         int                   `json:"mastery"`
	DaysPracticed   int                   `json:"daysPracticed"`
	LastPracticedAt *time.Time            `json:"lastPracticedAt,omitempty"`
	Recommended     bool                  `json:"recommended"`
}

type branchProgressView struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Topics []topicProgressView `json:"topics"`
}

type progressView struct {
	Branches        []branchProgressView `json:"branches"`
	Recommendations []topicView          `json:"recommendations"`
}

func newProgressView(branches []progress.BranchView) progressView {
	v := progressView{Branches: make([]branchProgressView, 0, len(branches)), Recommendations: []topicView{}}
	for _, b := range branches {
		bv := branchProgressView{ID: b.Branch.ID, Name: b.Branch.Name, Topics: make([]topicProgressView, 0, len(b.Topics))}
		for _, t := range b.Topics {
			bv.Topics = append(bv.Topics, topicProgressView{
				TopicID:         t.Topic.ID,
				Name:            t.Topic.Name,
				State:           t.State,
				Status:          t.Progress.Status,
				CorrectAttempts: t.Progress.CorrectAttempts,
				TotalAttempts:   t.Progress.TotalAttempts,
				Accuracy:        t.Progress.Accuracy(),
				Mastery:         t.Progress.Mastery,
				DaysPracticed:   t.Progress.DaysPracticed.Len(),
				LastPracticedAt: t.Progress.LastPracticedAt,
				Recommended:     t.Recommended,
			})
		}
		v.Branches = append(v.Branches, bv)
	}
	return v
}

type levelView struct {
	rewards.LevelProgress
	Percent int `json:"percent"`
}

type profileView struct {
	rewards.Profile
	LevelProgress levelView `json:"levelProgress"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

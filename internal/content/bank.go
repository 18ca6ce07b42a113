package content

import (
	"context"

	"github.com/abhisek/practix/internal/problemgen"
	"github.com/abhisek/practix/internal/store"
	"github.com/abhisek/practix/internal/topicgraph"
)

// Bank is the stored exercise bank.
type Bank interface {
	// Query returns exercises for (topicID, difficulty) not in excludeIDs,
	// least used first.
	Query(ctx context.Context, topicID string, difficulty topicgraph.Difficulty, excludeIDs []string, limit int) ([]store.ExerciseRecord, error)

	// IncrementUsage bumps the usage counter of an exercise.
	IncrementUsage(ctx context.Context, id string) error
}

// StoreBank serves the bank from an exercise repository.
type StoreBank struct {
	repo store.ExerciseRepo
}

// NewStoreBank creates a Bank backed by repo.
func NewStoreBank(repo store.ExerciseRepo) *StoreBank {
	return &StoreBank{repo: repo}
}

func (b *StoreBank) Query(ctx context.Context, topicID string, difficulty topicgraph.Difficulty, excludeIDs []string, limit int) ([]store.ExerciseRecord, error) {
	return b.repo.QueryExercises(ctx, topicID, string(difficulty), excludeIDs, limit)
}

func (b *StoreBank) IncrementUsage(ctx context.Context, id string) error {
	return b.repo.IncrementExerciseUsage(ctx, id)
}

// fromExercise copies a bank exercise into a problem snapshot.
func fromExercise(rec store.ExerciseRecord) problemgen.Problem {
	return problemgen.Problem{
		Question:          rec.Question,
		QuestionLocalized: rec.QuestionLocalized,
		Answer:            rec.Answer,
		AnswerType:        problemgen.AnswerType(rec.AnswerType),
		Steps:             rec.Steps,
		StepsLocalized:    rec.StepsLocalized,
		Hint:              rec.Hint,
		HintLocalized:     rec.HintLocalized,
		EstimatedMinutes:  rec.EstimatedMinutes,
		Source:            problemgen.SourceBank,
		SourceRef:         rec.ID,
	}
}

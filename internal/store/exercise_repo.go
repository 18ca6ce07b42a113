package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const exerciseTable = "exercises"

var exerciseColumns = []string{
	"id", "topic_id", "difficulty", "question", "question_localized", "answer",
	"answer_type", "steps", "steps_localized", "hint", "hint_localized",
	"estimated_minutes", "usage_count", "created_at",
}

// exerciseRepo implements ExerciseRepo.
type exerciseRepo struct {
	db      *sql.DB
	dialect string
}

func (r *exerciseRepo) QueryExercises(ctx context.Context, topicID, difficulty string, excludeIDs []string, limit int) ([]ExerciseRecord, error) {
	preds := []*entsql.Predicate{
		entsql.EQ("topic_id", topicID),
		entsql.EQ("difficulty", difficulty),
	}
	if len(excludeIDs) > 0 {
		preds = append(preds, entsql.NotIn("id", toAnys(excludeIDs)...))
	}

	q := builder(r.dialect).Select(exerciseColumns...).
		From(builder(r.dialect).Table(exerciseTable)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Asc("usage_count"), entsql.Asc("id"))
	if limit > 0 {
		q.Limit(limit)
	}

	rows, err := queryRows(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	var out []ExerciseRecord
	for rows.Next() {
		var (
			rec                   ExerciseRecord
			steps, stepsLocalized string
			createdAt             int64
		)
		if err := rows.Scan(
			&rec.ID, &rec.TopicID, &rec.Difficulty, &rec.Question, &rec.QuestionLocalized, &rec.Answer,
			&rec.AnswerType, &steps, &stepsLocalized, &rec.Hint, &rec.HintLocalized,
			&rec.EstimatedMinutes, &rec.UsageCount, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		rec.CreatedAt = fromMillis(createdAt)
		if rec.Steps, err = decodeJSON[string](steps, "steps"); err != nil {
			return nil, err
		}
		if rec.StepsLocalized, err = decodeJSON[string](stepsLocalized, "steps_localized"); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *exerciseRepo) IncrementExerciseUsage(ctx context.Context, id string) error {
	q := builder(r.dialect).Update(exerciseTable).
		Add("usage_count", 1).
		Where(entsql.EQ("id", id))
	if _, err := execQuery(ctx, r.db, q); err != nil {
		return fmt.Errorf("increment exercise usage: %w", err)
	}
	return nil
}

func (r *exerciseRepo) UpsertExercise(ctx context.Context, rec *ExerciseRecord) error {
	steps, err := encodeJSON(rec.Steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}
	stepsLocalized, err := encodeJSON(rec.StepsLocalized)
	if err != nil {
		return fmt.Errorf("encode localized steps: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	// usage_count is preserved on update so reseeding keeps load spreading intact.
	q := builder(r.dialect).Insert(exerciseTable).
		Columns(exerciseColumns...).
		Values(
			rec.ID, rec.TopicID, rec.Difficulty, rec.Question, rec.QuestionLocalized, rec.Answer,
			rec.AnswerType, steps, stepsLocalized, rec.Hint, rec.HintLocalized,
			rec.EstimatedMinutes, rec.UsageCount, toMillis(rec.CreatedAt),
		).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range exerciseColumns {
					if c == "id" || c == "usage_count" || c == "created_at" {
						continue
					}
					u.SetExcluded(c)
				}
			}),
		)
	if _, err := execQuery(ctx, r.db, q); err != nil {
		return fmt.Errorf("upsert exercise: %w", err)
	}
	return nil
}

func (r *exerciseRepo) CountExercises(ctx context.Context, topicID string) (int, error) {
	q := builder(r.dialect).Select(entsql.Count("*")).
		From(builder(r.dialect).Table(exerciseTable))
	if topicID != "" {
		q.Where(entsql.EQ("topic_id", topicID))
	}
	var n int
	if err := queryRow(ctx, r.db, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count exercises: %w", err)
	}
	return n, nil
}

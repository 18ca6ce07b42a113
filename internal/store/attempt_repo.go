package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const attemptTable = "problem_attempts"

var attemptColumns = []string{
	"id", "user_id", "set_id", "problem_id", "topic_id", "is_correct", "skipped",
	"answer", "image_ref", "feedback", "extracted_answer", "xp_awarded", "created_at",
}

// attemptRepo implements AttemptRepo.
type attemptRepo struct {
	db      *sql.DB
	dialect string
}

func (r *attemptRepo) FindAttempt(ctx context.Context, userID, setID, problemID string) (*AttemptRecord, error) {
	q := builder(r.dialect).Select(attemptColumns...).
		From(builder(r.dialect).Table(attemptTable)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("set_id", setID),
			entsql.EQ("problem_id", problemID),
		))

	rec, err := scanAttempt(queryRow(ctx, r.db, q))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attempt: %w", err)
	}
	return rec, nil
}

func (r *attemptRepo) CreateAttempt(ctx context.Context, rec *AttemptRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	q := builder(r.dialect).Insert(attemptTable).
		Columns(attemptColumns...).
		Values(
			rec.ID, rec.UserID, rec.SetID, rec.ProblemID, rec.TopicID, nullBool(rec.IsCorrect),
			rec.Skipped, rec.Answer, rec.ImageRef, rec.Feedback, rec.ExtractedAnswer,
			rec.XPAwarded, toMillis(rec.CreatedAt),
		)
	if _, err := execQuery(ctx, r.db, q); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) ListAttempts(ctx context.Context, userID, setID string) ([]AttemptRecord, error) {
	q := builder(r.dialect).Select(attemptColumns...).
		From(builder(r.dialect).Table(attemptTable)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("set_id", setID))).
		OrderBy(entsql.Asc("created_at"), entsql.Asc("id"))

	rows, err := queryRows(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		rec, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *attemptRepo) CountAttempts(ctx context.Context, userID, setID string) (int, error) {
	q := builder(r.dialect).Select(entsql.Count("*")).
		From(builder(r.dialect).Table(attemptTable)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("set_id", setID)))

	var n int
	if err := queryRow(ctx, r.db, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

func (r *attemptRepo) SetAttemptXP(ctx context.Context, id string, xp int) error {
	q := builder(r.dialect).Update(attemptTable).
		Set("xp_awarded", xp).
		Where(entsql.EQ("id", id))
	if _, err := execQuery(ctx, r.db, q); err != nil {
		return fmt.Errorf("set attempt xp: %w", err)
	}
	return nil
}

func scanAttempt(s scanner) (*AttemptRecord, error) {
	var (
		rec       AttemptRecord
		isCorrect sql.NullBool
		createdAt int64
	)
	err := s.Scan(
		&rec.ID, &rec.UserID, &rec.SetID, &rec.ProblemID, &rec.TopicID, &isCorrect, &rec.Skipped,
		&rec.Answer, &rec.ImageRef, &rec.Feedback, &rec.ExtractedAnswer, &rec.XPAwarded, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	rec.IsCorrect = fromNullBool(isCorrect)
	rec.CreatedAt = fromMillis(createdAt)
	return &rec, nil
}

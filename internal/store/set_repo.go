package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const setTable = "problem_sets"

var setColumns = []string{
	"id", "user_id", "kind", "local_date", "problems", "current_index",
	"completed_count", "completed_at", "xp_earned", "focus_topic_id",
	"focus_topic_name", "created_at",
}

// setRepo implements SetRepo.
type setRepo struct {
	db      *sql.DB
	dialect string
}

func (r *setRepo) CreateSet(ctx context.Context, rec *SetRecord) error {
	problems, err := json.Marshal(rec.Problems)
	if err != nil {
		return fmt.Errorf("encode problems: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	q := builder(r.dialect).Insert(setTable).
		Columns(setColumns...).
		Values(
			rec.ID, rec.UserID, rec.Kind, rec.LocalDate, string(problems), rec.CurrentIndex,
			rec.CompletedCount, nullMillis(rec.CompletedAt), rec.XPEarned, rec.FocusTopicID,
			rec.FocusTopicName, toMillis(rec.CreatedAt),
		)

	if _, err := execQuery(ctx, r.db, q); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create set: %w", err)
	}
	return nil
}

func (r *setRepo) GetSet(ctx context.Context, id string) (*SetRecord, error) {
	q := r.selectSets().Where(entsql.EQ("id", id))
	return r.one(ctx, q)
}

func (r *setRepo) FindDailySet(ctx context.Context, userID, localDate string) (*SetRecord, error) {
	q := r.selectSets().Where(entsql.And(
		entsql.EQ("user_id", userID),
		entsql.EQ("local_date", localDate),
		entsql.EQ("kind", KindDaily),
	))
	return r.one(ctx, q)
}

func (r *setRepo) ListSets(ctx context.Context, userID string, limit int) ([]SetRecord, error) {
	q := r.selectSets().
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		q.Limit(limit)
	}

	rows, err := queryRows(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	var out []SetRecord
	for rows.Next() {
		rec, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *setRepo) UpdateSetProgress(ctx context.Context, id string, completedCount, currentIndex int) error {
	q := builder(r.dialect).Update(setTable).
		Set("completed_count", completedCount).
		Set("current_index", currentIndex).
		Where(entsql.And(entsql.EQ("id", id), entsql.LTE("completed_count", completedCount)))
	if _, err := execQuery(ctx, r.db, q); err != nil {
		return fmt.Errorf("update set progress: %w", err)
	}
	return nil
}

func (r *setRepo) AddSetXP(ctx context.Context, id string, xp int) error {
	q := builder(r.dialect).Update(setTable).
		Add("xp_earned", xp).
		Where(entsql.EQ("id", id))
	if _, err := execQuery(ctx, r.db, q); err != nil {
		return fmt.Errorf("add set xp: %w", err)
	}
	return nil
}

func (r *setRepo) MarkSetCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	q := builder(r.dialect).Update(setTable).
		Set("completed_at", toMillis(at)).
		Where(entsql.And(entsql.EQ("id", id), entsql.IsNull("completed_at")))
	res, err := execQuery(ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("mark set completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark set completed: %w", err)
	}
	return n == 1, nil
}

func (r *setRepo) selectSets() *entsql.Selector {
	return builder(r.dialect).Select(setColumns...).From(builder(r.dialect).Table(setTable))
}

func (r *setRepo) one(ctx context.Context, q *entsql.Selector) (*SetRecord, error) {
	rec, err := scanSet(queryRow(ctx, r.db, q))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}
	return rec, nil
}

func scanSet(s scanner) (*SetRecord, error) {
	var (
		rec         SetRecord
		problems    string
		completedAt sql.NullInt64
		createdAt   int64
	)
	err := s.Scan(
		&rec.ID, &rec.UserID, &rec.Kind, &rec.LocalDate, &problems, &rec.CurrentIndex,
		&rec.CompletedCount, &completedAt, &rec.XPEarned, &rec.FocusTopicID,
		&rec.FocusTopicName, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	rec.CompletedAt = fromNullMillis(completedAt)
	rec.CreatedAt = fromMillis(createdAt)
	if rec.Problems, err = decodeJSON[ProblemRecord](problems, "problems"); err != nil {
		return nil, err
	}
	return &rec, nil
}

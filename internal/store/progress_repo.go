package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const progressTable = "topic_progress"

// progressStatusNew is the status of a freshly inserted progress row.
const progressStatusNew = "not_started"

// dayUpdateRetries bounds the compare-and-swap loop on days_practiced.
const dayUpdateRetries = 5

var progressColumns = []string{
	"user_id", "topic_id", "status", "correct_attempts", "total_attempts",
	"last_practiced_at", "days_practiced", "mastery", "updated_at",
}

// progressRepo implements ProgressRepo.
type progressRepo struct {
	db      *sql.DB
	dialect string
}

func (r *progressRepo) GetProgress(ctx context.Context, userID, topicID string) (*ProgressRecord, error) {
	q := builder(r.dialect).Select(progressColumns...).
		From(builder(r.dialect).Table(progressTable)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("topic_id", topicID)))

	rec, err := scanProgress(queryRow(ctx, r.db, q))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return rec, nil
}

func (r *progressRepo) ListProgress(ctx context.Context, userID string) ([]ProgressRecord, error) {
	q := builder(r.dialect).Select(progressColumns...).
		From(builder(r.dialect).Table(progressTable)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Asc("topic_id"))

	rows, err := queryRows(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var out []ProgressRecord
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *progressRepo) IncrementProgress(ctx context.Context, userID, topicID string, correct bool, day string, at time.Time) (*ProgressRecord, error) {
	ins := builder(r.dialect).Insert(progressTable).
		Columns(progressColumns...).
		Values(userID, topicID, progressStatusNew, 0, 0, nullMillis(nil), "[]", 0, toMillis(at)).
		OnConflict(entsql.ConflictColumns("user_id", "topic_id"), entsql.DoNothing())
	if _, err := execQuery(ctx, r.db, ins); err != nil {
		return nil, fmt.Errorf("init progress: %w", err)
	}

	upd := builder(r.dialect).Update(progressTable).
		Add("total_attempts", 1).
		Set("last_practiced_at", toMillis(at)).
		Set("updated_at", toMillis(at)).
		Where(r.key(userID, topicID))
	if correct {
		upd.Add("correct_attempts", 1)
	}
	if _, err := execQuery(ctx, r.db, upd); err != nil {
		return nil, fmt.Errorf("increment progress: %w", err)
	}

	if err := r.addDay(ctx, userID, topicID, day); err != nil {
		return nil, err
	}
	rec, err := r.GetProgress(ctx, userID, topicID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("increment progress: row for %s/%s vanished", userID, topicID)
	}
	return rec, nil
}

// addDay adds day to days_practiced with a compare-and-swap on the stored
// JSON text.
func (r *progressRepo) addDay(ctx context.Context, userID, topicID, day string) error {
	for range dayUpdateRetries {
		sel := builder(r.dialect).Select("days_practiced").
			From(builder(r.dialect).Table(progressTable)).
			Where(r.key(userID, topicID))
		var raw string
		if err := queryRow(ctx, r.db, sel).Scan(&raw); err != nil {
			return fmt.Errorf("read days practiced: %w", err)
		}
		days, err := decodeJSON[string](raw, "days_practiced")
		if err != nil {
			return err
		}
		if slices.Contains(days, day) {
			return nil
		}
		days = append(days, day)
		slices.Sort(days)
		next, err := encodeJSON(days)
		if err != nil {
			return fmt.Errorf("encode days practiced: %w", err)
		}

		upd := builder(r.dialect).Update(progressTable).
			Set("days_practiced", next).
			Where(entsql.And(r.key(userID, topicID), entsql.EQ("days_practiced", raw)))
		res, err := execQuery(ctx, r.db, upd)
		if err != nil {
			return fmt.Errorf("update days practiced: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 1 {
			return nil
		}
	}
	return fmt.Errorf("update days practiced: %w", ErrConflict)
}

func (r *progressRepo) SetProgressStatus(ctx context.Context, userID, topicID, status string, mastery int) error {
	q := builder(r.dialect).Update(progressTable).
		Set("status", status).
		Set("mastery", mastery).
		Where(r.key(userID, topicID))
	if _, err := execQuery(ctx, r.db, q); err != nil {
		return fmt.Errorf("set progress status: %w", err)
	}
	return nil
}

func (r *progressRepo) key(userID, topicID string) *entsql.Predicate {
	return entsql.And(entsql.EQ("user_id", userID), entsql.EQ("topic_id", topicID))
}

func scanProgress(s scanner) (*ProgressRecord, error) {
	var (
		rec       ProgressRecord
		last      sql.NullInt64
		days      string
		updatedAt int64
	)
	err := s.Scan(
		&rec.UserID, &rec.TopicID, &rec.Status, &rec.CorrectAttempts, &rec.TotalAttempts,
		&last, &days, &rec.Mastery, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.LastPracticedAt = fromNullMillis(last)
	rec.UpdatedAt = fromMillis(updatedAt)
	if rec.DaysPracticed, err = decodeJSON[string](days, "days_practiced"); err != nil {
		return nil, err
	}
	return &rec, nil
}

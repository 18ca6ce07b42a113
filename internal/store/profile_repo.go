package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const profileTable = "user_profiles"

var profileColumns = []string{
	"user_id", "total_xp", "level", "current_streak", "longest_streak",
	"last_practice_date", "timezone", "locale", "daily_goal", "updated_at",
}

// profileRepo implements ProfileRepo.
type profileRepo struct {
	db      *sql.DB
	dialect string
}

func (r *profileRepo) GetProfile(ctx context.Context, userID string) (*ProfileRecord, error) {
	q := builder(r.dialect).Select(profileColumns...).
		From(builder(r.dialect).Table(profileTable)).
		Where(entsql.EQ("user_id", userID))

	var (
		rec       ProfileRecord
		updatedAt int64
	)
	err := queryRow(ctx, r.db, q).Scan(
		&rec.UserID, &rec.TotalXP, &rec.Level, &rec.CurrentStreak, &rec.LongestStreak,
		&rec.LastPracticeDate, &rec.Timezone, &rec.Locale, &rec.DailyGoal, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	rec.UpdatedAt = fromMillis(updatedAt)
	return &rec, nil
}

func (r *profileRepo) EnsureProfile(ctx context.Context, defaults *ProfileRecord) (*ProfileRecord, error) {
	level := defaults.Level
	if level < 1 {
		level = 1
	}
	q := builder(r.dialect).Insert(profileTable).
		Columns(profileColumns...).
		Values(
			defaults.UserID, defaults.TotalXP, level, defaults.CurrentStreak, defaults.LongestStreak,
			defaults.LastPracticeDate, defaults.Timezone, defaults.Locale, defaults.DailyGoal,
			toMillis(time.Now()),
		).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing())
	if _, err := execQuery(ctx, r.db, q); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	rec, err := r.GetProfile(ctx, defaults.UserID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("ensure profile: %q missing after insert", defaults.UserID)
	}
	return rec, nil
}

func (r *profileRepo) AddXP(ctx context.Context, userID string, delta int) (int, error) {
	q := builder(r.dialect).Update(profileTable).
		Add("total_xp", delta).
		Set("updated_at", toMillis(time.Now())).
		Where(entsql.EQ("user_id", userID))
	if _, err := execQuery(ctx, r.db, q); err != nil {
		return 0, fmt.Errorf("add xp: %w", err)
	}

	sel := builder(r.dialect).Select("total_xp").
		From(builder(r.dialect).Table(profileTable)).
		Where(entsql.EQ("user_id", userID))
	var total int
	if err := queryRow(ctx, r.db, sel).Scan(&total); err != nil {
		return 0, fmt.Errorf("read total xp: %w", err)
	}
	return total, nil
}

func (r *profileRepo) UpdateLevel(ctx context.Context, userID string, level int) error {
	return r.update(ctx, userID, "update level", map[string]any{"level": level})
}

func (r *profileRepo) UpdateStreak(ctx context.Context, userID string, current, longest int, lastPracticeDate string) error {
	return r.update(ctx, userID, "update streak", map[string]any{
		"current_streak":     current,
		"longest_streak":     longest,
		"last_practice_date": lastPracticeDate,
	})
}

func (r *profileRepo) UpdatePreferences(ctx context.Context, userID, timezone, locale string, dailyGoal int) error {
	return r.update(ctx, userID, "update preferences", map[string]any{
		"timezone":   timezone,
		"locale":     locale,
		"daily_goal": dailyGoal,
	})
}

func (r *profileRepo) update(ctx context.Context, userID, op string, cols map[string]any) error {
	u := builder(r.dialect).Update(profileTable).Set("updated_at", toMillis(time.Now()))
	for _, c := range slices.Sorted(maps.Keys(cols)) {
		u.Set(c, cols[c])
	}
	u.Where(entsql.EQ("user_id", userID))
	if _, err := execQuery(ctx, r.db, u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

package rewards

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/practix/internal/store"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	s, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "rewards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewLedger(s.ProfileRepo(), DefaultConfig(), "Asia/Jerusalem", "he", nil)
}

func TestLedger_ProfileDefaults(t *testing.T) {
	l := newTestLedger(t)
	p, err := l.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.TotalXP)
	assert.Equal(t, "Asia/Jerusalem", p.Timezone)
	assert.Equal(t, "he", p.Locale)
}

func TestLedger_AwardXPLevelsUp(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	p, err := l.AwardXP(ctx, "u1", 90)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)

	p, err = l.AwardXP(ctx, "u1", 20)
	require.NoError(t, err)
	assert.Equal(t, 110, p.TotalXP)
	assert.Equal(t, 2, p.Level)

	_, err = l.AwardXP(ctx, "u1", -5)
	assert.Error(t, err)
}

func TestLedger_CompleteDayStreakAndBonus(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	res, err := l.CompleteDay(ctx, "u1", "2026-03-10", true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak.Current)
	// 50 completion + 5 streak (1 day) + 25 perfect
	assert.Equal(t, 80, res.Bonus.Total())
	assert.Equal(t, 80, res.Profile.TotalXP)

	res, err = l.CompleteDay(ctx, "u1", "2026-03-11", false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak.Current)
	assert.Equal(t, 60, res.Bonus.Total())

	// Skipping two days resets the streak but keeps the longest.
	res, err = l.CompleteDay(ctx, "u1", "2026-03-14", false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak.Current)

	p, err := l.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 2, p.LongestStreak)
	assert.Equal(t, "2026-03-14", p.LastPracticeDate)
	assert.Equal(t, 80+60+55, p.TotalXP)
	assert.Equal(t, 2, p.Level)
}

func TestLedger_UserLocation(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	// No profile yet: default timezone.
	assert.Equal(t, "Asia/Jerusalem", l.UserLocation(ctx, "ghost").String())

	_, err := l.UpdatePreferences(ctx, "u1", Preferences{Timezone: "Europe/Paris"})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", l.UserLocation(ctx, "u1").String())
}

func TestLedger_UpdatePreferences(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	p, err := l.UpdatePreferences(ctx, "u1", Preferences{Locale: "en", DailyGoal: 7})
	require.NoError(t, err)
	assert.Equal(t, "en", p.Locale)
	assert.Equal(t, 7, p.DailyGoal)
	assert.Equal(t, "Asia/Jerusalem", p.Timezone, "empty timezone keeps the current one")

	_, err = l.UpdatePreferences(ctx, "u1", Preferences{Timezone: "Mars/Base"})
	assert.True(t, errors.Is(err, ErrInvalidPreferences))

	_, err = l.UpdatePreferences(ctx, "u1", Preferences{DailyGoal: 11})
	assert.True(t, errors.Is(err, ErrInvalidPreferences))
}

package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/practix/internal/clock"
	"github.com/abhisek/practix/internal/logger"
	"github.com/abhisek/practix/internal/store"
)

// ErrInvalidPreferences is returned for preference updates that fail validation.
var ErrInvalidPreferences = errors.New("invalid preferences")

// Profile is the gamification slice of a user profile.
type Profile struct {
	UserID           string `json:"userId"`
	TotalXP          int    `json:"totalXp"`
	Level            int    `json:"level"`
	CurrentStreak    int    `json:"currentStreak"`
	LongestStreak    int    `json:"longestStreak"`
	LastPracticeDate string `json:"lastPracticeDate,omitempty"`
	Timezone         string `json:"timezone"`
	Locale           string `json:"locale"`
	DailyGoal        int    `json:"dailyGoal"`
}

// Preferences are the user-editable profile fields.
type Preferences struct {
	Timezone  string `json:"timezone"`
	Locale    string `json:"locale"`
	DailyGoal int    `json:"dailyGoal"`
}

// Ledger applies reward rules to stored profiles.
type Ledger struct {
	repo            store.ProfileRepo
	cfg             Config
	defaultTimezone string
	defaultLocale   string
	log             *logger.Logger
}

// NewLedger creates a Ledger. defaultTimezone is used for users who never
// set one.
func NewLedger(repo store.ProfileRepo, cfg Config, defaultTimezone, defaultLocale string, log *logger.Logger) *Ledger {
	return &Ledger{
		repo:            repo,
		cfg:             cfg,
		defaultTimezone: defaultTimezone,
		defaultLocale:   defaultLocale,
		log:             logger.OrNop(log),
	}
}

// Config returns the reward table.
func (l *Ledger) Config() Config { return l.cfg }

// Profile returns the user's profile, creating a default one on first use.
func (l *Ledger) Profile(ctx context.Context, userID string) (Profile, error) {
	rec, err := l.repo.EnsureProfile(ctx, &store.ProfileRecord{
		UserID:   userID,
		Level:    1,
		Timezone: l.defaultTimezone,
		Locale:   l.defaultLocale,
	})
	if err != nil {
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return profileFromRecord(rec), nil
}

// UserLocation resolves the user's timezone, falling back to the default.
func (l *Ledger) UserLocation(ctx context.Context, userID string) *time.Location {
	rec, err := l.repo.GetProfile(ctx, userID)
	if err != nil {
		l.log.Warn("resolve user timezone failed, using default", "user", userID, "error", err)
		return clock.LoadLocation(l.defaultTimezone, "")
	}
	tz := ""
	if rec != nil {
		tz = rec.Timezone
	}
	return clock.LoadLocation(tz, l.defaultTimezone)
}

// AwardXP adds xp to the user's total and updates the derived level.
// It returns the updated profile.
func (l *Ledger) AwardXP(ctx context.Context, userID string, xp int) (Profile, error) {
	if xp < 0 {
		return Profile{}, fmt.Errorf("award xp: negative amount %d", xp)
	}
	if _, err := l.Profile(ctx, userID); err != nil {
		return Profile{}, err
	}
	total, err := l.repo.AddXP(ctx, userID, xp)
	if err != nil {
		return Profile{}, fmt.Errorf("award xp: %w", err)
	}
	return l.syncLevel(ctx, userID, total)
}

// DayResult is what CompleteDay applied.
type DayResult struct {
	Bonus   DayBonus
	Streak  StreakUpdate
	Profile Profile
}

// CompleteDay updates the streak for today (a local calendar date) and
// awards the completion, streak and perfect-day bonuses. The streak bonus is
// computed from the updated streak. Callers must invoke it once per
// completed daily set.
func (l *Ledger) CompleteDay(ctx context.Context, userID, today string, allCorrect bool) (DayResult, error) {
	p, err := l.Profile(ctx, userID)
	if err != nil {
		return DayResult{}, err
	}

	upd := NextStreak(p.CurrentStreak, p.LongestStreak, p.LastPracticeDate, today)
	if upd.Changed || upd.Longest != p.LongestStreak {
		if err := l.repo.UpdateStreak(ctx, userID, upd.Current, upd.Longest, upd.LastDate); err != nil {
			return DayResult{}, fmt.Errorf("update streak: %w", err)
		}
	}

	bonus := l.cfg.CompletionBonuses(upd.Current, allCorrect)
	total, err := l.repo.AddXP(ctx, userID, bonus.Total())
	if err != nil {
		return DayResult{}, fmt.Errorf("award completion bonus: %w", err)
	}
	prof, err := l.syncLevel(ctx, userID, total)
	if err != nil {
		return DayResult{}, err
	}

	l.log.Info("daily set completed",
		"user", userID, "date", today, "streak", upd.Current,
		"completion_xp", bonus.Completion, "streak_xp", bonus.Streak, "perfect_xp", bonus.Perfect)
	return DayResult{Bonus: bonus, Streak: upd, Profile: prof}, nil
}

// UpdatePreferences validates and stores the user's preferences. Empty
// fields keep their current value.
func (l *Ledger) UpdatePreferences(ctx context.Context, userID string, prefs Preferences) (Profile, error) {
	p, err := l.Profile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if prefs.Timezone != "" {
		if err := clock.ValidateTimezone(prefs.Timezone); err != nil {
			return Profile{}, fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
		}
		p.Timezone = prefs.Timezone
	}
	if prefs.Locale != "" {
		p.Locale = prefs.Locale
	}
	if prefs.DailyGoal != 0 {
		if prefs.DailyGoal < 1 || prefs.DailyGoal > 10 {
			return Profile{}, fmt.Errorf("%w: daily goal must be between 1 and 10, got %d", ErrInvalidPreferences, prefs.DailyGoal)
		}
		p.DailyGoal = prefs.DailyGoal
	}
	if err := l.repo.UpdatePreferences(ctx, userID, p.Timezone, p.Locale, p.DailyGoal); err != nil {
		return Profile{}, fmt.Errorf("update preferences: %w", err)
	}
	return p, nil
}

func (l *Ledger) syncLevel(ctx context.Context, userID string, total int) (Profile, error) {
	rec, err := l.repo.GetProfile(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("reload profile: %w", err)
	}
	if rec == nil {
		return Profile{}, fmt.Errorf("reload profile: %q not found", userID)
	}
	// The stored total may already include a concurrent award.
	total = max(total, rec.TotalXP)
	level := l.cfg.Level(total)
	if level != rec.Level {
		if err := l.repo.UpdateLevel(ctx, userID, level); err != nil {
			return Profile{}, fmt.Errorf("update level: %w", err)
		}
		if level > rec.Level {
			l.log.Info("level up", "user", userID, "from", rec.Level, "to", level, "xp", total)
		}
		rec.Level = level
	}
	return profileFromRecord(rec), nil
}

func profileFromRecord(rec *store.ProfileRecord) Profile {
	return Profile{
		UserID:           rec.UserID,
		TotalXP:          rec.TotalXP,
		Level:            rec.Level,
		CurrentStreak:    rec.CurrentStreak,
		LongestStreak:    rec.LongestStreak,
		LastPracticeDate: rec.LastPracticeDate,
		Timezone:         rec.Timezone,
		Locale:           rec.Locale,
		DailyGoal:        rec.DailyGoal,
	}
}

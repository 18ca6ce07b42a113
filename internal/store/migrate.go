package store

import (
	"context"
	"fmt"
)

// schema is portable between SQLite and Postgres. Timestamps are unix
// milliseconds; list-valued fields are JSON text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS topic_progress (
		user_id TEXT NOT NULL,
		topic_id TEXT NOT NULL,
		status TEXT NOT NULL,
		correct_attempts INTEGER NOT NULL DEFAULT 0,
		total_attempts INTEGER NOT NULL DEFAULT 0,
		last_practiced_at BIGINT,
		days_practiced TEXT NOT NULL DEFAULT '[]',
		mastery INTEGER NOT NULL DEFAULT 0,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (user_id, topic_id)
	)`,

	`CREATE TABLE IF NOT EXISTS problem_sets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		local_date TEXT NOT NULL,
		problems TEXT NOT NULL,
		current_index INTEGER NOT NULL DEFAULT 0,
		completed_count INTEGER NOT NULL DEFAULT 0,
		completed_at BIGINT,
		xp_earned INTEGER NOT NULL DEFAULT 0,
		focus_topic_id TEXT NOT NULL DEFAULT '',
		focus_topic_name TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	// At most one daily set per user per calendar day.
	`CREATE UNIQUE INDEX IF NOT EXISTS problem_sets_daily_uniq
		ON problem_sets (user_id, local_date) WHERE kind = 'daily'`,
	`CREATE INDEX IF NOT EXISTS problem_sets_user_created
		ON problem_sets (user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS problem_attempts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		set_id TEXT NOT NULL,
		problem_id TEXT NOT NULL,
		topic_id TEXT NOT NULL,
		is_correct BOOLEAN,
		skipped BOOLEAN NOT NULL DEFAULT FALSE,
		answer TEXT NOT NULL DEFAULT '',
		image_ref TEXT NOT NULL DEFAULT '',
		feedback TEXT NOT NULL DEFAULT '',
		extracted_answer TEXT NOT NULL DEFAULT '',
		xp_awarded INTEGER NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS problem_attempts_uniq
		ON problem_attempts (user_id, set_id, problem_id)`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id TEXT PRIMARY KEY,
		total_xp INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1,
		current_streak INTEGER NOT NULL DEFAULT 0,
		longest_streak INTEGER NOT NULL DEFAULT 0,
		last_practice_date TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL DEFAULT '',
		locale TEXT NOT NULL DEFAULT '',
		daily_goal INTEGER NOT NULL DEFAULT 0,
		updated_at BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS exercises (
		id TEXT PRIMARY KEY,
		topic_id TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		question TEXT NOT NULL,
		question_localized TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL,
		answer_type TEXT NOT NULL DEFAULT 'text',
		steps TEXT NOT NULL DEFAULT '[]',
		steps_localized TEXT NOT NULL DEFAULT '[]',
		hint TEXT NOT NULL DEFAULT '',
		hint_localized TEXT NOT NULL DEFAULT '',
		estimated_minutes INTEGER NOT NULL DEFAULT 0,
		usage_count INTEGER NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS exercises_lookup
		ON exercises (topic_id, difficulty, usage_count)`,

	`CREATE TABLE IF NOT EXISTS llm_requests (
		id TEXT PRIMARY KEY,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
}

// Migrate creates tables and indexes that do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

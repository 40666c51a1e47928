package db

import "context"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE,
		username TEXT,
		password_hash TEXT,
		is_guest BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		token TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS training_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL,
		distance_m DOUBLE PRECISION NOT NULL,
		route_geometry TEXT NOT NULL DEFAULT '',
		is_synced BOOLEAN NOT NULL DEFAULT FALSE,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS training_sessions_user_idx
		ON training_sessions (user_id, started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS user_statistics (
		user_id TEXT PRIMARY KEY,
		total_sessions INT NOT NULL DEFAULT 0,
		total_duration_ms BIGINT NOT NULL DEFAULT 0,
		total_distance_m DOUBLE PRECISION NOT NULL DEFAULT 0,
		current_streak_days INT NOT NULL DEFAULT 0,
		longest_streak_days INT NOT NULL DEFAULT 0,
		last_training_date TIMESTAMPTZ,
		sessions_over_5km INT NOT NULL DEFAULT 0,
		sessions_over_10km INT NOT NULL DEFAULT 0,
		last_edited TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		height_cm DOUBLE PRECISION NOT NULL DEFAULT 0,
		birth_year INT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS friend_requests (
		id TEXT PRIMARY KEY,
		from_user_id TEXT NOT NULL,
		to_user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (from_user_id, to_user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		user_id TEXT NOT NULL,
		friend_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, friend_id)
	)`,
}

// EnsureSchema applies the idempotent table definitions at startup.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

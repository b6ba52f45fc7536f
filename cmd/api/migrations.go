// cmd/api/migrations.go
// Schema setup run at startup

package main

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			display_name VARCHAR(100) NOT NULL,
			display_name_lowercase VARCHAR(100) NOT NULL DEFAULT '',
			first_name VARCHAR(50) NOT NULL DEFAULT '',
			last_name VARCHAR(50) NOT NULL DEFAULT '',
			photo_url TEXT NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			is_premium BOOLEAN NOT NULL DEFAULT FALSE,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			reveal_tokens INTEGER NOT NULL DEFAULT 0,
			last_token_reset TIMESTAMP,
			eco_scores JSONB,
			family_scores JSONB,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			refresh_token TEXT NOT NULL UNIQUE,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS circles (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(20) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT circles_owner_name_unique UNIQUE (owner_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS circle_members (
			circle_id BIGINT NOT NULL REFERENCES circles(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (circle_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ratings (
			id BIGSERIAL PRIMARY KEY,
			from_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			to_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			circle_name VARCHAR(20) NOT NULL,
			scores JSONB NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT ratings_rater_ratee_circle_unique UNIQUE (from_user_id, to_user_id, circle_name)
		)`,

		`CREATE TABLE IF NOT EXISTS attraction_ratings (
			id BIGSERIAL PRIMARY KEY,
			from_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			to_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			scores JSONB NOT NULL,
			is_anonymous BOOLEAN NOT NULL DEFAULT TRUE,
			is_out_of_circles BOOLEAN NOT NULL DEFAULT FALSE,
			reveal_status VARCHAR(20) NOT NULL DEFAULT 'none',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT attraction_rater_ratee_unique UNIQUE (from_user_id, to_user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS reveal_requests (
			id BIGSERIAL PRIMARY KEY,
			from_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			to_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			rating_id BIGINT NOT NULL REFERENCES attraction_ratings(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS invites (
			id BIGSERIAL PRIMARY KEY,
			from_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			to_user_id BIGINT REFERENCES users(id) ON DELETE CASCADE,
			to_email VARCHAR(255) NOT NULL DEFAULT '',
			circle_id BIGINT NOT NULL REFERENCES circles(id) ON DELETE CASCADE,
			circle_name VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS family_goals (
			id BIGSERIAL PRIMARY KEY,
			from_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			to_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			trait VARCHAR(50) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			start_date TIMESTAMP,
			end_date TIMESTAMP,
			tip TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS feedback (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			design_rating INTEGER NOT NULL,
			intuitiveness_rating INTEGER NOT NULL,
			feature_satisfaction INTEGER NOT NULL,
			performance_rating INTEGER NOT NULL,
			recommend_likelihood INTEGER NOT NULL,
			comments TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_display_name_lowercase ON users(display_name_lowercase)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users(LOWER(email))`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_refresh_token ON sessions(refresh_token)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_circle_members_user_id ON circle_members(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_ratee ON ratings(to_user_id, circle_name)`,
		`CREATE INDEX IF NOT EXISTS idx_attraction_ratee ON attraction_ratings(to_user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reveal_requests_rater ON reveal_requests(to_user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_invites_from_user ON invites(from_user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_invites_to_user ON invites(to_user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_invites_to_email ON invites(LOWER(to_email))`,
		`CREATE INDEX IF NOT EXISTS idx_family_goals_active ON family_goals(status, end_date)`,
		`CREATE INDEX IF NOT EXISTS idx_family_goals_to_user ON family_goals(to_user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at DESC)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
		}
	}

	return nil
}

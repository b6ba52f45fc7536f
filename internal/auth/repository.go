// internal/auth/repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/circlescore/circlescore-backend/internal/circles"
)

// Repository defines the auth data access interface
type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	IsEmailTaken(ctx context.Context, email string) (bool, error)

	CreateSession(ctx context.Context, session *Session) error
	GetSessionByRefreshToken(ctx context.Context, token string) (*Session, error)
	DeleteSessionByRefreshToken(ctx context.Context, token string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
}

type postgresRepository struct {
	db      *sqlx.DB
	circles circles.Repository
}

func NewRepository(db *sqlx.DB, circlesRepo circles.Repository) Repository {
	return &postgresRepository{db: db, circles: circlesRepo}
}

// CreateUser inserts the user, provisions the default circles and claims
// any pending invites addressed to the email, all in one transaction.
func (r *postgresRepository) CreateUser(ctx context.Context, user *User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (email, display_name, display_name_lowercase, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		user.Email, user.DisplayName, strings.ToLower(user.DisplayName),
		user.FirstName, user.LastName, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := r.circles.ProvisionDefaults(ctx, tx, user.ID); err != nil {
		return fmt.Errorf("failed to provision circles: %w", err)
	}

	// Invites sent to this email before the account existed become
	// claimable by the new user.
	_, err = tx.ExecContext(ctx, `
		UPDATE invites
		SET to_user_id = $1
		WHERE LOWER(to_email) = $2 AND to_user_id IS NULL AND status = 'pending'`,
		user.ID, strings.ToLower(user.Email))
	if err != nil {
		return fmt.Errorf("failed to claim invites: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var user User
	query := `
		SELECT id, email, display_name, first_name, last_name, is_premium, is_admin, password_hash, created_at, updated_at
		FROM users WHERE id = $1`

	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `
		SELECT id, email, display_name, first_name, last_name, is_premium, is_admin, password_hash, created_at, updated_at
		FROM users WHERE LOWER(email) = LOWER($1)`

	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *postgresRepository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) CreateSession(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO sessions (user_id, refresh_token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		session.UserID, session.RefreshToken, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetSessionByRefreshToken(ctx context.Context, token string) (*Session, error) {
	var session Session
	query := `
		SELECT id, user_id, refresh_token, expires_at, created_at
		FROM sessions
		WHERE refresh_token = $1 AND expires_at > CURRENT_TIMESTAMP`

	if err := r.db.GetContext(ctx, &session, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *postgresRepository) DeleteSessionByRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteUserSessions(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// internal/reveal/repository.go

package reveal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/circlescore/circlescore-backend/internal/users"
)

// ratingRow is the slice of an attraction rating the reveal flow needs
type ratingRow struct {
	ID           int64  `db:"id"`
	FromUserID   int64  `db:"from_user_id"`
	ToUserID     int64  `db:"to_user_id"`
	IsAnonymous  bool   `db:"is_anonymous"`
	RevealStatus string `db:"reveal_status"`
}

// Repository defines the reveal data access interface
type Repository interface {
	// CreateRequest atomically spends one of the requester's tokens,
	// creates the pending request and marks the rating. The token debit
	// is guarded so a concurrent request can never drive the balance
	// negative.
	CreateRequest(ctx context.Context, requesterID, ratingID int64) (*Request, error)

	// Resolve flips a pending request to its terminal state and updates
	// the rating. Accepting clears the rating's anonymity for good.
	Resolve(ctx context.Context, requestID, resolverID int64, status string) (*Request, error)

	PendingForUser(ctx context.Context, userID int64) ([]*Request, error)
	IsPremium(ctx context.Context, userID int64) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateRequest(ctx context.Context, requesterID, ratingID int64) (*Request, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var rating ratingRow
	err = tx.GetContext(ctx, &rating, `
		SELECT id, from_user_id, to_user_id, is_anonymous, reveal_status
		FROM attraction_ratings WHERE id = $1
		FOR UPDATE`, ratingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	if rating.ToUserID != requesterID {
		return nil, ErrNotYourRating
	}
	if !rating.IsAnonymous {
		return nil, ErrNotAnonymous
	}
	if rating.RevealStatus != "none" {
		return nil, ErrAlreadyRequested
	}

	spent, err := users.DebitToken(ctx, tx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to spend token: %w", err)
	}
	if !spent {
		return nil, ErrInsufficientTokens
	}

	request := &Request{
		FromUserID: requesterID,
		ToUserID:   rating.FromUserID,
		RatingID:   ratingID,
		Status:     StatusPending,
	}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO reveal_requests (from_user_id, to_user_id, rating_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		request.FromUserID, request.ToUserID, request.RatingID, request.Status,
	).Scan(&request.ID, &request.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create reveal request: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE attraction_ratings SET reveal_status = 'pending', updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`, ratingID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return request, nil
}

func (r *postgresRepository) Resolve(ctx context.Context, requestID, resolverID int64, status string) (*Request, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var request Request
	err = tx.GetContext(ctx, &request, `
		SELECT id, from_user_id, to_user_id, rating_id, status, created_at
		FROM reveal_requests WHERE id = $1
		FOR UPDATE`, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get reveal request: %w", err)
	}

	if request.ToUserID != resolverID {
		return nil, ErrNotYourRequest
	}
	if request.Status != StatusPending {
		return nil, ErrAlreadyResolved
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE reveal_requests SET status = $1 WHERE id = $2`,
		status, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	if status == StatusAccepted {
		_, err = tx.ExecContext(ctx, `
			UPDATE attraction_ratings
			SET reveal_status = $1, is_anonymous = FALSE, updated_at = CURRENT_TIMESTAMP
			WHERE id = $2`, status, request.RatingID)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE attraction_ratings
			SET reveal_status = $1, updated_at = CURRENT_TIMESTAMP
			WHERE id = $2`, status, request.RatingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	request.Status = status
	return &request, nil
}

func (r *postgresRepository) PendingForUser(ctx context.Context, userID int64) ([]*Request, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT rr.id, rr.from_user_id, rr.to_user_id, rr.rating_id, rr.status, rr.created_at,
			u.display_name, u.photo_url
		FROM reveal_requests rr
		JOIN users u ON u.id = rr.from_user_id
		WHERE rr.to_user_id = $1 AND rr.status = 'pending'
		ORDER BY rr.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reveal requests: %w", err)
	}
	defer rows.Close()

	var requests []*Request
	for rows.Next() {
		var request Request
		var displayName, photoURL string
		err := rows.Scan(
			&request.ID, &request.FromUserID, &request.ToUserID, &request.RatingID,
			&request.Status, &request.CreatedAt,
			&displayName, &photoURL,
		)
		if err != nil {
			return nil, err
		}
		request.FromUser = &RequesterInfo{
			ID:          request.FromUserID,
			DisplayName: displayName,
			PhotoURL:    photoURL,
		}
		requests = append(requests, &request)
	}
	return requests, rows.Err()
}

func (r *postgresRepository) IsPremium(ctx context.Context, userID int64) (bool, error) {
	var premium bool
	err := r.db.GetContext(ctx, &premium, `SELECT is_premium FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed to check premium: %w", err)
	}
	return premium, nil
}

// internal/ratings/repository.go

package ratings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/circlescore/circlescore-backend/internal/circles"
	"github.com/circlescore/circlescore-backend/internal/users"
)

// Repository defines the ratings data access interface
type Repository interface {
	UpsertRating(ctx context.Context, rating *Rating) error
	RatingsReceived(ctx context.Context, toUserID int64, name circles.Name) ([]*Rating, error)
	MyRatingTimes(ctx context.Context, fromUserID int64, name circles.Name) (map[int64]time.Time, error)

	// UpsertAttraction stores or overwrites an attraction rating. When the
	// rating is new and out-of-circles, one reveal token is debited in the
	// same transaction; a resubmission is never charged again.
	UpsertAttraction(ctx context.Context, rating *AttractionRating) error
	AttractionReceived(ctx context.Context, toUserID int64) ([]*AttractionRating, error)

	UsersInfo(ctx context.Context, ids []int64) ([]MemberInfo, error)
	IsPremium(ctx context.Context, userID int64) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) UpsertRating(ctx context.Context, rating *Rating) error {
	query := `
		INSERT INTO ratings (from_user_id, to_user_id, circle_name, scores)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (from_user_id, to_user_id, circle_name)
		DO UPDATE SET scores = EXCLUDED.scores, updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		rating.FromUserID, rating.ToUserID, rating.CircleName, rating.Scores,
	).Scan(&rating.ID, &rating.CreatedAt, &rating.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}
	return nil
}

func (r *postgresRepository) RatingsReceived(ctx context.Context, toUserID int64, name circles.Name) ([]*Rating, error) {
	var ratings []*Rating
	query := `
		SELECT id, from_user_id, to_user_id, circle_name, scores, created_at, updated_at
		FROM ratings
		WHERE to_user_id = $1 AND circle_name = $2
		ORDER BY created_at`

	if err := r.db.SelectContext(ctx, &ratings, query, toUserID, name); err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}
	return ratings, nil
}

func (r *postgresRepository) MyRatingTimes(ctx context.Context, fromUserID int64, name circles.Name) (map[int64]time.Time, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT to_user_id, updated_at
		FROM ratings
		WHERE from_user_id = $1 AND circle_name = $2`,
		fromUserID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating times: %w", err)
	}
	defer rows.Close()

	times := make(map[int64]time.Time)
	for rows.Next() {
		var toUserID int64
		var updatedAt time.Time
		if err := rows.Scan(&toUserID, &updatedAt); err != nil {
			return nil, err
		}
		times[toUserID] = updatedAt
	}
	return times, rows.Err()
}

func (r *postgresRepository) UpsertAttraction(ctx context.Context, rating *AttractionRating) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Insert first so the new-vs-existing decision is atomic: a
	// concurrent first submission conflicts here instead of both
	// racing past a SELECT, which would debit two tokens for one row.
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO attraction_ratings (from_user_id, to_user_id, scores, is_anonymous, is_out_of_circles, reveal_status)
		VALUES ($1, $2, $3, $4, $5, 'none')
		ON CONFLICT (from_user_id, to_user_id) DO NOTHING
		RETURNING id, is_out_of_circles, reveal_status, created_at, updated_at`,
		rating.FromUserID, rating.ToUserID, rating.Scores, rating.IsAnonymous, rating.IsOutOfCircles,
	).Scan(&rating.ID, &rating.IsOutOfCircles, &rating.RevealStatus, &rating.CreatedAt, &rating.UpdatedAt)

	switch {
	case err == nil:
		// The row is new; only now may a token be owed.
		if rating.IsOutOfCircles {
			spent, err := users.DebitToken(ctx, tx, rating.FromUserID)
			if err != nil {
				return fmt.Errorf("failed to spend token: %w", err)
			}
			if !spent {
				return ErrInsufficientTokens
			}
		}
	case errors.Is(err, sql.ErrNoRows):
		// The rating already exists: overwrite scores and anonymity,
		// never the stored out-of-circles flag and never the balance.
		err = tx.QueryRowxContext(ctx, `
			UPDATE attraction_ratings
			SET scores = $3, is_anonymous = $4, updated_at = CURRENT_TIMESTAMP
			WHERE from_user_id = $1 AND to_user_id = $2
			RETURNING id, is_out_of_circles, reveal_status, created_at, updated_at`,
			rating.FromUserID, rating.ToUserID, rating.Scores, rating.IsAnonymous,
		).Scan(&rating.ID, &rating.IsOutOfCircles, &rating.RevealStatus, &rating.CreatedAt, &rating.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update attraction rating: %w", err)
		}
	default:
		return fmt.Errorf("failed to upsert attraction rating: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepository) AttractionReceived(ctx context.Context, toUserID int64) ([]*AttractionRating, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT ar.id, ar.from_user_id, ar.to_user_id, ar.scores, ar.is_anonymous,
			ar.is_out_of_circles, ar.reveal_status, ar.created_at, ar.updated_at,
			u.display_name, u.photo_url
		FROM attraction_ratings ar
		JOIN users u ON u.id = ar.from_user_id
		WHERE ar.to_user_id = $1
		ORDER BY ar.created_at DESC`,
		toUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attraction ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*AttractionRating
	for rows.Next() {
		var rating AttractionRating
		var displayName, photoURL string
		err := rows.Scan(
			&rating.ID, &rating.FromUserID, &rating.ToUserID, &rating.Scores,
			&rating.IsAnonymous, &rating.IsOutOfCircles, &rating.RevealStatus,
			&rating.CreatedAt, &rating.UpdatedAt,
			&displayName, &photoURL,
		)
		if err != nil {
			return nil, err
		}
		if !rating.IsAnonymous {
			rating.FromUser = &RaterInfo{
				ID:          rating.FromUserID,
				DisplayName: displayName,
				PhotoURL:    photoURL,
			}
		}
		ratings = append(ratings, &rating)
	}
	return ratings, rows.Err()
}

func (r *postgresRepository) UsersInfo(ctx context.Context, ids []int64) ([]MemberInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, display_name, first_name, last_name, photo_url
		FROM users WHERE id IN (?)
		ORDER BY display_name_lowercase`, ids)
	if err != nil {
		return nil, err
	}

	var members []MemberInfo
	if err := r.db.SelectContext(ctx, &members, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return members, nil
}

func (r *postgresRepository) IsPremium(ctx context.Context, userID int64) (bool, error) {
	var premium bool
	err := r.db.GetContext(ctx, &premium, `SELECT is_premium FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrRaterNotFound
		}
		return false, fmt.Errorf("failed to check premium: %w", err)
	}
	return premium, nil
}

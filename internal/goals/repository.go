// internal/goals/repository.go

package goals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines the family goals data access interface
type Repository interface {
	Create(ctx context.Context, goal *FamilyGoal) error
	GetByID(ctx context.Context, id int64) (*FamilyGoal, error)

	// HasPendingBetween checks both directions: the same trait cannot be
	// suggested twice between the same two people while one suggestion
	// is still pending.
	HasPendingBetween(ctx context.Context, userA, userB int64, trait string) (bool, error)

	// Activate flips a pending goal to active with the given window.
	// Returns ErrGoalResolved if the goal is no longer pending.
	Activate(ctx context.Context, goalID int64, start, end time.Time, tip string) error
	Decline(ctx context.Context, goalID int64) error

	// CompleteExpired marks active goals whose window has passed as
	// completed and returns how many it touched.
	CompleteExpired(ctx context.Context) (int64, error)

	PendingReceived(ctx context.Context, userID int64) ([]*FamilyGoal, error)
	PendingSent(ctx context.Context, userID int64) ([]*FamilyGoal, error)
	ActiveAndCompleted(ctx context.Context, userID int64) ([]*FamilyGoal, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, goal *FamilyGoal) error {
	query := `
		INSERT INTO family_goals (from_user_id, to_user_id, trait, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, status, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		goal.FromUserID, goal.ToUserID, goal.Trait,
	).Scan(&goal.ID, &goal.Status, &goal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*FamilyGoal, error) {
	var goal FamilyGoal
	query := `
		SELECT id, from_user_id, to_user_id, trait, status, start_date, end_date,
			COALESCE(tip, '') AS tip, created_at
		FROM family_goals WHERE id = $1`

	if err := r.db.GetContext(ctx, &goal, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return &goal, nil
}

func (r *postgresRepository) HasPendingBetween(ctx context.Context, userA, userB int64, trait string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM family_goals
			WHERE trait = $3 AND status = 'pending'
			AND ((from_user_id = $1 AND to_user_id = $2)
				OR (from_user_id = $2 AND to_user_id = $1))
		)`

	if err := r.db.GetContext(ctx, &exists, query, userA, userB, trait); err != nil {
		return false, fmt.Errorf("failed to check pending goal: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) Activate(ctx context.Context, goalID int64, start, end time.Time, tip string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE family_goals
		SET status = 'active', start_date = $1, end_date = $2, tip = $3
		WHERE id = $4 AND status = 'pending'`,
		start, end, tip, goalID)
	if err != nil {
		return fmt.Errorf("failed to activate goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrGoalResolved
	}
	return nil
}

func (r *postgresRepository) Decline(ctx context.Context, goalID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE family_goals SET status = 'declined'
		WHERE id = $1 AND status = 'pending'`, goalID)
	if err != nil {
		return fmt.Errorf("failed to decline goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrGoalResolved
	}
	return nil
}

func (r *postgresRepository) CompleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE family_goals SET status = 'completed'
		WHERE status = 'active' AND end_date < CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, fmt.Errorf("failed to complete expired goals: %w", err)
	}
	return res.RowsAffected()
}

func (r *postgresRepository) PendingReceived(ctx context.Context, userID int64) ([]*FamilyGoal, error) {
	return r.listWithPartner(ctx, `
		SELECT g.id, g.from_user_id, g.to_user_id, g.trait, g.status, g.start_date, g.end_date,
			COALESCE(g.tip, '') AS tip, g.created_at,
			u.display_name, u.photo_url
		FROM family_goals g
		JOIN users u ON u.id = g.from_user_id
		WHERE g.to_user_id = $1 AND g.status = 'pending'
		ORDER BY g.created_at DESC`, userID, true)
}

func (r *postgresRepository) PendingSent(ctx context.Context, userID int64) ([]*FamilyGoal, error) {
	return r.listWithPartner(ctx, `
		SELECT g.id, g.from_user_id, g.to_user_id, g.trait, g.status, g.start_date, g.end_date,
			COALESCE(g.tip, '') AS tip, g.created_at,
			u.display_name, u.photo_url
		FROM family_goals g
		JOIN users u ON u.id = g.to_user_id
		WHERE g.from_user_id = $1 AND g.status = 'pending'
		ORDER BY g.created_at DESC`, userID, false)
}

func (r *postgresRepository) listWithPartner(ctx context.Context, query string, userID int64, joinedIsSender bool) ([]*FamilyGoal, error) {
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}
	defer rows.Close()

	var goals []*FamilyGoal
	for rows.Next() {
		var goal FamilyGoal
		var displayName, photoURL string
		err := rows.Scan(
			&goal.ID, &goal.FromUserID, &goal.ToUserID, &goal.Trait, &goal.Status,
			&goal.StartDate, &goal.EndDate, &goal.Tip, &goal.CreatedAt,
			&displayName, &photoURL,
		)
		if err != nil {
			return nil, err
		}
		if joinedIsSender {
			goal.FromUser = &PartnerInfo{ID: goal.FromUserID, DisplayName: displayName, PhotoURL: photoURL}
		} else {
			goal.ToUser = &PartnerInfo{ID: goal.ToUserID, DisplayName: displayName, PhotoURL: photoURL}
		}
		goals = append(goals, &goal)
	}
	return goals, rows.Err()
}

func (r *postgresRepository) ActiveAndCompleted(ctx context.Context, userID int64) ([]*FamilyGoal, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT g.id, g.from_user_id, g.to_user_id, g.trait, g.status, g.start_date, g.end_date,
			COALESCE(g.tip, '') AS tip, g.created_at,
			fu.display_name, fu.photo_url,
			tu.display_name, tu.photo_url
		FROM family_goals g
		JOIN users fu ON fu.id = g.from_user_id
		JOIN users tu ON tu.id = g.to_user_id
		WHERE (g.from_user_id = $1 OR g.to_user_id = $1)
			AND g.status IN ('active', 'completed')
		ORDER BY g.start_date DESC NULLS LAST`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}
	defer rows.Close()

	var goals []*FamilyGoal
	for rows.Next() {
		var goal FamilyGoal
		var fromName, fromPhoto, toName, toPhoto string
		err := rows.Scan(
			&goal.ID, &goal.FromUserID, &goal.ToUserID, &goal.Trait, &goal.Status,
			&goal.StartDate, &goal.EndDate, &goal.Tip, &goal.CreatedAt,
			&fromName, &fromPhoto, &toName, &toPhoto,
		)
		if err != nil {
			return nil, err
		}
		goal.FromUser = &PartnerInfo{ID: goal.FromUserID, DisplayName: fromName, PhotoURL: fromPhoto}
		goal.ToUser = &PartnerInfo{ID: goal.ToUserID, DisplayName: toName, PhotoURL: toPhoto}
		goals = append(goals, &goal)
	}
	return goals, rows.Err()
}

// internal/feedback/repository.go

package feedback

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository handles feedback data access
type Repository interface {
	Create(ctx context.Context, fb *Feedback) error
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)
	Count(ctx context.Context) (int, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, fb *Feedback) error {
	query := `
		INSERT INTO feedback (user_id, design_rating, intuitiveness_rating,
		                      feature_satisfaction, performance_rating,
		                      recommend_likelihood, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		fb.UserID, fb.DesignRating, fb.IntuitivenessRating,
		fb.FeatureSatisfaction, fb.PerformanceRating,
		fb.RecommendLikelihood, fb.Comments,
	).Scan(&fb.ID, &fb.CreatedAt)
}

func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]*Feedback, error) {
	query := `
		SELECT f.id, f.user_id, f.design_rating, f.intuitiveness_rating,
		       f.feature_satisfaction, f.performance_rating,
		       f.recommend_likelihood, f.comments, f.created_at,
		       u.email AS user_email, u.display_name AS user_display_name
		FROM feedback f
		JOIN users u ON u.id = f.user_id
		ORDER BY f.created_at DESC
		LIMIT $1 OFFSET $2`

	var items []*Feedback
	if err := r.db.SelectContext(ctx, &items, query, limit, offset); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM feedback`)
	return count, err
}

// internal/feedback/models.go

package feedback

import "time"

// Feedback is one user's review of the app itself. Ratings are 1-5.
type Feedback struct {
	ID                  int64     `db:"id" json:"id"`
	UserID              int64     `db:"user_id" json:"user_id"`
	DesignRating        int       `db:"design_rating" json:"design_rating"`
	IntuitivenessRating int       `db:"intuitiveness_rating" json:"intuitiveness_rating"`
	FeatureSatisfaction int       `db:"feature_satisfaction" json:"feature_satisfaction"`
	PerformanceRating   int       `db:"performance_rating" json:"performance_rating"`
	RecommendLikelihood int       `db:"recommend_likelihood" json:"recommend_likelihood"`
	Comments            string    `db:"comments" json:"comments"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`

	// Joined submitter info for the admin listing
	UserEmail       string `db:"user_email" json:"user_email,omitempty"`
	UserDisplayName string `db:"user_display_name" json:"user_display_name,omitempty"`
}

// SubmitFeedbackRequest carries an app feedback submission
type SubmitFeedbackRequest struct {
	DesignRating        int    `json:"design_rating" validate:"required,min=1,max=5"`
	IntuitivenessRating int    `json:"intuitiveness_rating" validate:"required,min=1,max=5"`
	FeatureSatisfaction int    `json:"feature_satisfaction" validate:"required,min=1,max=5"`
	PerformanceRating   int    `json:"performance_rating" validate:"required,min=1,max=5"`
	RecommendLikelihood int    `json:"recommend_likelihood" validate:"required,min=1,max=5"`
	Comments            string `json:"comments" validate:"required,min=1,max=2000"`
}

// internal/ratings/models.go

package ratings

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/circlescore/circlescore-backend/internal/circles"
)

// Scores maps trait names to 1-10 integer scores. Stored as JSONB.
type Scores map[string]int

func (s Scores) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *Scores) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type for Scores: %T", value)
	}
	return json.Unmarshal(b, s)
}

// Rating is one rater's anonymous trait scores for a circle member.
// At most one row exists per (rater, ratee, circle name); resubmitting
// overwrites the previous scores.
type Rating struct {
	ID         int64        `db:"id" json:"id"`
	FromUserID int64        `db:"from_user_id" json:"-"`
	ToUserID   int64        `db:"to_user_id" json:"to_user_id"`
	CircleName circles.Name `db:"circle_name" json:"circle_name"`
	Scores     Scores       `db:"scores" json:"scores"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// Reveal request states for an attraction rating
const (
	RevealStatusNone     = "none"
	RevealStatusPending  = "pending"
	RevealStatusAccepted = "accepted"
	RevealStatusDeclined = "declined"
)

// AttractionRating is a premium-feature rating, anonymous by default.
// One row per (rater, ratee) pair.
type AttractionRating struct {
	ID             int64     `db:"id" json:"id"`
	FromUserID     int64     `db:"from_user_id" json:"-"`
	ToUserID       int64     `db:"to_user_id" json:"to_user_id"`
	Scores         Scores    `db:"scores" json:"scores"`
	IsAnonymous    bool      `db:"is_anonymous" json:"is_anonymous"`
	IsOutOfCircles bool      `db:"is_out_of_circles" json:"is_out_of_circles"`
	RevealStatus   string    `db:"reveal_status" json:"reveal_status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	// Joined rater info, only populated once the rating is no longer
	// anonymous.
	FromUser *RaterInfo `json:"from_user,omitempty"`
}

// RaterInfo is the minimal identity attached to a revealed rating
type RaterInfo struct {
	ID          int64  `db:"id" json:"id"`
	DisplayName string `db:"display_name" json:"display_name"`
	PhotoURL    string `db:"photo_url" json:"photo_url"`
}

// MemberInfo is the profile card shown for circle members
type MemberInfo struct {
	ID          int64  `db:"id" json:"id"`
	DisplayName string `db:"display_name" json:"display_name"`
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
	PhotoURL    string `db:"photo_url" json:"photo_url"`
}

// TraitScore is an aggregated per-trait average
type TraitScore struct {
	Name         string  `json:"name"`
	AverageScore float64 `json:"average_score"`
}

// RatingCycle is one month's average of all scores a user received in a
// circle.
type RatingCycle struct {
	Date         time.Time `json:"date"`
	AverageScore float64   `json:"average_score"`
}

// AttractionTraits is the fixed vocabulary for attraction ratings.
var AttractionTraits = []string{"Charming", "Witty", "Passionate", "Good-looking", "Authenticity"}

// AttractionTraitDefinitions describes each attraction trait for the UI.
var AttractionTraitDefinitions = map[string]string{
	"Charming":     "Has a captivating and delightful personality.",
	"Witty":        "Shows quick and inventive verbal humor.",
	"Passionate":   "Expresses strong feelings or beliefs with intensity.",
	"Good-looking": "Is physically attractive.",
	"Authenticity": "Is genuine and true to themselves.",
}

func isAttractionTrait(name string) bool {
	for _, t := range AttractionTraits {
		if t == name {
			return true
		}
	}
	return false
}

// SubmitRatingRequest is the circle rating payload
type SubmitRatingRequest struct {
	ToUserID   int64          `json:"to_user_id" validate:"required"`
	CircleName circles.Name   `json:"circle_name" validate:"required"`
	Scores     map[string]int `json:"scores" validate:"required,min=1"`
}

// SubmitAttractionRequest is the attraction rating payload. RevealIdentity
// is only honored for premium raters.
type SubmitAttractionRequest struct {
	ToUserID       int64          `json:"to_user_id" validate:"required"`
	Scores         map[string]int `json:"scores" validate:"required,min=1"`
	RevealIdentity bool           `json:"reveal_identity"`
}

// CircleOverview is the dashboard view of one owned circle. When the
// member count is below the anonymity floor, TraitScores are zeroed and
// MembersNeeded says how many more connections unlock them.
type CircleOverview struct {
	ID            int64        `json:"id"`
	Name          circles.Name `json:"name"`
	Members       []MemberInfo `json:"members"`
	TraitScores   []TraitScore `json:"trait_scores"`
	Gated         bool         `json:"gated"`
	MembersNeeded int          `json:"members_needed,omitempty"`
}

// CircleDetail extends the overview with rating history
type CircleDetail struct {
	CircleOverview
	HistoricalRatings []RatingCycle        `json:"historical_ratings"`
	MyRatings         map[int64]time.Time  `json:"my_ratings"`
	TraitDefinitions  map[string]string    `json:"trait_definitions"`
}

// AttractionSummary is the received-attraction view
type AttractionSummary struct {
	Scores  []TraitScore        `json:"scores"`
	Ratings []*AttractionRating `json:"ratings"`
}

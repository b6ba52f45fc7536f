// internal/goals/models.go

package goals

import "time"

// Goal states. A pending goal is a suggestion; accepting it makes it
// active with a 30-day window, after which the sweeper marks it
// completed.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusDeclined  = "declined"
	StatusCompleted = "completed"
)

// FamilyGoal is a shared improvement goal between two family members
type FamilyGoal struct {
	ID         int64      `db:"id" json:"id"`
	FromUserID int64      `db:"from_user_id" json:"from_user_id"`
	ToUserID   int64      `db:"to_user_id" json:"to_user_id"`
	Trait      string     `db:"trait" json:"trait"`
	Status     string     `db:"status" json:"status"`
	StartDate  *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate    *time.Time `db:"end_date" json:"end_date,omitempty"`
	Tip        string     `db:"tip" json:"tip,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`

	// Joined user info
	FromUser *PartnerInfo `json:"from_user,omitempty"`
	ToUser   *PartnerInfo `json:"to_user,omitempty"`
}

// PartnerInfo identifies the other person on a goal
type PartnerInfo struct {
	ID          int64  `db:"id" json:"id"`
	DisplayName string `db:"display_name" json:"display_name"`
	PhotoURL    string `db:"photo_url" json:"photo_url"`
}

// GoalTraits is the fixed vocabulary for family goals.
var GoalTraits = []string{"Patience", "Better Listening", "Being Present", "Showing Appreciation"}

func isGoalTrait(name string) bool {
	for _, t := range GoalTraits {
		if t == name {
			return true
		}
	}
	return false
}

// SendGoalRequest suggests a goal to a family member
type SendGoalRequest struct {
	ToUserID int64  `json:"to_user_id" validate:"required"`
	Trait    string `json:"trait" validate:"required"`
}

// RespondGoalRequest accepts or declines a suggested goal
type RespondGoalRequest struct {
	Status string `json:"status" validate:"required,oneof=active declined"`
}

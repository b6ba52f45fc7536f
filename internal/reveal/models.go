// internal/reveal/models.go

package reveal

import "time"

// Request states. A request is resolved exactly once; decline and accept
// are both terminal.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Request asks the anonymous author of an attraction rating to reveal
// themselves. FromUserID is the ratee who spent a token; ToUserID is the
// rater who decides.
type Request struct {
	ID         int64     `db:"id" json:"id"`
	FromUserID int64     `db:"from_user_id" json:"from_user_id"`
	ToUserID   int64     `db:"to_user_id" json:"-"`
	RatingID   int64     `db:"rating_id" json:"rating_id"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	// Joined requester info for the pending-requests view
	FromUser *RequesterInfo `json:"from_user,omitempty"`
}

// RequesterInfo identifies who is asking for the reveal
type RequesterInfo struct {
	ID          int64  `db:"id" json:"id"`
	DisplayName string `db:"display_name" json:"display_name"`
	PhotoURL    string `db:"photo_url" json:"photo_url"`
}

// CreateRequest is the send-reveal payload
type CreateRequest struct {
	RatingID int64 `json:"rating_id" validate:"required"`
}

// RespondRequest resolves a pending reveal request
type RespondRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

// internal/connections/models.go

package connections

import (
	"time"

	"github.com/circlescore/circlescore-backend/internal/circles"
)

// Invite states
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Invite asks another user (or an email address without an account yet)
// to join one of the sender's circles. Accepting creates a reciprocal
// membership in both users' same-named circles.
type Invite struct {
	ID         int64        `db:"id" json:"id"`
	FromUserID int64        `db:"from_user_id" json:"from_user_id"`
	ToUserID   *int64       `db:"to_user_id" json:"to_user_id,omitempty"`
	ToEmail    string       `db:"to_email" json:"to_email,omitempty"`
	CircleID   int64        `db:"circle_id" json:"circle_id"`
	CircleName circles.Name `db:"circle_name" json:"circle_name"`
	Status     string       `db:"status" json:"status"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`

	// Joined user info
	FromUser *ContactInfo `json:"from_user,omitempty"`
	ToUser   *ContactInfo `json:"to_user,omitempty"`
}

// ContactInfo is the minimal user card attached to invites and
// suggestions
type ContactInfo struct {
	ID          int64  `db:"id" json:"id"`
	DisplayName string `db:"display_name" json:"display_name"`
	PhotoURL    string `db:"photo_url" json:"photo_url"`
}

// SuggestedUser is a second-degree connection: someone in a connection's
// circle of the same type the user already shares with that connection.
type SuggestedUser struct {
	User      ContactInfo  `json:"user"`
	ViaUser   ContactInfo  `json:"via_user"`
	ViaCircle circles.Name `json:"via_circle"`
}

// SendInviteRequest is the invite payload. Either ToUserID or ToEmail
// must be set; ToPhone only controls notification delivery.
type SendInviteRequest struct {
	ToUserID int64  `json:"to_user_id"`
	ToEmail  string `json:"to_email" validate:"omitempty,email"`
	ToPhone  string `json:"to_phone" validate:"omitempty,e164"`
	CircleID int64  `json:"circle_id" validate:"required"`
}

// RemoveConnectionRequest removes a user from one of the caller's
// circles
type RemoveConnectionRequest struct {
	UserID   int64 `json:"user_id" validate:"required"`
	CircleID int64 `json:"circle_id" validate:"required"`
}

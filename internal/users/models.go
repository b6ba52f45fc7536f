package users

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// User is the identity record. The reveal-token balance lives here and is
// only ever mutated through guarded conditional updates.
type User struct {
	ID                   int64       `json:"id" db:"id"`
	Email                string      `json:"email" db:"email"`
	DisplayName          string      `json:"display_name" db:"display_name"`
	DisplayNameLowercase string      `json:"-" db:"display_name_lowercase"`
	FirstName            *string     `json:"first_name,omitempty" db:"first_name"`
	LastName             *string     `json:"last_name,omitempty" db:"last_name"`
	PhotoURL             string      `json:"photo_url" db:"photo_url"`
	IsPremium            bool        `json:"is_premium" db:"is_premium"`
	IsAdmin              bool        `json:"is_admin" db:"is_admin"`
	RevealTokens         int         `json:"reveal_tokens" db:"reveal_tokens"`
	LastTokenReset       *time.Time  `json:"last_token_reset,omitempty" db:"last_token_reset"`
	EcoScores            SelfScores  `json:"eco_scores,omitempty" db:"eco_scores"`
	FamilyScores         SelfScores  `json:"family_scores,omitempty" db:"family_scores"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at" db:"updated_at"`

	// Never serialized
	PasswordHash string `json:"-" db:"password_hash"`
}

// SelfScore is one self-assessed trait value.
type SelfScore struct {
	Name         string  `json:"name"`
	AverageScore float64 `json:"averageScore"`
}

// SelfScores is a JSONB column of self-assessment results.
type SelfScores []SelfScore

// Scan implements the sql.Scanner interface for SelfScores
func (s *SelfScores) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	if bytes, ok := value.([]byte); ok {
		return json.Unmarshal(bytes, s)
	}
	return nil
}

// Value implements the driver.Valuer interface for SelfScores
func (s SelfScores) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// ecoTraits is the fixed self-assessment vocabulary for the eco rating.
var ecoTraits = map[string]string{
	"Energy":      "Awareness and reduction of home energy use.",
	"Waste":       "Efforts to reduce, reuse, and recycle.",
	"Transport":   "Reliance on sustainable transport methods.",
	"Consumption": "Mindful purchasing habits for sustainable products.",
	"Water":       "Conservation of water in daily life.",
}

// EcoTraitNames returns the eco vocabulary in display order.
func EcoTraitNames() []string {
	return []string{"Energy", "Waste", "Transport", "Consumption", "Water"}
}

// familyTraits mirrors the Family circle vocabulary for the self-assessment.
var familyTraits = map[string]bool{
	"Caring": true, "Respectful": true, "Dependable": true, "Loving": true, "Protective": true,
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=2,max=100"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=50"`
	LastName    *string `json:"last_name" validate:"omitempty,max=50"`
}

// SelfAssessmentRequest carries a full self-assessment submission
type SelfAssessmentRequest struct {
	Kind   string             `json:"kind" validate:"required,oneof=eco family"`
	Scores map[string]float64 `json:"scores" validate:"required,min=1"`
}

// SearchRequest is a display-name prefix search
type SearchRequest struct {
	Query string `json:"query" validate:"required,min=1,max=100"`
}

// UserPage is one keyset-paginated page of the admin user listing.
type UserPage struct {
	Users      []*User `json:"users"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

package circles

import "time"

// Name is the closed set of circle types. Every user owns at most one
// circle per name; a mutual connection is membership in each other's
// same-named circle.
type Name string

const (
	Family  Name = "Family"
	Work    Name = "Work"
	Friends Name = "Friends"
	General Name = "General"
)

// AllNames lists the circles provisioned for every new user, in display order.
var AllNames = []Name{Family, Work, Friends, General}

// circleTraits fixes the rating vocabulary per circle name. Unknown trait
// keys are rejected at the boundary, never silently dropped.
var circleTraits = map[Name][]string{
	Family:  {"Caring", "Respectful", "Dependable", "Loving", "Protective"},
	Work:    {"Professional", "Reliable", "Organized", "Collaborative", "Punctual"},
	Friends: {"Loyal", "Honest", "Fun", "Supportive", "Encouraging"},
	General: {"Polite", "Friendly", "Trustworthy", "Open-minded", "Observant"},
}

// TraitDefinitions describes each trait for the rating UI.
var TraitDefinitions = map[string]string{
	// Family
	"Caring":     "Shows kindness and concern for others' well-being and feelings.",
	"Respectful": "Treats others with consideration and values their opinions and boundaries.",
	"Dependable": "Can be relied upon to follow through on commitments and promises.",
	"Loving":     "Expresses affection, warmth, and deep care for family members.",
	"Protective": "Instinctively looks out for the safety and best interests of the family.",
	// Work
	"Professional":  "Maintains a high standard of conduct, ethics, and competence in a work environment.",
	"Reliable":      "Consistently delivers quality work on time and can be counted on by colleagues.",
	"Organized":     "Manages time, tasks, and resources efficiently to achieve goals.",
	"Collaborative": "Works effectively with others, sharing ideas and contributing to a team effort.",
	"Punctual":      "Is consistently on time for meetings, deadlines, and work commitments.",
	// Friends
	"Loyal":       "Stands by their friends through good times and bad; is steadfast and faithful.",
	"Honest":      "Communicates truthfully and openly, even when it's difficult.",
	"Fun":         "Brings energy, humor, and enjoyment to social interactions.",
	"Supportive":  "Offers encouragement and help to friends when they are in need.",
	"Encouraging": "Inspires and gives confidence to others to pursue their goals.",
	// General
	"Polite":      "Uses good manners and shows consideration in interactions with everyone.",
	"Friendly":    "Is approachable, warm, and makes others feel comfortable.",
	"Trustworthy": "Can be confided in and relied upon to be honest and keep promises.",
	"Open-minded": "Is willing to consider new ideas and different perspectives without prejudice.",
	"Observant":   "Pays close attention to details and notices things others might miss.",
}

// IsValidName reports whether name is one of the four circle types.
func IsValidName(name Name) bool {
	_, ok := circleTraits[name]
	return ok
}

// TraitsFor returns the fixed trait vocabulary for a circle name.
func TraitsFor(name Name) []string {
	return circleTraits[name]
}

// HasTrait reports whether trait belongs to the circle's vocabulary.
func HasTrait(name Name, trait string) bool {
	for _, t := range circleTraits[name] {
		if t == trait {
			return true
		}
	}
	return false
}

// IsPrivacyProtected reports whether the circle's aggregates are subject to
// the k-anonymity floor. Family circles are exempt: members already know
// each other well enough that score triangulation adds nothing.
func IsPrivacyProtected(name Name) bool {
	return name == Work || name == Friends || name == General
}

// Circle is an owned, directional grouping of connected users.
type Circle struct {
	ID        int64     `json:"id" db:"id"`
	OwnerID   int64     `json:"owner_id" db:"owner_id"`
	Name      Name      `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Joined fields
	MemberIDs []int64 `json:"member_ids,omitempty"`
}

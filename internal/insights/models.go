// internal/insights/models.go

package insights

// Trait is one named score fed to the summarizer. Scores of zero mean
// no data and are filtered before any model call.
type Trait struct {
	Name         string  `json:"name"`
	AverageScore float64 `json:"average_score"`
}

// Summary is the structured consultation returned for a set of trait
// scores.
type Summary struct {
	Summary       string   `json:"summary"`
	Strengths     []string `json:"strengths"`
	Opportunities []string `json:"opportunities"`
}

// GoalTip is a single-sentence suggestion for practicing a goal trait.
type GoalTip struct {
	Trait string `json:"trait"`
	Tip   string `json:"tip"`
}

// ecoContext is the context name for the eco self-assessment. It gets
// coach wording distinct from the peer-feedback circles.
const ecoContext = "Eco Rating"

func ratedOnly(traits []Trait) []Trait {
	rated := make([]Trait, 0, len(traits))
	for _, t := range traits {
		if t.AverageScore > 0 {
			rated = append(rated, t)
		}
	}
	return rated
}

// emptySummary is the canned response when no trait has any data yet.
func emptySummary(contextName string) *Summary {
	if contextName == ecoContext {
		return &Summary{
			Summary:       "You haven't completed your Eco Rating assessment yet. Once you do, an analysis of your environmental habits will appear here.",
			Strengths:     []string{},
			Opportunities: []string{},
		}
	}
	return &Summary{
		Summary:       "There are no ratings yet for the " + contextName + " circle. Once you receive feedback from members, an analysis will appear here.",
		Strengths:     []string{},
		Opportunities: []string{},
	}
}

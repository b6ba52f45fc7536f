// internal/ratings/aggregation.go
// Pure aggregation over received ratings. Gating decisions live in the
// service; these functions only do the arithmetic.

package ratings

import (
	"math"
	"sort"
	"time"
)

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// AverageByTrait computes the per-trait average across all received
// ratings, rounded to one decimal. Traits nobody has scored come back
// as 0 so the UI always renders the full vocabulary.
func AverageByTrait(traits []string, received []*Rating) []TraitScore {
	result := make([]TraitScore, 0, len(traits))
	for _, trait := range traits {
		sum := 0
		count := 0
		for _, rating := range received {
			if score, ok := rating.Scores[trait]; ok {
				sum += score
				count++
			}
		}
		avg := 0.0
		if count > 0 {
			avg = round1(float64(sum) / float64(count))
		}
		result = append(result, TraitScore{Name: trait, AverageScore: avg})
	}
	return result
}

// ZeroScores returns the trait vocabulary with all averages zeroed, used
// when the anonymity floor hides real aggregates.
func ZeroScores(traits []string) []TraitScore {
	result := make([]TraitScore, 0, len(traits))
	for _, trait := range traits {
		result = append(result, TraitScore{Name: trait})
	}
	return result
}

// AverageAttraction computes per-trait averages over received attraction
// ratings.
func AverageAttraction(received []*AttractionRating) []TraitScore {
	result := make([]TraitScore, 0, len(AttractionTraits))
	for _, trait := range AttractionTraits {
		sum := 0
		count := 0
		for _, rating := range received {
			if score, ok := rating.Scores[trait]; ok {
				sum += score
				count++
			}
		}
		avg := 0.0
		if count > 0 {
			avg = round1(float64(sum) / float64(count))
		}
		result = append(result, TraitScore{Name: trait, AverageScore: avg})
	}
	return result
}

// HistoricalCycles buckets received ratings by calendar month of their
// creation. Each rating contributes the mean of its trait scores; the
// cycle value is the average of those means. Cycles come back in
// ascending date order.
func HistoricalCycles(received []*Rating) []RatingCycle {
	byMonth := make(map[time.Time][]float64)
	for _, rating := range received {
		if len(rating.Scores) == 0 {
			continue
		}
		sum := 0
		for _, score := range rating.Scores {
			sum += score
		}
		mean := float64(sum) / float64(len(rating.Scores))

		created := rating.CreatedAt.UTC()
		month := time.Date(created.Year(), created.Month(), 1, 0, 0, 0, 0, time.UTC)
		byMonth[month] = append(byMonth[month], mean)
	}

	cycles := make([]RatingCycle, 0, len(byMonth))
	for month, means := range byMonth {
		sum := 0.0
		for _, m := range means {
			sum += m
		}
		cycles = append(cycles, RatingCycle{
			Date:         month,
			AverageScore: round1(sum / float64(len(means))),
		})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Date.Before(cycles[j].Date)
	})
	return cycles
}

package ratings

import (
	"testing"
	"time"
)

func TestAverageByTrait(t *testing.T) {
	traits := []string{"Caring", "Loving"}
	received := []*Rating{
		{Scores: Scores{"Caring": 6, "Loving": 10}},
		{Scores: Scores{"Caring": 8}},
	}

	result := AverageByTrait(traits, received)
	if len(result) != 2 {
		t.Fatalf("expected 2 trait scores, got %d", len(result))
	}
	if result[0].Name != "Caring" || result[0].AverageScore != 7.0 {
		t.Errorf("Caring: expected 7.0, got %v", result[0].AverageScore)
	}
	if result[1].Name != "Loving" || result[1].AverageScore != 10.0 {
		t.Errorf("Loving: expected 10.0, got %v", result[1].AverageScore)
	}
}

func TestAverageByTraitUnscoredTraitIsZero(t *testing.T) {
	result := AverageByTrait([]string{"Caring"}, nil)
	if len(result) != 1 || result[0].AverageScore != 0 {
		t.Errorf("expected zero average for unscored trait, got %+v", result)
	}
}

func TestAverageByTraitRounding(t *testing.T) {
	received := []*Rating{
		{Scores: Scores{"Caring": 7}},
		{Scores: Scores{"Caring": 7}},
		{Scores: Scores{"Caring": 8}},
	}
	result := AverageByTrait([]string{"Caring"}, received)
	// 22/3 = 7.333..., rounds to 7.3
	if result[0].AverageScore != 7.3 {
		t.Errorf("expected 7.3, got %v", result[0].AverageScore)
	}
}

func TestZeroScores(t *testing.T) {
	result := ZeroScores([]string{"Polite", "Friendly"})
	for _, ts := range result {
		if ts.AverageScore != 0 {
			t.Errorf("expected zeroed score for %s, got %v", ts.Name, ts.AverageScore)
		}
	}
}

func TestHistoricalCyclesMonthBuckets(t *testing.T) {
	jan := time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 12, 9, 0, 0, 0, time.UTC)

	received := []*Rating{
		// Per-rating means: 5 and 9, so January averages 7.0.
		{Scores: Scores{"Caring": 4, "Loving": 6}, CreatedAt: jan},
		{Scores: Scores{"Caring": 9}, CreatedAt: jan.Add(48 * time.Hour)},
		{Scores: Scores{"Caring": 7}, CreatedAt: feb},
	}

	cycles := HistoricalCycles(received)
	if len(cycles) != 2 {
		t.Fatalf("expected 2 month buckets, got %d", len(cycles))
	}

	if !cycles[0].Date.Before(cycles[1].Date) {
		t.Error("cycles should be sorted ascending by month")
	}
	if cycles[0].AverageScore != 7.0 {
		t.Errorf("January: expected 7.0, got %v", cycles[0].AverageScore)
	}
	if cycles[1].AverageScore != 7.0 {
		t.Errorf("February: expected 7.0, got %v", cycles[1].AverageScore)
	}
}

func TestHistoricalCyclesEmpty(t *testing.T) {
	if cycles := HistoricalCycles(nil); len(cycles) != 0 {
		t.Errorf("expected no cycles, got %d", len(cycles))
	}
}

func TestAverageAttraction(t *testing.T) {
	received := []*AttractionRating{
		{Scores: Scores{"Charming": 6, "Witty": 4}},
		{Scores: Scores{"Charming": 8}},
	}

	result := AverageAttraction(received)
	if len(result) != len(AttractionTraits) {
		t.Fatalf("expected %d traits, got %d", len(AttractionTraits), len(result))
	}
	for _, ts := range result {
		switch ts.Name {
		case "Charming":
			if ts.AverageScore != 7.0 {
				t.Errorf("Charming: expected 7.0, got %v", ts.AverageScore)
			}
		case "Witty":
			if ts.AverageScore != 4.0 {
				t.Errorf("Witty: expected 4.0, got %v", ts.AverageScore)
			}
		default:
			if ts.AverageScore != 0 {
				t.Errorf("%s: expected 0, got %v", ts.Name, ts.AverageScore)
			}
		}
	}
}

// internal/insights/service.go
// Trait summary and goal tip generation

package insights

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/circlescore/circlescore-backend/internal/goals"
	"github.com/circlescore/circlescore-backend/internal/ratings"
	"github.com/circlescore/circlescore-backend/internal/users"
)

var (
	ErrInvalidTrait = errors.New("unknown goal trait")
)

// Service produces coach-style consultations from trait scores
type Service interface {
	// CircleSummary summarizes the peer feedback a user received in one
	// of their circles.
	CircleSummary(ctx context.Context, userID, circleID int64) (*Summary, error)

	// EcoSummary summarizes the user's eco self-assessment.
	EcoSummary(ctx context.Context, userID int64) (*Summary, error)

	// TipForGoal generates a practice tip for a family goal trait.
	TipForGoal(ctx context.Context, trait string) (*GoalTip, error)
}

type service struct {
	chat     ChatClient
	model    string
	cache    *redis.Client
	cacheTTL time.Duration
	ratings  ratings.Service
	users    users.Service
}

// NewService creates the insights service. chat and cache may be nil;
// without a chat client every summary uses the deterministic fallback.
func NewService(chat ChatClient, model string, cache *redis.Client, cacheTTL time.Duration, ratingsService ratings.Service, usersService users.Service) Service {
	return &service{
		chat:     chat,
		model:    model,
		cache:    cache,
		cacheTTL: cacheTTL,
		ratings:  ratingsService,
		users:    usersService,
	}
}

func (s *service) CircleSummary(ctx context.Context, userID, circleID int64) (*Summary, error) {
	detail, err := s.ratings.CircleDetail(ctx, userID, circleID)
	if err != nil {
		return nil, err
	}

	traits := make([]Trait, 0, len(detail.TraitScores))
	for _, t := range detail.TraitScores {
		traits = append(traits, Trait{Name: t.Name, AverageScore: t.AverageScore})
	}
	return s.summarize(ctx, userID, string(detail.Name), traits)
}

func (s *service) EcoSummary(ctx context.Context, userID int64) (*Summary, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]float64, len(user.EcoScores))
	for _, score := range user.EcoScores {
		byName[score.Name] = score.AverageScore
	}

	traits := make([]Trait, 0, 5)
	for _, name := range users.EcoTraitNames() {
		traits = append(traits, Trait{Name: name, AverageScore: byName[name]})
	}
	return s.summarize(ctx, userID, ecoContext, traits)
}

func (s *service) summarize(ctx context.Context, userID int64, contextName string, traits []Trait) (*Summary, error) {
	rated := ratedOnly(traits)
	if len(rated) == 0 {
		recordSummary(contextName, "empty")
		return emptySummary(contextName), nil
	}

	key := s.cacheKey(userID, contextName, rated)
	if cached := s.cachedSummary(ctx, key); cached != nil {
		recordSummary(contextName, "cache")
		return cached, nil
	}

	if s.chat == nil {
		recordSummary(contextName, "fallback")
		return heuristicSummary(contextName, rated), nil
	}

	system, user := summaryPrompt(contextName, rated)
	var out Summary
	if err := completeJSON(ctx, s.chat, s.model, system, user, &out); err != nil {
		log.Printf("Trait summary generation failed for user %d (%s): %v", userID, contextName, err)
		recordSummary(contextName, "fallback")
		return heuristicSummary(contextName, rated), nil
	}

	recordSummary(contextName, "model")
	s.storeSummary(ctx, key, &out)
	return &out, nil
}

func (s *service) TipForGoal(ctx context.Context, trait string) (*GoalTip, error) {
	valid := false
	for _, t := range goals.GoalTraits {
		if t == trait {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidTrait
	}

	if s.chat != nil {
		var out GoalTip
		system := fmt.Sprintf(goalTipPrompt, trait)
		if err := completeJSON(ctx, s.chat, s.model, system, "Generate the tip.", &out); err == nil && out.Tip != "" {
			out.Trait = trait
			return &out, nil
		} else if err != nil {
			log.Printf("Goal tip generation failed for trait %q: %v", trait, err)
		}
	}

	return &GoalTip{Trait: trait, Tip: goalTipFallbacks[trait]}, nil
}

// cacheKey hashes the scores so a new rating invalidates the cached
// summary naturally.
func (s *service) cacheKey(userID int64, contextName string, traits []Trait) string {
	payload, _ := json.Marshal(traits)
	return fmt.Sprintf("insights:%d:%s:%x", userID, contextName, sha1.Sum(payload))
}

func (s *service) cachedSummary(ctx context.Context, key string) *Summary {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *service) storeSummary(ctx context.Context, key string, summary *Summary) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		log.Printf("Failed to cache trait summary: %v", err)
	}
}

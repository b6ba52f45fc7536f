package insights

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/circlescore/circlescore-backend/internal/ratings"
	"github.com/circlescore/circlescore-backend/internal/users"

	circlespkg "github.com/circlescore/circlescore-backend/internal/circles"
)

// stubChat returns a fixed completion payload.
type stubChat struct {
	content string
	err     error
	calls   int
}

func (s *stubChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

// fakeRatings serves a fixed circle detail.
type fakeRatings struct {
	ratings.Service
	detail *ratings.CircleDetail
	err    error
}

func (f *fakeRatings) CircleDetail(ctx context.Context, userID, circleID int64) (*ratings.CircleDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

// fakeUsers serves a fixed user.
type fakeUsers struct {
	users.Service
	user *users.User
}

func (f *fakeUsers) GetUser(ctx context.Context, userID int64) (*users.User, error) {
	return f.user, nil
}

func workDetail(scores ...ratings.TraitScore) *ratings.CircleDetail {
	d := &ratings.CircleDetail{}
	d.Name = circlespkg.Work
	d.TraitScores = scores
	return d
}

func TestCircleSummaryEmptyFallback(t *testing.T) {
	chat := &stubChat{}
	svc := NewService(chat, "gpt-4o-mini", nil, 0, &fakeRatings{detail: workDetail(
		ratings.TraitScore{Name: "Professional", AverageScore: 0},
	)}, nil)

	summary, err := svc.CircleSummary(context.Background(), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(summary.Summary, "no ratings yet for the Work circle") {
		t.Errorf("unexpected empty-circle wording: %q", summary.Summary)
	}
	if len(summary.Strengths) != 0 || len(summary.Opportunities) != 0 {
		t.Error("empty summary carries no strengths or opportunities")
	}
	if chat.calls != 0 {
		t.Error("no model call may happen without rated traits")
	}
}

func TestEcoSummaryEmptyFallbackWording(t *testing.T) {
	svc := NewService(nil, "", nil, 0, nil, &fakeUsers{user: &users.User{ID: 1}})

	summary, err := svc.EcoSummary(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(summary.Summary, "Eco Rating assessment") {
		t.Errorf("eco fallback must use the self-assessment wording, got %q", summary.Summary)
	}
}

func TestCircleSummaryParsesModelOutput(t *testing.T) {
	chat := &stubChat{content: `{"summary":"Strong peer feedback.","strengths":["Professional"],"opportunities":["Punctual"]}`}
	svc := NewService(chat, "gpt-4o-mini", nil, 0, &fakeRatings{detail: workDetail(
		ratings.TraitScore{Name: "Professional", AverageScore: 9},
		ratings.TraitScore{Name: "Punctual", AverageScore: 4},
	)}, nil)

	summary, err := svc.CircleSummary(context.Background(), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Summary != "Strong peer feedback." {
		t.Errorf("unexpected summary %q", summary.Summary)
	}
	if len(summary.Strengths) != 1 || summary.Strengths[0] != "Professional" {
		t.Errorf("unexpected strengths %v", summary.Strengths)
	}
	if chat.calls != 1 {
		t.Errorf("expected one model call, got %d", chat.calls)
	}
}

func TestCircleSummaryFallsBackOnModelError(t *testing.T) {
	chat := &stubChat{err: errors.New("rate limited")}
	svc := NewService(chat, "gpt-4o-mini", nil, 0, &fakeRatings{detail: workDetail(
		ratings.TraitScore{Name: "Professional", AverageScore: 9},
		ratings.TraitScore{Name: "Punctual", AverageScore: 4},
	)}, nil)

	summary, err := svc.CircleSummary(context.Background(), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(summary.Summary, "Professional") || !strings.Contains(summary.Summary, "Punctual") {
		t.Errorf("heuristic summary should name best and worst traits, got %q", summary.Summary)
	}
}

func TestCircleSummaryNoClientUsesHeuristic(t *testing.T) {
	svc := NewService(nil, "", nil, 0, &fakeRatings{detail: workDetail(
		ratings.TraitScore{Name: "Professional", AverageScore: 9},
		ratings.TraitScore{Name: "Punctual", AverageScore: 4},
	)}, nil)

	summary, err := svc.CircleSummary(context.Background(), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Strengths[0] != "Professional" {
		t.Errorf("expected highest trait as strength, got %v", summary.Strengths)
	}
	if summary.Opportunities[0] != "Punctual" {
		t.Errorf("expected lowest trait as opportunity, got %v", summary.Opportunities)
	}
}

func TestCircleSummaryPropagatesNotFound(t *testing.T) {
	svc := NewService(nil, "", nil, 0, &fakeRatings{err: ratings.ErrCircleNotFound}, nil)
	if _, err := svc.CircleSummary(context.Background(), 1, 9); !errors.Is(err, ratings.ErrCircleNotFound) {
		t.Errorf("expected ErrCircleNotFound, got %v", err)
	}
}

func TestTipForGoal(t *testing.T) {
	chat := &stubChat{content: `{"tip":"Take turns speaking without interrupting."}`}
	svc := NewService(chat, "gpt-4o-mini", nil, 0, nil, nil)

	tip, err := svc.TipForGoal(context.Background(), "Patience")
	if err != nil {
		t.Fatal(err)
	}
	if tip.Tip != "Take turns speaking without interrupting." {
		t.Errorf("unexpected tip %q", tip.Tip)
	}
	if tip.Trait != "Patience" {
		t.Errorf("unexpected trait %q", tip.Trait)
	}
}

func TestTipForGoalFallbackAndValidation(t *testing.T) {
	svc := NewService(nil, "", nil, 0, nil, nil)
	ctx := context.Background()

	tip, err := svc.TipForGoal(ctx, "Better Listening")
	if err != nil {
		t.Fatal(err)
	}
	if tip.Tip == "" {
		t.Error("fallback tip must not be empty")
	}

	if _, err := svc.TipForGoal(ctx, "Juggling"); !errors.Is(err, ErrInvalidTrait) {
		t.Errorf("expected ErrInvalidTrait, got %v", err)
	}
}

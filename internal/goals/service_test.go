package goals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/circlescore/circlescore-backend/internal/circles"
)

type fakeRepo struct {
	goals  map[int64]*FamilyGoal
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{goals: map[int64]*FamilyGoal{}, nextID: 1}
}

func (f *fakeRepo) Create(ctx context.Context, goal *FamilyGoal) error {
	goal.ID = f.nextID
	goal.Status = StatusPending
	goal.CreatedAt = time.Now()
	f.nextID++
	f.goals[goal.ID] = goal
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*FamilyGoal, error) {
	goal, ok := f.goals[id]
	if !ok {
		return nil, ErrGoalNotFound
	}
	copied := *goal
	return &copied, nil
}

func (f *fakeRepo) HasPendingBetween(ctx context.Context, userA, userB int64, trait string) (bool, error) {
	for _, g := range f.goals {
		if g.Status != StatusPending || g.Trait != trait {
			continue
		}
		if (g.FromUserID == userA && g.ToUserID == userB) || (g.FromUserID == userB && g.ToUserID == userA) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Activate(ctx context.Context, goalID int64, start, end time.Time, tip string) error {
	goal := f.goals[goalID]
	if goal.Status != StatusPending {
		return ErrGoalResolved
	}
	goal.Status = StatusActive
	goal.StartDate = &start
	goal.EndDate = &end
	goal.Tip = tip
	return nil
}

func (f *fakeRepo) Decline(ctx context.Context, goalID int64) error {
	goal := f.goals[goalID]
	if goal.Status != StatusPending {
		return ErrGoalResolved
	}
	goal.Status = StatusDeclined
	return nil
}

func (f *fakeRepo) CompleteExpired(ctx context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for _, g := range f.goals {
		if g.Status == StatusActive && g.EndDate != nil && g.EndDate.Before(now) {
			g.Status = StatusCompleted
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) PendingReceived(ctx context.Context, userID int64) ([]*FamilyGoal, error) {
	var out []*FamilyGoal
	for _, g := range f.goals {
		if g.ToUserID == userID && g.Status == StatusPending {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeRepo) PendingSent(ctx context.Context, userID int64) ([]*FamilyGoal, error) {
	var out []*FamilyGoal
	for _, g := range f.goals {
		if g.FromUserID == userID && g.Status == StatusPending {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeRepo) ActiveAndCompleted(ctx context.Context, userID int64) ([]*FamilyGoal, error) {
	var out []*FamilyGoal
	for _, g := range f.goals {
		if (g.FromUserID == userID || g.ToUserID == userID) &&
			(g.Status == StatusActive || g.Status == StatusCompleted) {
			out = append(out, g)
		}
	}
	return out, nil
}

// fakeFamily treats a fixed member list as user 1's Family circle.
type fakeFamily struct {
	circles.Service
	members map[int64]bool
}

func (f *fakeFamily) IsMemberOfOwnedCircle(ctx context.Context, ownerID int64, name circles.Name, userID int64) (bool, error) {
	return name == circles.Family && f.members[userID], nil
}

func newService(repo *fakeRepo) Service {
	return NewService(repo, &fakeFamily{members: map[int64]bool{2: true}}, 30)
}

func TestSendGoal(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	goal, err := svc.SendGoal(context.Background(), 1, &SendGoalRequest{ToUserID: 2, Trait: "Patience"})
	if err != nil {
		t.Fatal(err)
	}
	if goal.Status != StatusPending {
		t.Errorf("expected pending, got %s", goal.Status)
	}
	if goal.StartDate != nil || goal.EndDate != nil {
		t.Error("pending goal must not have a window yet")
	}
}

func TestSendGoalValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	if _, err := svc.SendGoal(ctx, 1, &SendGoalRequest{ToUserID: 1, Trait: "Patience"}); !errors.Is(err, ErrSelfGoal) {
		t.Errorf("expected ErrSelfGoal, got %v", err)
	}
	if _, err := svc.SendGoal(ctx, 1, &SendGoalRequest{ToUserID: 2, Trait: "Telepathy"}); !errors.Is(err, ErrInvalidTrait) {
		t.Errorf("expected ErrInvalidTrait, got %v", err)
	}
	if _, err := svc.SendGoal(ctx, 1, &SendGoalRequest{ToUserID: 3, Trait: "Patience"}); !errors.Is(err, ErrNotFamily) {
		t.Errorf("expected ErrNotFamily, got %v", err)
	}
}

func TestSendGoalSymmetricDuplicate(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()

	// The duplicate check runs against both directions, so give user 2 a
	// family circle containing user 1 as well.
	family := &fakeFamily{members: map[int64]bool{1: true, 2: true}}
	svc := NewService(repo, family, 30)

	if _, err := svc.SendGoal(ctx, 1, &SendGoalRequest{ToUserID: 2, Trait: "Patience"}); err != nil {
		t.Fatal(err)
	}

	// Same direction.
	if _, err := svc.SendGoal(ctx, 1, &SendGoalRequest{ToUserID: 2, Trait: "Patience"}); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	// Reverse direction with the same trait is also a duplicate.
	if _, err := svc.SendGoal(ctx, 2, &SendGoalRequest{ToUserID: 1, Trait: "Patience"}); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for reverse direction, got %v", err)
	}
	// A different trait between the same pair is fine.
	if _, err := svc.SendGoal(ctx, 1, &SendGoalRequest{ToUserID: 2, Trait: "Being Present"}); err != nil {
		t.Errorf("different trait should be allowed: %v", err)
	}
}

func TestRespondToGoalActivate(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	sent, err := svc.SendGoal(ctx, 1, &SendGoalRequest{ToUserID: 2, Trait: "Patience"})
	if err != nil {
		t.Fatal(err)
	}

	before := time.Now()
	goal, err := svc.RespondToGoal(ctx, 2, sent.ID, StatusActive)
	if err != nil {
		t.Fatal(err)
	}

	if goal.Status != StatusActive {
		t.Errorf("expected active, got %s", goal.Status)
	}
	if goal.Tip != "Work together to achieve this goal!" {
		t.Errorf("unexpected tip %q", goal.Tip)
	}
	if goal.StartDate == nil || goal.EndDate == nil {
		t.Fatal("active goal must have a window")
	}
	window := goal.EndDate.Sub(*goal.StartDate)
	if window != 30*24*time.Hour {
		t.Errorf("expected a 30 day window, got %v", window)
	}
	if goal.StartDate.Before(before.Add(-time.Minute)) {
		t.Error("window should start at acceptance time")
	}
}

func TestRespondToGoalGuards(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	sent, err := svc.SendGoal(ctx, 1, &SendGoalRequest{ToUserID: 2, Trait: "Patience"})
	if err != nil {
		t.Fatal(err)
	}

	// Only the recipient can respond.
	if _, err := svc.RespondToGoal(ctx, 1, sent.ID, StatusActive); !errors.Is(err, ErrNotYourGoal) {
		t.Errorf("expected ErrNotYourGoal, got %v", err)
	}
	if _, err := svc.RespondToGoal(ctx, 2, sent.ID, "done"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}

	if _, err := svc.RespondToGoal(ctx, 2, sent.ID, StatusDeclined); err != nil {
		t.Fatal(err)
	}
	// Declined is terminal.
	if _, err := svc.RespondToGoal(ctx, 2, sent.ID, StatusActive); !errors.Is(err, ErrGoalResolved) {
		t.Errorf("expected ErrGoalResolved, got %v", err)
	}
}

func TestCompleteExpired(t *testing.T) {
	repo := newFakeRepo()
	past := time.Now().Add(-time.Hour)
	start := past.Add(-30 * 24 * time.Hour)
	future := time.Now().Add(time.Hour)

	repo.goals[1] = &FamilyGoal{ID: 1, Status: StatusActive, StartDate: &start, EndDate: &past}
	repo.goals[2] = &FamilyGoal{ID: 2, Status: StatusActive, StartDate: &start, EndDate: &future}

	n, err := repo.CompleteExpired(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 completed goal, got %d", n)
	}
	if repo.goals[1].Status != StatusCompleted {
		t.Error("expired goal should be completed")
	}
	if repo.goals[2].Status != StatusActive {
		t.Error("goal still inside its window must stay active")
	}
}

// internal/goals/service.go

package goals

import (
	"context"
	"errors"
	"time"

	"github.com/circlescore/circlescore-backend/internal/circles"
)

var (
	ErrGoalNotFound  = errors.New("goal not found")
	ErrNotYourGoal   = errors.New("goal was not sent to you")
	ErrGoalResolved  = errors.New("goal already resolved")
	ErrAlreadyExists = errors.New("goal already suggested between these users")
	ErrInvalidTrait  = errors.New("unknown goal trait")
	ErrSelfGoal      = errors.New("cannot suggest a goal to yourself")
	ErrNotFamily     = errors.New("user is not in your family circle")
	ErrInvalidStatus = errors.New("status must be active or declined")
)

const defaultTip = "Work together to achieve this goal!"

// Service interface
type Service interface {
	// SendGoal suggests a goal to a family member. The duplicate check
	// is symmetric: if either side already has the same trait pending
	// with the other, the suggestion is rejected.
	SendGoal(ctx context.Context, fromUserID int64, req *SendGoalRequest) (*FamilyGoal, error)
	RespondToGoal(ctx context.Context, userID, goalID int64, status string) (*FamilyGoal, error)

	PendingReceived(ctx context.Context, userID int64) ([]*FamilyGoal, error)
	PendingSent(ctx context.Context, userID int64) ([]*FamilyGoal, error)
	ActiveAndCompleted(ctx context.Context, userID int64) ([]*FamilyGoal, error)
}

type service struct {
	repo         Repository
	circles      circles.Service
	goalDuration time.Duration
}

func NewService(repo Repository, circlesService circles.Service, goalDurationDays int) Service {
	return &service{
		repo:         repo,
		circles:      circlesService,
		goalDuration: time.Duration(goalDurationDays) * 24 * time.Hour,
	}
}

func (s *service) SendGoal(ctx context.Context, fromUserID int64, req *SendGoalRequest) (*FamilyGoal, error) {
	if req.ToUserID == fromUserID {
		return nil, ErrSelfGoal
	}
	if !isGoalTrait(req.Trait) {
		return nil, ErrInvalidTrait
	}

	isFamily, err := s.circles.IsMemberOfOwnedCircle(ctx, fromUserID, circles.Family, req.ToUserID)
	if err != nil {
		return nil, err
	}
	if !isFamily {
		return nil, ErrNotFamily
	}

	exists, err := s.repo.HasPendingBetween(ctx, fromUserID, req.ToUserID, req.Trait)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	goal := &FamilyGoal{
		FromUserID: fromUserID,
		ToUserID:   req.ToUserID,
		Trait:      req.Trait,
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// RespondToGoal accepts or declines a pending goal. Accepting starts the
// goal window immediately.
func (s *service) RespondToGoal(ctx context.Context, userID, goalID int64, status string) (*FamilyGoal, error) {
	goal, err := s.repo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	if goal.ToUserID != userID {
		return nil, ErrNotYourGoal
	}

	switch status {
	case StatusActive:
		start := time.Now()
		end := start.Add(s.goalDuration)
		if err := s.repo.Activate(ctx, goalID, start, end, defaultTip); err != nil {
			return nil, err
		}
		goal.Status = StatusActive
		goal.StartDate = &start
		goal.EndDate = &end
		goal.Tip = defaultTip
	case StatusDeclined:
		if err := s.repo.Decline(ctx, goalID); err != nil {
			return nil, err
		}
		goal.Status = StatusDeclined
	default:
		return nil, ErrInvalidStatus
	}

	return goal, nil
}

func (s *service) PendingReceived(ctx context.Context, userID int64) ([]*FamilyGoal, error) {
	return s.repo.PendingReceived(ctx, userID)
}

func (s *service) PendingSent(ctx context.Context, userID int64) ([]*FamilyGoal, error) {
	return s.repo.PendingSent(ctx, userID)
}

func (s *service) ActiveAndCompleted(ctx context.Context, userID int64) ([]*FamilyGoal, error) {
	return s.repo.ActiveAndCompleted(ctx, userID)
}

package circles

import (
	"context"
	"errors"
)

var (
	ErrCircleNotFound = errors.New("circle not found")
	ErrInvalidName    = errors.New("invalid circle name")
	ErrNotOwner       = errors.New("circle does not belong to this user")
	ErrAlreadyMember  = errors.New("user is already a member of this circle")
)

// Service is the circle registry: the single place the rest of the system
// resolves ownership, membership, and trait vocabularies.
type Service interface {
	FindOrCreate(ctx context.Context, ownerID int64, name Name) (*Circle, error)
	GetOwned(ctx context.Context, ownerID int64) ([]*Circle, error)
	GetOwnedByID(ctx context.Context, circleID, ownerID int64) (*Circle, error)
	AddMember(ctx context.Context, circleID, userID int64) error
	MemberIDs(ctx context.Context, circleID int64) ([]int64, error)
	MemberCount(ctx context.Context, ownerID int64, name Name) (int, error)
	IsMemberOfOwnedCircle(ctx context.Context, ownerID int64, name Name, userID int64) (bool, error)
	IsConnected(ctx context.Context, ownerID, targetID int64) (bool, error)
	CirclesContaining(ctx context.Context, userID int64) ([]*Circle, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) FindOrCreate(ctx context.Context, ownerID int64, name Name) (*Circle, error) {
	if !IsValidName(name) {
		return nil, ErrInvalidName
	}
	return s.repo.FindOrCreate(ctx, ownerID, name)
}

func (s *service) GetOwned(ctx context.Context, ownerID int64) ([]*Circle, error) {
	circles, err := s.repo.GetOwnedByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, circle := range circles {
		ids, err := s.repo.MemberIDs(ctx, circle.ID)
		if err != nil {
			return nil, err
		}
		circle.MemberIDs = ids
	}
	return circles, nil
}

// GetOwnedByID fetches a circle and enforces that only its owner may see it.
func (s *service) GetOwnedByID(ctx context.Context, circleID, ownerID int64) (*Circle, error) {
	circle, err := s.repo.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if circle.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	ids, err := s.repo.MemberIDs(ctx, circle.ID)
	if err != nil {
		return nil, err
	}
	circle.MemberIDs = ids
	return circle, nil
}

func (s *service) AddMember(ctx context.Context, circleID, userID int64) error {
	added, err := s.repo.AddMember(ctx, circleID, userID)
	if err != nil {
		return err
	}
	if !added {
		return ErrAlreadyMember
	}
	return nil
}

func (s *service) MemberIDs(ctx context.Context, circleID int64) ([]int64, error) {
	return s.repo.MemberIDs(ctx, circleID)
}

func (s *service) MemberCount(ctx context.Context, ownerID int64, name Name) (int, error) {
	return s.repo.MemberCount(ctx, ownerID, name)
}

func (s *service) IsMemberOfOwnedCircle(ctx context.Context, ownerID int64, name Name, userID int64) (bool, error) {
	return s.repo.IsMemberOfOwnedCircle(ctx, ownerID, name, userID)
}

func (s *service) IsConnected(ctx context.Context, ownerID, targetID int64) (bool, error) {
	return s.repo.IsConnected(ctx, ownerID, targetID)
}

func (s *service) CirclesContaining(ctx context.Context, userID int64) ([]*Circle, error) {
	return s.repo.CirclesContaining(ctx, userID)
}

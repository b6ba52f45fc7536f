// internal/reveal/service.go

package reveal

import (
	"context"
	"errors"
)

var (
	ErrRatingNotFound     = errors.New("attraction rating not found")
	ErrRequestNotFound    = errors.New("reveal request not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotYourRating      = errors.New("rating was not given to you")
	ErrNotYourRequest     = errors.New("reveal request was not sent to you")
	ErrNotAnonymous       = errors.New("rating is not anonymous")
	ErrAlreadyRequested   = errors.New("reveal already requested for this rating")
	ErrAlreadyResolved    = errors.New("reveal request already resolved")
	ErrInsufficientTokens = errors.New("not enough reveal tokens")
	ErrPremiumRequired    = errors.New("premium subscription required")
	ErrInvalidStatus      = errors.New("status must be accepted or declined")
)

// Service interface
type Service interface {
	// SendRequest spends one token to ask an anonymous rater to reveal
	// themselves. Tokens are a premium allotment, so only premium users
	// can send requests.
	SendRequest(ctx context.Context, requesterID, ratingID int64) (*Request, error)

	// Respond accepts or declines a pending request. Both outcomes are
	// final; a declined request cannot be retried and no token is
	// refunded.
	Respond(ctx context.Context, resolverID, requestID int64, status string) (*Request, error)

	PendingRequests(ctx context.Context, userID int64) ([]*Request, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SendRequest(ctx context.Context, requesterID, ratingID int64) (*Request, error) {
	premium, err := s.repo.IsPremium(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !premium {
		return nil, ErrPremiumRequired
	}

	request, err := s.repo.CreateRequest(ctx, requesterID, ratingID)
	if err != nil {
		return nil, err
	}

	recordRevealRequest()
	return request, nil
}

func (s *service) Respond(ctx context.Context, resolverID, requestID int64, status string) (*Request, error) {
	if status != StatusAccepted && status != StatusDeclined {
		return nil, ErrInvalidStatus
	}

	request, err := s.repo.Resolve(ctx, requestID, resolverID, status)
	if err != nil {
		return nil, err
	}

	recordRevealResolution(status)
	return request, nil
}

func (s *service) PendingRequests(ctx context.Context, userID int64) ([]*Request, error) {
	return s.repo.PendingForUser(ctx, userID)
}

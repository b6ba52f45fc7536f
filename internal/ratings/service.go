// internal/ratings/service.go

package ratings

import (
	"context"
	"errors"

	"github.com/circlescore/circlescore-backend/internal/circles"
)

var (
	ErrInvalidCircle      = errors.New("invalid circle name")
	ErrInvalidTrait       = errors.New("trait not in circle vocabulary")
	ErrScoreOutOfRange    = errors.New("score must be between 1 and 10")
	ErrSelfRating         = errors.New("cannot rate yourself")
	ErrNotInCircle        = errors.New("user is not in your circle")
	ErrInsufficientTokens = errors.New("not enough reveal tokens")
	ErrRaterNotFound      = errors.New("user not found")
	ErrCircleNotFound     = errors.New("circle not found")
)

// Service interface
type Service interface {
	SubmitRating(ctx context.Context, fromUserID int64, req *SubmitRatingRequest) (*Rating, error)
	SubmitAttractionRating(ctx context.Context, fromUserID int64, req *SubmitAttractionRequest) (*AttractionRating, error)

	CircleOverviews(ctx context.Context, userID int64) ([]*CircleOverview, error)
	CircleDetail(ctx context.Context, userID, circleID int64) (*CircleDetail, error)
	ReceivedAttraction(ctx context.Context, userID int64) (*AttractionSummary, error)
}

type service struct {
	repo             Repository
	circles          circles.Service
	privacyThreshold int
}

func NewService(repo Repository, circlesService circles.Service, privacyThreshold int) Service {
	return &service{
		repo:             repo,
		circles:          circlesService,
		privacyThreshold: privacyThreshold,
	}
}

// SubmitRating stores or overwrites the rater's scores for a member of
// one of their circles. The ratee must currently be in the rater's owned
// circle of that name, and every score must use the circle's vocabulary.
func (s *service) SubmitRating(ctx context.Context, fromUserID int64, req *SubmitRatingRequest) (*Rating, error) {
	if !circles.IsValidName(req.CircleName) {
		return nil, ErrInvalidCircle
	}
	if req.ToUserID == fromUserID {
		return nil, ErrSelfRating
	}

	for trait, score := range req.Scores {
		if !circles.HasTrait(req.CircleName, trait) {
			return nil, ErrInvalidTrait
		}
		if score < 1 || score > 10 {
			return nil, ErrScoreOutOfRange
		}
	}

	isMember, err := s.circles.IsMemberOfOwnedCircle(ctx, fromUserID, req.CircleName, req.ToUserID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotInCircle
	}

	rating := &Rating{
		FromUserID: fromUserID,
		ToUserID:   req.ToUserID,
		CircleName: req.CircleName,
		Scores:     Scores(req.Scores),
	}

	if err := s.repo.UpsertRating(ctx, rating); err != nil {
		return nil, err
	}

	recordRating(string(req.CircleName), rating.Scores)
	return rating, nil
}

// SubmitAttractionRating stores or overwrites an attraction rating.
// Rating someone outside the rater's circles costs one reveal token the
// first time; resubmissions are free. The rating stays anonymous unless
// a premium rater explicitly reveals themselves.
func (s *service) SubmitAttractionRating(ctx context.Context, fromUserID int64, req *SubmitAttractionRequest) (*AttractionRating, error) {
	if req.ToUserID == fromUserID {
		return nil, ErrSelfRating
	}

	for trait, score := range req.Scores {
		if !isAttractionTrait(trait) {
			return nil, ErrInvalidTrait
		}
		if score < 1 || score > 10 {
			return nil, ErrScoreOutOfRange
		}
	}

	inCircles, err := s.circles.IsConnected(ctx, fromUserID, req.ToUserID)
	if err != nil {
		return nil, err
	}

	isAnonymous := true
	if req.RevealIdentity {
		premium, err := s.repo.IsPremium(ctx, fromUserID)
		if err != nil {
			return nil, err
		}
		if premium {
			isAnonymous = false
		}
	}

	rating := &AttractionRating{
		FromUserID:     fromUserID,
		ToUserID:       req.ToUserID,
		Scores:         Scores(req.Scores),
		IsAnonymous:    isAnonymous,
		IsOutOfCircles: !inCircles,
	}

	if err := s.repo.UpsertAttraction(ctx, rating); err != nil {
		return nil, err
	}

	recordAttractionRating(rating.IsOutOfCircles)
	return rating, nil
}

// CircleOverviews returns all circles owned by the user with members and
// aggregated trait scores. Privacy-protected circles below the anonymity
// floor report zeroed scores.
func (s *service) CircleOverviews(ctx context.Context, userID int64) ([]*CircleOverview, error) {
	owned, err := s.circles.GetOwned(ctx, userID)
	if err != nil {
		return nil, err
	}

	overviews := make([]*CircleOverview, 0, len(owned))
	for _, circle := range owned {
		overview, err := s.buildOverview(ctx, userID, circle)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, overview)
	}
	return overviews, nil
}

// CircleDetail returns the full view of one owned circle, including the
// monthly rating history. The history is intentionally not subject to
// the anonymity floor: month buckets already blend multiple raters.
func (s *service) CircleDetail(ctx context.Context, userID, circleID int64) (*CircleDetail, error) {
	circle, err := s.circles.GetOwnedByID(ctx, circleID, userID)
	if err != nil {
		if errors.Is(err, circles.ErrCircleNotFound) || errors.Is(err, circles.ErrNotOwner) {
			return nil, ErrCircleNotFound
		}
		return nil, err
	}

	overview, err := s.buildOverview(ctx, userID, circle)
	if err != nil {
		return nil, err
	}

	received, err := s.repo.RatingsReceived(ctx, userID, circle.Name)
	if err != nil {
		return nil, err
	}

	myRatings, err := s.repo.MyRatingTimes(ctx, userID, circle.Name)
	if err != nil {
		return nil, err
	}

	definitions := make(map[string]string, len(circles.TraitsFor(circle.Name)))
	for _, trait := range circles.TraitsFor(circle.Name) {
		definitions[trait] = circles.TraitDefinitions[trait]
	}

	return &CircleDetail{
		CircleOverview:    *overview,
		HistoricalRatings: HistoricalCycles(received),
		MyRatings:         myRatings,
		TraitDefinitions:  definitions,
	}, nil
}

// ReceivedAttraction returns attraction averages plus the individual
// ratings. Rater identity is only attached once a rating is no longer
// anonymous; the repository enforces that.
func (s *service) ReceivedAttraction(ctx context.Context, userID int64) (*AttractionSummary, error) {
	received, err := s.repo.AttractionReceived(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &AttractionSummary{
		Scores:  AverageAttraction(received),
		Ratings: received,
	}, nil
}

func (s *service) buildOverview(ctx context.Context, userID int64, circle *circles.Circle) (*CircleOverview, error) {
	memberIDs, err := s.circles.MemberIDs(ctx, circle.ID)
	if err != nil {
		return nil, err
	}

	// The owner is a member of their own circle but not a card on it.
	otherIDs := make([]int64, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != userID {
			otherIDs = append(otherIDs, id)
		}
	}

	members, err := s.repo.UsersInfo(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	overview := &CircleOverview{
		ID:      circle.ID,
		Name:    circle.Name,
		Members: members,
	}

	traits := circles.TraitsFor(circle.Name)
	if circles.IsPrivacyProtected(circle.Name) && len(memberIDs) < s.privacyThreshold {
		overview.TraitScores = ZeroScores(traits)
		overview.Gated = true
		overview.MembersNeeded = s.privacyThreshold - len(memberIDs)
		recordPrivacyGateHit()
		return overview, nil
	}

	received, err := s.repo.RatingsReceived(ctx, userID, circle.Name)
	if err != nil {
		return nil, err
	}
	overview.TraitScores = AverageByTrait(traits, received)
	return overview, nil
}

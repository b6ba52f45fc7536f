package ratings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/circlescore/circlescore-backend/internal/circles"
)

type fakeRepo struct {
	ratings     []*Rating
	attractions []*AttractionRating
	premium     map[int64]bool
	tokens      map[int64]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{premium: map[int64]bool{}, tokens: map[int64]int{}}
}

func (f *fakeRepo) UpsertRating(ctx context.Context, rating *Rating) error {
	for _, r := range f.ratings {
		if r.FromUserID == rating.FromUserID && r.ToUserID == rating.ToUserID && r.CircleName == rating.CircleName {
			r.Scores = rating.Scores
			r.UpdatedAt = time.Now()
			*rating = *r
			return nil
		}
	}
	rating.ID = int64(len(f.ratings) + 1)
	rating.CreatedAt = time.Now()
	rating.UpdatedAt = rating.CreatedAt
	f.ratings = append(f.ratings, rating)
	return nil
}

func (f *fakeRepo) RatingsReceived(ctx context.Context, toUserID int64, name circles.Name) ([]*Rating, error) {
	var out []*Rating
	for _, r := range f.ratings {
		if r.ToUserID == toUserID && r.CircleName == name {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) MyRatingTimes(ctx context.Context, fromUserID int64, name circles.Name) (map[int64]time.Time, error) {
	out := map[int64]time.Time{}
	for _, r := range f.ratings {
		if r.FromUserID == fromUserID && r.CircleName == name {
			out[r.ToUserID] = r.UpdatedAt
		}
	}
	return out, nil
}

func (f *fakeRepo) UpsertAttraction(ctx context.Context, rating *AttractionRating) error {
	for _, a := range f.attractions {
		if a.FromUserID == rating.FromUserID && a.ToUserID == rating.ToUserID {
			a.Scores = rating.Scores
			a.IsAnonymous = rating.IsAnonymous
			*rating = *a
			return nil
		}
	}
	if rating.IsOutOfCircles {
		if f.tokens[rating.FromUserID] < 1 {
			return ErrInsufficientTokens
		}
		f.tokens[rating.FromUserID]--
	}
	rating.ID = int64(len(f.attractions) + 1)
	rating.RevealStatus = RevealStatusNone
	f.attractions = append(f.attractions, rating)
	return nil
}

func (f *fakeRepo) AttractionReceived(ctx context.Context, toUserID int64) ([]*AttractionRating, error) {
	var out []*AttractionRating
	for _, a := range f.attractions {
		if a.ToUserID == toUserID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) UsersInfo(ctx context.Context, ids []int64) ([]MemberInfo, error) {
	out := make([]MemberInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, MemberInfo{ID: id})
	}
	return out, nil
}

func (f *fakeRepo) IsPremium(ctx context.Context, userID int64) (bool, error) {
	return f.premium[userID], nil
}

// fakeCircles tracks circle ownership and membership in memory.
type fakeCircles struct {
	circles map[int64]*circles.Circle
	members map[int64][]int64
}

func newFakeCircles() *fakeCircles {
	return &fakeCircles{circles: map[int64]*circles.Circle{}, members: map[int64][]int64{}}
}

func (f *fakeCircles) addCircle(id, ownerID int64, name circles.Name, memberIDs ...int64) {
	f.circles[id] = &circles.Circle{ID: id, OwnerID: ownerID, Name: name}
	f.members[id] = append([]int64{ownerID}, memberIDs...)
}

func (f *fakeCircles) FindOrCreate(ctx context.Context, ownerID int64, name circles.Name) (*circles.Circle, error) {
	for _, c := range f.circles {
		if c.OwnerID == ownerID && c.Name == name {
			return c, nil
		}
	}
	id := int64(len(f.circles) + 1)
	f.addCircle(id, ownerID, name)
	return f.circles[id], nil
}

func (f *fakeCircles) GetOwned(ctx context.Context, ownerID int64) ([]*circles.Circle, error) {
	var out []*circles.Circle
	for _, c := range f.circles {
		if c.OwnerID == ownerID {
			c.MemberIDs = f.members[c.ID]
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCircles) GetOwnedByID(ctx context.Context, circleID, ownerID int64) (*circles.Circle, error) {
	c, ok := f.circles[circleID]
	if !ok {
		return nil, circles.ErrCircleNotFound
	}
	if c.OwnerID != ownerID {
		return nil, circles.ErrNotOwner
	}
	return c, nil
}

func (f *fakeCircles) AddMember(ctx context.Context, circleID, userID int64) error {
	f.members[circleID] = append(f.members[circleID], userID)
	return nil
}

func (f *fakeCircles) MemberIDs(ctx context.Context, circleID int64) ([]int64, error) {
	return f.members[circleID], nil
}

func (f *fakeCircles) MemberCount(ctx context.Context, ownerID int64, name circles.Name) (int, error) {
	for _, c := range f.circles {
		if c.OwnerID == ownerID && c.Name == name {
			return len(f.members[c.ID]), nil
		}
	}
	return 0, nil
}

func (f *fakeCircles) IsMemberOfOwnedCircle(ctx context.Context, ownerID int64, name circles.Name, userID int64) (bool, error) {
	for _, c := range f.circles {
		if c.OwnerID == ownerID && c.Name == name {
			for _, id := range f.members[c.ID] {
				if id == userID {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

func (f *fakeCircles) IsConnected(ctx context.Context, ownerID, targetID int64) (bool, error) {
	for _, c := range f.circles {
		if c.OwnerID != ownerID {
			continue
		}
		for _, id := range f.members[c.ID] {
			if id == targetID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeCircles) CirclesContaining(ctx context.Context, userID int64) ([]*circles.Circle, error) {
	var out []*circles.Circle
	for _, c := range f.circles {
		for _, id := range f.members[c.ID] {
			if id == userID {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func TestSubmitRating(t *testing.T) {
	repo := newFakeRepo()
	fc := newFakeCircles()
	fc.addCircle(1, 1, circles.Work, 2)
	svc := NewService(repo, fc, 4)

	rating, err := svc.SubmitRating(context.Background(), 1, &SubmitRatingRequest{
		ToUserID:   2,
		CircleName: circles.Work,
		Scores:     map[string]int{"Professional": 8, "Punctual": 6},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rating.ID == 0 {
		t.Error("expected rating to be stored")
	}
}

func TestSubmitRatingResubmissionOverwrites(t *testing.T) {
	repo := newFakeRepo()
	fc := newFakeCircles()
	fc.addCircle(1, 1, circles.Work, 2)
	svc := NewService(repo, fc, 4)

	ctx := context.Background()
	first, err := svc.SubmitRating(ctx, 1, &SubmitRatingRequest{
		ToUserID: 2, CircleName: circles.Work, Scores: map[string]int{"Professional": 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.SubmitRating(ctx, 1, &SubmitRatingRequest{
		ToUserID: 2, CircleName: circles.Work, Scores: map[string]int{"Professional": 9},
	})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("resubmission should overwrite, got new id %d", second.ID)
	}
	if len(repo.ratings) != 1 {
		t.Errorf("expected 1 stored rating, got %d", len(repo.ratings))
	}
	if repo.ratings[0].Scores["Professional"] != 9 {
		t.Errorf("expected overwritten score 9, got %d", repo.ratings[0].Scores["Professional"])
	}
}

func TestSubmitRatingValidation(t *testing.T) {
	repo := newFakeRepo()
	fc := newFakeCircles()
	fc.addCircle(1, 1, circles.Work, 2)
	svc := NewService(repo, fc, 4)
	ctx := context.Background()

	cases := []struct {
		name string
		from int64
		req  *SubmitRatingRequest
		want error
	}{
		{"invalid circle", 1, &SubmitRatingRequest{ToUserID: 2, CircleName: "Enemies", Scores: map[string]int{"Loyal": 5}}, ErrInvalidCircle},
		{"self rating", 1, &SubmitRatingRequest{ToUserID: 1, CircleName: circles.Work, Scores: map[string]int{"Professional": 5}}, ErrSelfRating},
		{"foreign trait", 1, &SubmitRatingRequest{ToUserID: 2, CircleName: circles.Work, Scores: map[string]int{"Loyal": 5}}, ErrInvalidTrait},
		{"score too high", 1, &SubmitRatingRequest{ToUserID: 2, CircleName: circles.Work, Scores: map[string]int{"Professional": 11}}, ErrScoreOutOfRange},
		{"score too low", 1, &SubmitRatingRequest{ToUserID: 2, CircleName: circles.Work, Scores: map[string]int{"Professional": 0}}, ErrScoreOutOfRange},
		{"not a member", 1, &SubmitRatingRequest{ToUserID: 3, CircleName: circles.Work, Scores: map[string]int{"Professional": 5}}, ErrNotInCircle},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SubmitRating(ctx, tc.from, tc.req); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCircleOverviewGatedBelowThreshold(t *testing.T) {
	repo := newFakeRepo()
	fc := newFakeCircles()
	// Owner plus two members: three total, below the floor of four.
	fc.addCircle(1, 1, circles.Work, 2, 3)
	svc := NewService(repo, fc, 4)

	repo.ratings = append(repo.ratings, &Rating{
		FromUserID: 2, ToUserID: 1, CircleName: circles.Work,
		Scores: Scores{"Professional": 9}, CreatedAt: time.Now(),
	})

	overviews, err := svc.CircleOverviews(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(overviews) != 1 {
		t.Fatalf("expected 1 overview, got %d", len(overviews))
	}

	ov := overviews[0]
	if !ov.Gated {
		t.Error("expected circle to be gated below the anonymity floor")
	}
	if ov.MembersNeeded != 1 {
		t.Errorf("expected 1 more member needed, got %d", ov.MembersNeeded)
	}
	for _, ts := range ov.TraitScores {
		if ts.AverageScore != 0 {
			t.Errorf("gated circle must zero %s, got %v", ts.Name, ts.AverageScore)
		}
	}
}

func TestCircleOverviewUngatedAtThreshold(t *testing.T) {
	repo := newFakeRepo()
	fc := newFakeCircles()
	// Owner plus three members meets the floor of four.
	fc.addCircle(1, 1, circles.Work, 2, 3, 4)
	svc := NewService(repo, fc, 4)

	repo.ratings = append(repo.ratings,
		&Rating{FromUserID: 2, ToUserID: 1, CircleName: circles.Work, Scores: Scores{"Professional": 6}},
		&Rating{FromUserID: 3, ToUserID: 1, CircleName: circles.Work, Scores: Scores{"Professional": 8}},
	)

	overviews, err := svc.CircleOverviews(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	ov := overviews[0]
	if ov.Gated {
		t.Error("circle at the threshold must not be gated")
	}
	for _, ts := range ov.TraitScores {
		if ts.Name == "Professional" && ts.AverageScore != 7.0 {
			t.Errorf("expected 7.0, got %v", ts.AverageScore)
		}
	}
}

func TestFamilyCircleNeverGated(t *testing.T) {
	repo := newFakeRepo()
	fc := newFakeCircles()
	fc.addCircle(1, 1, circles.Family, 2)
	svc := NewService(repo, fc, 4)

	repo.ratings = append(repo.ratings, &Rating{
		FromUserID: 2, ToUserID: 1, CircleName: circles.Family, Scores: Scores{"Caring": 9},
	})

	overviews, err := svc.CircleOverviews(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	ov := overviews[0]
	if ov.Gated {
		t.Error("family circles are exempt from the anonymity floor")
	}
	for _, ts := range ov.TraitScores {
		if ts.Name == "Caring" && ts.AverageScore != 9.0 {
			t.Errorf("expected 9.0, got %v", ts.AverageScore)
		}
	}
}

func TestSubmitAttractionRatingAnonymity(t *testing.T) {
	repo := newFakeRepo()
	fc := newFakeCircles()
	fc.addCircle(1, 1, circles.Friends, 2)
	svc := NewService(repo, fc, 4)
	ctx := context.Background()

	// Non-premium rater asking to reveal stays anonymous.
	rating, err := svc.SubmitAttractionRating(ctx, 1, &SubmitAttractionRequest{
		ToUserID: 2, Scores: map[string]int{"Charming": 8}, RevealIdentity: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !rating.IsAnonymous {
		t.Error("non-premium rater must stay anonymous")
	}

	// Premium rater revealing identity is not anonymous.
	repo2 := newFakeRepo()
	repo2.premium[1] = true
	svc2 := NewService(repo2, fc, 4)
	rating, err = svc2.SubmitAttractionRating(ctx, 1, &SubmitAttractionRequest{
		ToUserID: 2, Scores: map[string]int{"Charming": 8}, RevealIdentity: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if rating.IsAnonymous {
		t.Error("premium rater revealing identity must not be anonymous")
	}
}

func TestSubmitAttractionRatingOutOfCirclesToken(t *testing.T) {
	repo := newFakeRepo()
	fc := newFakeCircles()
	fc.addCircle(1, 1, circles.Friends, 2)
	svc := NewService(repo, fc, 4)
	ctx := context.Background()

	// User 3 is not connected: requires a token.
	req := &SubmitAttractionRequest{ToUserID: 3, Scores: map[string]int{"Witty": 7}}
	if _, err := svc.SubmitAttractionRating(ctx, 1, req); !errors.Is(err, ErrInsufficientTokens) {
		t.Fatalf("expected ErrInsufficientTokens, got %v", err)
	}

	repo.tokens[1] = 1
	rating, err := svc.SubmitAttractionRating(ctx, 1, req)
	if err != nil {
		t.Fatal(err)
	}
	if !rating.IsOutOfCircles {
		t.Error("expected rating to be flagged out-of-circles")
	}
	if repo.tokens[1] != 0 {
		t.Errorf("expected token debit, balance is %d", repo.tokens[1])
	}

	// Resubmission is free even with a zero balance.
	if _, err := svc.SubmitAttractionRating(ctx, 1, req); err != nil {
		t.Fatalf("resubmission should not be charged: %v", err)
	}

	// In-circle ratings never touch the balance.
	if _, err := svc.SubmitAttractionRating(ctx, 1, &SubmitAttractionRequest{
		ToUserID: 2, Scores: map[string]int{"Witty": 7},
	}); err != nil {
		t.Fatalf("in-circle rating should not need tokens: %v", err)
	}
}

func TestSubmitAttractionRatingKeepsStoredOutOfCirclesFlag(t *testing.T) {
	repo := newFakeRepo()
	fc := newFakeCircles()
	repo.tokens[1] = 1
	svc := NewService(repo, fc, 4)
	ctx := context.Background()

	req := &SubmitAttractionRequest{ToUserID: 3, Scores: map[string]int{"Witty": 7}}
	if _, err := svc.SubmitAttractionRating(ctx, 1, req); err != nil {
		t.Fatal(err)
	}
	if repo.tokens[1] != 0 {
		t.Fatalf("expected token debit, balance is %d", repo.tokens[1])
	}

	// The users connect afterwards; the stored record stays flagged as
	// paid-for and a resubmission neither re-charges nor flips the flag.
	fc.addCircle(1, 1, circles.Friends, 3)
	req.Scores = map[string]int{"Witty": 9}
	rating, err := svc.SubmitAttractionRating(ctx, 1, req)
	if err != nil {
		t.Fatal(err)
	}
	if !rating.IsOutOfCircles {
		t.Error("expected the stored out-of-circles flag, not the recomputed one")
	}
	if repo.tokens[1] != 0 {
		t.Errorf("resubmission must not touch the balance, got %d", repo.tokens[1])
	}
	if len(repo.attractions) != 1 {
		t.Errorf("expected a single stored rating, got %d", len(repo.attractions))
	}
	if got := repo.attractions[0].Scores["Witty"]; got != 9 {
		t.Errorf("scores not overwritten, Witty = %d", got)
	}
}

func TestCircleDetailNotOwned(t *testing.T) {
	repo := newFakeRepo()
	fc := newFakeCircles()
	fc.addCircle(1, 2, circles.Work)
	svc := NewService(repo, fc, 4)

	if _, err := svc.CircleDetail(context.Background(), 1, 1); !errors.Is(err, ErrCircleNotFound) {
		t.Errorf("expected ErrCircleNotFound for foreign circle, got %v", err)
	}
}

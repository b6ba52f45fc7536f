// internal/connections/service.go

package connections

import (
	"context"
	"errors"
	"log"

	"github.com/circlescore/circlescore-backend/internal/circles"
)

var (
	ErrInviteNotFound   = errors.New("invite not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCircleNotFound   = errors.New("circle not found")
	ErrNotYourInvite    = errors.New("invite was not sent to you")
	ErrInviteResolved   = errors.New("invite already resolved")
	ErrAlreadyMember    = errors.New("user is already a member of this circle")
	ErrAlreadyInvited   = errors.New("invite already pending for this user and circle")
	ErrSelfInvite       = errors.New("cannot invite yourself")
	ErrMissingRecipient = errors.New("either to_user_id or to_email is required")
)

// Service interface
type Service interface {
	SendInvite(ctx context.Context, fromUserID int64, req *SendInviteRequest) (*Invite, error)
	AcceptInvite(ctx context.Context, userID, inviteID int64) (*Invite, error)
	DeclineInvite(ctx context.Context, userID, inviteID int64) error
	SentInvites(ctx context.Context, userID int64) ([]*Invite, error)
	ReceivedInvites(ctx context.Context, userID int64) ([]*Invite, error)

	RemoveConnection(ctx context.Context, userID int64, req *RemoveConnectionRequest) error
	SuggestedUsers(ctx context.Context, userID int64) ([]*SuggestedUser, error)
}

type service struct {
	repo            Repository
	circles         circles.Service
	email           EmailProvider
	sms             SMSProvider
	suggestionLimit int
}

func NewService(repo Repository, circlesService circles.Service, email EmailProvider, sms SMSProvider, suggestionLimit int) Service {
	return &service{
		repo:            repo,
		circles:         circlesService,
		email:           email,
		sms:             sms,
		suggestionLimit: suggestionLimit,
	}
}

// SendInvite invites a user into one of the sender's circles. Email
// invites to addresses without an account stay unclaimed until signup.
func (s *service) SendInvite(ctx context.Context, fromUserID int64, req *SendInviteRequest) (*Invite, error) {
	if req.ToUserID == 0 && req.ToEmail == "" {
		return nil, ErrMissingRecipient
	}

	circle, err := s.circles.GetOwnedByID(ctx, req.CircleID, fromUserID)
	if err != nil {
		if errors.Is(err, circles.ErrCircleNotFound) || errors.Is(err, circles.ErrNotOwner) {
			return nil, ErrCircleNotFound
		}
		return nil, err
	}

	var toUserID *int64
	if req.ToUserID != 0 {
		toUserID = &req.ToUserID
	} else {
		// An email may already belong to an account.
		id, err := s.repo.UserIDByEmail(ctx, req.ToEmail)
		if err != nil {
			return nil, err
		}
		if id != 0 {
			toUserID = &id
		}
	}

	if toUserID != nil {
		if *toUserID == fromUserID {
			return nil, ErrSelfInvite
		}
		isMember, err := s.circles.IsMemberOfOwnedCircle(ctx, fromUserID, circle.Name, *toUserID)
		if err != nil {
			return nil, err
		}
		if isMember {
			return nil, ErrAlreadyMember
		}
	}

	pending, err := s.repo.HasPendingInvite(ctx, fromUserID, toUserID, req.ToEmail, circle.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrAlreadyInvited
	}

	invite := &Invite{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		ToEmail:    req.ToEmail,
		CircleID:   circle.ID,
		CircleName: circle.Name,
	}

	if err := s.repo.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}

	s.notify(fromUserID, invite, req.ToPhone)
	return invite, nil
}

// notify delivers the invite out of band, best effort.
func (s *service) notify(fromUserID int64, invite *Invite, toPhone string) {
	if invite.ToEmail == "" && toPhone == "" {
		return
	}

	go func() {
		ctx := context.Background()
		sender, err := s.repo.ContactByID(ctx, fromUserID)
		if err != nil {
			log.Printf("invite notification: %v", err)
			return
		}

		notice := &InviteNotice{
			ToEmail:    invite.ToEmail,
			ToPhone:    toPhone,
			FromName:   sender.DisplayName,
			CircleName: string(invite.CircleName),
		}

		if notice.ToEmail != "" && s.email != nil {
			if err := s.email.SendInviteEmail(ctx, notice); err != nil {
				log.Printf("invite email: %v", err)
			}
		}
		if notice.ToPhone != "" && s.sms != nil {
			if err := s.sms.SendInviteSMS(ctx, notice); err != nil {
				log.Printf("invite SMS: %v", err)
			}
		}
	}()
}

// AcceptInvite creates the reciprocal connection. The invite must be
// pending and addressed to the accepting user, either directly or via
// their email.
func (s *service) AcceptInvite(ctx context.Context, userID, inviteID int64) (*Invite, error) {
	invite, err := s.repo.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}

	if !s.addressedTo(ctx, invite, userID) {
		return nil, ErrNotYourInvite
	}
	if invite.Status != StatusPending {
		return nil, ErrInviteResolved
	}

	if err := s.repo.AcceptInvite(ctx, invite, userID); err != nil {
		return nil, err
	}

	invite.Status = StatusAccepted
	invite.ToUserID = &userID
	return invite, nil
}

func (s *service) DeclineInvite(ctx context.Context, userID, inviteID int64) error {
	invite, err := s.repo.GetInvite(ctx, inviteID)
	if err != nil {
		return err
	}

	if !s.addressedTo(ctx, invite, userID) {
		return ErrNotYourInvite
	}

	return s.repo.DeclineInvite(ctx, inviteID)
}

func (s *service) addressedTo(ctx context.Context, invite *Invite, userID int64) bool {
	if invite.ToUserID != nil {
		return *invite.ToUserID == userID
	}
	if invite.ToEmail == "" {
		return false
	}
	id, err := s.repo.UserIDByEmail(ctx, invite.ToEmail)
	return err == nil && id == userID
}

func (s *service) SentInvites(ctx context.Context, userID int64) ([]*Invite, error) {
	return s.repo.SentInvites(ctx, userID)
}

func (s *service) ReceivedInvites(ctx context.Context, userID int64) ([]*Invite, error) {
	return s.repo.ReceivedInvites(ctx, userID)
}

// RemoveConnection removes the target from the caller's circle and the
// reciprocal membership, along with the ratings exchanged in that circle
// type.
func (s *service) RemoveConnection(ctx context.Context, userID int64, req *RemoveConnectionRequest) error {
	circle, err := s.circles.GetOwnedByID(ctx, req.CircleID, userID)
	if err != nil {
		if errors.Is(err, circles.ErrCircleNotFound) || errors.Is(err, circles.ErrNotOwner) {
			return ErrCircleNotFound
		}
		return err
	}

	return s.repo.RemoveConnection(ctx, userID, req.UserID, circle.Name)
}

func (s *service) SuggestedUsers(ctx context.Context, userID int64) ([]*SuggestedUser, error) {
	return s.repo.Suggestions(ctx, userID, s.suggestionLimit)
}

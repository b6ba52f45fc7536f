package users

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidAssessment = errors.New("invalid self-assessment")
	ErrScoreOutOfRange   = errors.New("score must be between 1 and 10")
)

type Service interface {
	// GetProfile loads a user and applies the lazy monthly token reset.
	GetProfile(ctx context.Context, userID int64) (*User, error)
	GetUser(ctx context.Context, userID int64) (*User, error)
	GetUsers(ctx context.Context, ids []int64) (map[int64]*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*User, error)
	SubmitSelfAssessment(ctx context.Context, userID int64, req *SelfAssessmentRequest) (*User, error)
	UploadAvatar(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error)

	SetPremium(ctx context.Context, userID int64, premium bool) error

	Search(ctx context.Context, callerID int64, query string) ([]*User, error)
	ListUsers(ctx context.Context, cursor string, pageSize int) (*UserPage, error)
}

type service struct {
	repo          Repository
	uploads       UploadService
	monthlyTokens int
	searchLimit   int
	pageSize      int
}

func NewService(repo Repository, uploads UploadService, monthlyTokens, searchLimit, pageSize int) Service {
	return &service{
		repo:          repo,
		uploads:       uploads,
		monthlyTokens: monthlyTokens,
		searchLimit:   searchLimit,
		pageSize:      pageSize,
	}
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Lazy monthly reset: a user who skips months gets one retroactive
	// reset on their next load, never a back-fill per missed month.
	if user.IsPremium {
		reset, err := s.repo.ResetTokensIfDue(ctx, userID, s.monthlyTokens)
		if err != nil {
			return nil, err
		}
		if reset {
			return s.repo.GetByID(ctx, userID)
		}
	}
	return user, nil
}

func (s *service) GetUser(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) GetUsers(ctx context.Context, ids []int64) (map[int64]*User, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *service) SubmitSelfAssessment(ctx context.Context, userID int64, req *SelfAssessmentRequest) (*User, error) {
	scores := make(SelfScores, 0, len(req.Scores))
	for name, score := range req.Scores {
		known := false
		if req.Kind == "family" {
			known = familyTraits[name]
		} else {
			_, known = ecoTraits[name]
		}
		if !known {
			return nil, ErrInvalidAssessment
		}
		if score < 1 || score > 10 {
			return nil, ErrScoreOutOfRange
		}
		scores = append(scores, SelfScore{Name: name, AverageScore: score})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Name < scores[j].Name })

	if err := s.repo.SetSelfScores(ctx, userID, req.Kind, scores); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *service) UploadAvatar(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error) {
	url, err := s.uploads.UploadFile(ctx, file, header, "avatars")
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdatePhotoURL(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *service) SetPremium(ctx context.Context, userID int64, premium bool) error {
	return s.repo.SetPremium(ctx, userID, premium)
}

func (s *service) Search(ctx context.Context, callerID int64, query string) ([]*User, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}
	return s.repo.SearchByNamePrefix(ctx, trimmed, callerID, s.searchLimit)
}

func (s *service) ListUsers(ctx context.Context, cursor string, pageSize int) (*UserPage, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = s.pageSize
	}

	// The cursor carries the last row's (id, name) pair; the name alone
	// is not unique, so a name-only cursor would skip rows that share it.
	afterName := ""
	var afterID int64
	if cursor != "" {
		if decoded, err := base64.URLEncoding.DecodeString(cursor); err == nil {
			if id, name, ok := strings.Cut(string(decoded), ":"); ok {
				if parsed, err := strconv.ParseInt(id, 10, 64); err == nil {
					afterID = parsed
					afterName = name
				}
			}
		}
	}

	found, err := s.repo.ListOrderedByName(ctx, afterName, afterID, pageSize)
	if err != nil {
		return nil, err
	}

	page := &UserPage{Users: found}
	if len(found) == pageSize {
		last := found[len(found)-1]
		token := fmt.Sprintf("%d:%s", last.ID, last.DisplayNameLowercase)
		page.NextCursor = base64.URLEncoding.EncodeToString([]byte(token))
	}
	return page, nil
}

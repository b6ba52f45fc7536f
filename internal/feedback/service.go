// internal/feedback/service.go

package feedback

import (
	"context"
	"strings"
)

// FeedbackPage is one offset-paginated page of the admin listing
type FeedbackPage struct {
	Feedback []*Feedback `json:"feedback"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// Service handles app feedback
type Service interface {
	Submit(ctx context.Context, userID int64, req *SubmitFeedbackRequest) (*Feedback, error)
	List(ctx context.Context, page, pageSize int) (*FeedbackPage, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Submit(ctx context.Context, userID int64, req *SubmitFeedbackRequest) (*Feedback, error) {
	fb := &Feedback{
		UserID:              userID,
		DesignRating:        req.DesignRating,
		IntuitivenessRating: req.IntuitivenessRating,
		FeatureSatisfaction: req.FeatureSatisfaction,
		PerformanceRating:   req.PerformanceRating,
		RecommendLikelihood: req.RecommendLikelihood,
		Comments:            strings.TrimSpace(req.Comments),
	}

	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

func (s *service) List(ctx context.Context, page, pageSize int) (*FeedbackPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &FeedbackPage{
		Feedback: items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

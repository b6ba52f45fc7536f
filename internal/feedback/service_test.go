// internal/feedback/service_test.go

package feedback

import (
	"context"
	"testing"
)

type fakeRepo struct {
	items []*Feedback
}

func (r *fakeRepo) Create(ctx context.Context, fb *Feedback) error {
	fb.ID = int64(len(r.items) + 1)
	r.items = append(r.items, fb)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, limit, offset int) ([]*Feedback, error) {
	if offset >= len(r.items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.items) {
		end = len(r.items)
	}
	return r.items[offset:end], nil
}

func (r *fakeRepo) Count(ctx context.Context) (int, error) {
	return len(r.items), nil
}

func TestSubmitTrimsComments(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	fb, err := svc.Submit(context.Background(), 7, &SubmitFeedbackRequest{
		DesignRating:        4,
		IntuitivenessRating: 5,
		FeatureSatisfaction: 3,
		PerformanceRating:   4,
		RecommendLikelihood: 5,
		Comments:            "  love the circles feature  ",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if fb.Comments != "love the circles feature" {
		t.Errorf("comments = %q, want trimmed", fb.Comments)
	}
	if fb.UserID != 7 {
		t.Errorf("user ID = %d, want 7", fb.UserID)
	}
	if len(repo.items) != 1 {
		t.Errorf("stored %d items, want 1", len(repo.items))
	}
}

func TestListClampsPaging(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := svc.Submit(ctx, int64(i+1), &SubmitFeedbackRequest{
			DesignRating: 3, IntuitivenessRating: 3, FeatureSatisfaction: 3,
			PerformanceRating: 3, RecommendLikelihood: 3, Comments: "ok",
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
		wantItems    int
	}{
		{"defaults", 0, 0, 1, 20, 20},
		{"second page", 2, 20, 2, 20, 5},
		{"oversized page size", 1, 500, 1, 20, 20},
		{"past the end", 9, 10, 9, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.List(ctx, tt.page, tt.pageSize)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if page.Page != tt.wantPage || page.PageSize != tt.wantPageSize {
				t.Errorf("page = %d/%d, want %d/%d", page.Page, page.PageSize, tt.wantPage, tt.wantPageSize)
			}
			if len(page.Feedback) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(page.Feedback), tt.wantItems)
			}
			if page.Total != 25 {
				t.Errorf("total = %d, want 25", page.Total)
			}
		})
	}
}

// internal/goals/expiry.go

package goals

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically completes active goals whose window has passed.
type Sweeper struct {
	repo     Repository
	interval time.Duration
}

func NewSweeper(repo Repository, interval time.Duration) *Sweeper {
	return &Sweeper{repo: repo, interval: interval}
}

// Run blocks until ctx is cancelled. Call it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Sweep once at startup so a restart doesn't delay overdue goals by
	// a full interval.
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	completed, err := s.repo.CompleteExpired(ctx)
	if err != nil {
		log.Printf("goal sweep failed: %v", err)
		return
	}
	if completed > 0 {
		log.Printf("goal sweep completed %d expired goal(s)", completed)
	}
}

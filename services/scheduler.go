// services/scheduler.go
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartMatchScheduler polls for a due cycle. The poll itself is cheap: until
// the active cycle's match boundary arrives, RunCycle refuses with
// ErrCycleNotDue and nothing happens. Operator-triggered runs go through the
// HTTP surface with force=true instead.
func (s *MatchmakingService) StartMatchScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			summary, err := s.RunCycle(ctx, false)
			if errors.Is(err, ErrCycleNotDue) {
				return // boundary not reached yet, try again next poll
			}
			if err != nil {
				log.Printf("[Scheduler] Matchmaking run failed: %v", err)
				return
			}
			if summary.CycleID != "" {
				log.Printf("✅ Completed matchmaking for cycle %s (%d matched)", summary.CycleID, summary.Matched)
			}
		}),
	)
}

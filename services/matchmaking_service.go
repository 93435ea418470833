package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"kindred_server/models"

	"golang.org/x/sync/errgroup"
)

// defaultMatchWorkers bounds the per-respondent fan-out when no explicit
// worker count is configured.
const defaultMatchWorkers = 8

// ErrCycleNotDue is returned when a scheduled (non-forced) run fires before
// the active cycle's match boundary.
var ErrCycleNotDue = errors.New("cycle match boundary has not arrived")

// Collaborator interfaces consumed by the assembler. The concrete Dynamo-
// backed services satisfy them; tests swap in fakes. Lookups return nil (not
// an error) for absent data so missing profiles stay a skip, never a fault.

type ProfileDirectory interface {
	GetProfiles(ctx context.Context, userIDs []string) (map[string]models.UserProfile, error)
	GetPreferences(ctx context.Context, userIDs []string) (map[string]models.MatchPreference, error)
}

type BlockRegistry interface {
	BlockedSetFor(ctx context.Context, userID string) (map[string]struct{}, error)
}

type RespondentLedger interface {
	ListRespondents(ctx context.Context, cycleID string) ([]string, error)
}

type MatchStore interface {
	GetRecord(ctx context.Context, userID, cycleID string) (*models.MatchRecord, error)
	UpsertMatches(ctx context.Context, userID, cycleID string, candidates []string) (*models.MatchRecord, error)
}

type CycleStore interface {
	GetActiveCycle(ctx context.Context) (*models.Cycle, error)
	CompleteCycle(ctx context.Context, cycleID string) error
}

type MatchNotifier interface {
	QueueMatchNotifications(ctx context.Context, cycleID string, matchCounts map[string]int) error
}

// MatchmakingService drives one full weekly run: resolve the active cycle,
// assemble and persist up to three matches per respondent, flip the cycle to
// completed, and hand the notification trigger to the external boundary.
type MatchmakingService struct {
	Cycles    CycleStore
	Responses RespondentLedger
	Profiles  ProfileDirectory
	Blocks    BlockRegistry
	Records   MatchStore
	Notifier  MatchNotifier
	Workers   int
}

// RunSummary is the operator-visible outcome of one invocation.
type RunSummary struct {
	CycleID      string `json:"cycleId"`
	Respondents  int    `json:"respondents"`
	Processed    int    `json:"processed"`
	Skipped      int    `json:"skipped"`
	Matched      int    `json:"matched"`      // users who gained at least one match this run
	MatchesAdded int    `json:"matchesAdded"` // total entries appended across all records
	Notified     int    `json:"notified"`
}

// RunCycle executes one matching run. force bypasses the match-boundary
// check for operator-triggered runs; a scheduled run on a cycle whose
// boundary has not arrived refuses with ErrCycleNotDue. No active cycle and
// zero respondents both end the run early with a zero-count summary — not
// errors. Re-running is safe end to end because the store upsert is
// idempotent.
func (s *MatchmakingService) RunCycle(ctx context.Context, force bool) (*RunSummary, error) {
	cycle, err := s.Cycles.GetActiveCycle(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active cycle: %w", err)
	}
	if cycle == nil {
		log.Println("Matchmaking run: no active cycle, nothing to do")
		return &RunSummary{}, nil
	}

	summary := &RunSummary{CycleID: cycle.CycleID}

	if !force {
		matchAt, err := time.Parse(time.RFC3339, cycle.MatchAt)
		if err != nil {
			return nil, fmt.Errorf("cycle %s has unparseable match boundary %q: %w", cycle.CycleID, cycle.MatchAt, err)
		}
		if time.Now().UTC().Before(matchAt) {
			return nil, fmt.Errorf("%w: cycle %s not due until %s", ErrCycleNotDue, cycle.CycleID, cycle.MatchAt)
		}
	}

	respondents, err := s.Responses.ListRespondents(ctx, cycle.CycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list respondents for cycle %s: %w", cycle.CycleID, err)
	}
	summary.Respondents = len(respondents)

	if len(respondents) == 0 {
		log.Printf("Matchmaking run: cycle %s has no respondents", cycle.CycleID)
		if err := s.Cycles.CompleteCycle(ctx, cycle.CycleID); err != nil {
			return summary, err
		}
		return summary, nil
	}

	profiles, err := s.Profiles.GetProfiles(ctx, respondents)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch respondent profiles: %w", err)
	}
	prefs, err := s.Profiles.GetPreferences(ctx, respondents)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch respondent preferences: %w", err)
	}

	// A respondent without both profile and preference can neither be
	// matched nor offered to others; they leave the pool entirely.
	var pool []string
	for _, userID := range respondents {
		if _, ok := profiles[userID]; !ok {
			log.Printf("Skipping %s: no profile on file", userID)
			summary.Skipped++
			continue
		}
		if _, ok := prefs[userID]; !ok {
			log.Printf("Skipping %s: no match preference on file", userID)
			summary.Skipped++
			continue
		}
		pool = append(pool, userID)
	}

	var mu sync.Mutex
	matchCounts := map[string]int{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount())
	for _, userID := range pool {
		userID := userID
		g.Go(func() error {
			added, total, err := s.assembleForUser(gctx, cycle.CycleID, userID, pool, profiles, prefs)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("Skipping %s: %v", userID, err)
				summary.Skipped++
				return nil // per-user failures never abort the batch
			}
			summary.Processed++
			summary.MatchesAdded += added
			if added > 0 {
				summary.Matched++
				matchCounts[userID] = total
			}
			return nil
		})
	}
	_ = g.Wait() // workers always return nil; outcomes are in the summary

	if err := s.Cycles.CompleteCycle(ctx, cycle.CycleID); err != nil {
		return summary, fmt.Errorf("matching finished but cycle %s could not be completed: %w", cycle.CycleID, err)
	}

	if len(matchCounts) > 0 && s.Notifier != nil {
		if err := s.Notifier.QueueMatchNotifications(ctx, cycle.CycleID, matchCounts); err != nil {
			return summary, fmt.Errorf("cycle %s completed but notification fan-out failed: %w", cycle.CycleID, err)
		}
		summary.Notified = len(matchCounts)
	}

	log.Printf("Matchmaking run for cycle %s: %d respondents, %d processed, %d skipped, %d matched, %d notified",
		cycle.CycleID, summary.Respondents, summary.Processed, summary.Skipped, summary.Matched, summary.Notified)
	return summary, nil
}

type scoredCandidate struct {
	userID string
	score  int
}

// assembleForUser gathers, filters, scores, ranks, and persists matches for
// one respondent. Returns how many entries were appended this run and the
// record's resulting match count.
func (s *MatchmakingService) assembleForUser(
	ctx context.Context,
	cycleID, userID string,
	pool []string,
	profiles map[string]models.UserProfile,
	prefs map[string]models.MatchPreference,
) (added int, total int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while assembling matches: %v", r)
		}
	}()

	record, err := s.Records.GetRecord(ctx, userID, cycleID)
	if err != nil {
		return 0, 0, err
	}

	existingCount := 0
	if record != nil {
		existingCount = len(record.Matches)
		if record.RemainingSlots() == 0 {
			return 0, existingCount, nil // already at the cap; guaranteed no-op
		}
	}

	blocked, err := s.Blocks.BlockedSetFor(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	profile := profiles[userID]
	pref := prefs[userID]
	now := time.Now().UTC()

	var ranked []scoredCandidate
	for _, candidateID := range pool {
		if candidateID == userID {
			continue
		}
		if _, isBlocked := blocked[candidateID]; isBlocked {
			continue
		}
		// Same-cycle repeats are excluded; the same pair may match again in
		// a later cycle.
		if record != nil && record.Contains(candidateID) {
			continue
		}
		if !IsMutuallyEligible(profile, pref, profiles[candidateID], prefs[candidateID], now) {
			continue
		}
		ranked = append(ranked, scoredCandidate{
			userID: candidateID,
			score:  CompatibilityScore(profile, profiles[candidateID], now),
		})
	}

	// Stable sort: equal scores keep candidate-pool iteration order. That
	// order is implementation-defined, not a contract.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	slots := models.MaxMatchesPerCycle - existingCount
	if len(ranked) > slots {
		ranked = ranked[:slots]
	}
	if len(ranked) == 0 {
		return 0, existingCount, nil
	}

	candidates := make([]string, 0, len(ranked))
	for _, c := range ranked {
		candidates = append(candidates, c.userID)
	}

	updated, err := s.Records.UpsertMatches(ctx, userID, cycleID, candidates)
	if err != nil {
		return 0, 0, err
	}
	return len(updated.Matches) - existingCount, len(updated.Matches), nil
}

func (s *MatchmakingService) workerCount() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return defaultMatchWorkers
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kindred_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Fakes for the assembler's collaborators ──

type fakeCycleStore struct {
	mu        sync.Mutex
	cycle     *models.Cycle
	err       error
	completed []string
}

func (f *fakeCycleStore) GetActiveCycle(_ context.Context) (*models.Cycle, error) {
	return f.cycle, f.err
}

func (f *fakeCycleStore) CompleteCycle(_ context.Context, cycleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, cycleID)
	return nil
}

type fakeRespondentLedger struct {
	respondents []string
	err         error
}

func (f *fakeRespondentLedger) ListRespondents(_ context.Context, _ string) ([]string, error) {
	return f.respondents, f.err
}

type fakeProfileDirectory struct {
	profiles map[string]models.UserProfile
	prefs    map[string]models.MatchPreference
}

func (f *fakeProfileDirectory) GetProfiles(_ context.Context, userIDs []string) (map[string]models.UserProfile, error) {
	out := map[string]models.UserProfile{}
	for _, id := range userIDs {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeProfileDirectory) GetPreferences(_ context.Context, userIDs []string) (map[string]models.MatchPreference, error) {
	out := map[string]models.MatchPreference{}
	for _, id := range userIDs {
		if p, ok := f.prefs[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeBlockRegistry struct {
	sets map[string]map[string]struct{}
}

func (f *fakeBlockRegistry) BlockedSetFor(_ context.Context, userID string) (map[string]struct{}, error) {
	if set, ok := f.sets[userID]; ok {
		return set, nil
	}
	return map[string]struct{}{}, nil
}

// fakeMatchStore mirrors the store contract: create-if-absent, capped
// idempotent append, never remove or reorder.
type fakeMatchStore struct {
	mu         sync.Mutex
	records    map[string]*models.MatchRecord
	failUpsert map[string]error
	getErr     map[string]error
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{records: map[string]*models.MatchRecord{}}
}

func (f *fakeMatchStore) seed(record models.MatchRecord) {
	f.records[record.UserID+"|"+record.CycleID] = &record
}

func (f *fakeMatchStore) get(userID, cycleID string) *models.MatchRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[userID+"|"+cycleID]
}

func (f *fakeMatchStore) GetRecord(_ context.Context, userID, cycleID string) (*models.MatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[userID]; err != nil {
		return nil, err
	}
	record, ok := f.records[userID+"|"+cycleID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (f *fakeMatchStore) UpsertMatches(_ context.Context, userID, cycleID string, candidates []string) (*models.MatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failUpsert[userID]; err != nil {
		return nil, err
	}

	key := userID + "|" + cycleID
	existing, ok := f.records[key]
	if !ok {
		record := BuildMatchRecord(userID, cycleID, candidates, time.Now().UTC())
		f.records[key] = &record
		copied := record
		return &copied, nil
	}

	added := AppendableMatches(existing, candidates)
	if len(added) == 0 {
		copied := *existing
		return &copied, nil
	}
	updated := appendMatches(*existing, added)
	f.records[key] = &updated
	copied := updated
	return &copied, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	queued map[string]map[string]int // cycleID -> userID -> matchCount
}

func (f *fakeNotifier) QueueMatchNotifications(_ context.Context, cycleID string, matchCounts map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.queued == nil {
		f.queued = map[string]map[string]int{}
	}
	counts := map[string]int{}
	for userID, count := range matchCounts {
		counts[userID] = count
	}
	f.queued[cycleID] = counts
	return nil
}

// ── Test harness ──

const testCycleID = "2026-W35"

type harness struct {
	service  *MatchmakingService
	cycles   *fakeCycleStore
	ledger   *fakeRespondentLedger
	dir      *fakeProfileDirectory
	blocks   *fakeBlockRegistry
	store    *fakeMatchStore
	notifier *fakeNotifier
}

func newHarness(respondents ...string) *harness {
	dir := &fakeProfileDirectory{
		profiles: map[string]models.UserProfile{},
		prefs:    map[string]models.MatchPreference{},
	}
	for _, id := range respondents {
		dir.profiles[id] = baseProfile(id)
		dir.prefs[id] = models.MatchPreference{UserID: id}
	}

	h := &harness{
		cycles: &fakeCycleStore{cycle: &models.Cycle{
			CycleID:  testCycleID,
			Prompt:   "What made you laugh this week?",
			Status:   models.CycleStatusActive,
			IsActive: true,
			MatchAt:  time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
		}},
		ledger:   &fakeRespondentLedger{respondents: respondents},
		dir:      dir,
		blocks:   &fakeBlockRegistry{sets: map[string]map[string]struct{}{}},
		store:    newFakeMatchStore(),
		notifier: &fakeNotifier{},
	}
	h.service = &MatchmakingService{
		Cycles:    h.cycles,
		Responses: h.ledger,
		Profiles:  dir,
		Blocks:    h.blocks,
		Records:   h.store,
		Notifier:  h.notifier,
		Workers:   2,
	}
	return h
}

func (h *harness) block(a, b string) {
	if h.blocks.sets[a] == nil {
		h.blocks.sets[a] = map[string]struct{}{}
	}
	if h.blocks.sets[b] == nil {
		h.blocks.sets[b] = map[string]struct{}{}
	}
	h.blocks.sets[a][b] = struct{}{}
	h.blocks.sets[b][a] = struct{}{}
}

// ── Scenarios ──

func TestRunCycleMutualMatch(t *testing.T) {
	h := newHarness("x", "y")

	summary, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Respondents)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Matched)
	assert.Equal(t, 0, summary.Skipped)

	xRecord := h.store.get("x", testCycleID)
	yRecord := h.store.get("y", testCycleID)
	require.NotNil(t, xRecord)
	require.NotNil(t, yRecord)
	assert.Equal(t, []string{"y"}, xRecord.Matches)
	assert.Equal(t, []string{"x"}, yRecord.Matches)
	assert.Equal(t, []bool{false}, xRecord.Revealed)

	assert.Equal(t, []string{testCycleID}, h.cycles.completed)
	assert.Equal(t, map[string]int{"x": 1, "y": 1}, h.notifier.queued[testCycleID])
}

func TestRunCycleOneSidedPreferenceExcludesBoth(t *testing.T) {
	h := newHarness("x", "y")

	yProfile := baseProfile("y")
	yProfile.Gender = "man"
	h.dir.profiles["y"] = yProfile
	// x accepts women only; y would have accepted x
	h.dir.prefs["x"] = models.MatchPreference{UserID: "x", Genders: []string{"woman"}}

	summary, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 0, summary.Matched)
	assert.Nil(t, h.store.get("x", testCycleID))
	assert.Nil(t, h.store.get("y", testCycleID))
	assert.Empty(t, h.notifier.queued)
}

func TestRunCycleFullRecordIsUntouched(t *testing.T) {
	h := newHarness("x", "z")
	h.store.seed(models.MatchRecord{
		UserID:   "x",
		CycleID:  testCycleID,
		Matches:  []string{"a", "b", "c"},
		Revealed: []bool{true, false, false},
		Version:  3,
	})

	summary, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	xRecord := h.store.get("x", testCycleID)
	assert.Equal(t, []string{"a", "b", "c"}, xRecord.Matches)
	assert.Equal(t, []bool{true, false, false}, xRecord.Revealed)
	assert.NotContains(t, xRecord.Matches, "z")

	// z still gets x: the cap is per record, not per pair
	zRecord := h.store.get("z", testCycleID)
	require.NotNil(t, zRecord)
	assert.Equal(t, []string{"x"}, zRecord.Matches)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Matched)
}

func TestRunCycleBlockExclusionIsSymmetric(t *testing.T) {
	h := newHarness("x", "y", "z")
	h.block("x", "y")

	_, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	xRecord := h.store.get("x", testCycleID)
	yRecord := h.store.get("y", testCycleID)
	require.NotNil(t, xRecord)
	require.NotNil(t, yRecord)
	assert.NotContains(t, xRecord.Matches, "y")
	assert.NotContains(t, yRecord.Matches, "x")
	assert.Equal(t, []string{"z"}, xRecord.Matches)
	assert.Equal(t, []string{"z"}, yRecord.Matches)
}

func TestRunCyclePartialRecordAppendsUpToCap(t *testing.T) {
	// x already has two matches this cycle; two new candidates appear but
	// only the score-highest fits under the cap.
	h := newHarness("x", "strong", "weak")
	h.store.seed(models.MatchRecord{
		UserID:   "x",
		CycleID:  testCycleID,
		Matches:  []string{"m1", "m2"},
		Revealed: []bool{false, false},
		Version:  2,
	})

	strong := baseProfile("strong")
	weak := baseProfile("weak")
	weak.School = "Redwood" // forfeits the same-school 20 points
	h.dir.profiles["strong"] = strong
	h.dir.profiles["weak"] = weak

	_, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	xRecord := h.store.get("x", testCycleID)
	require.NotNil(t, xRecord)
	assert.Equal(t, []string{"m1", "m2", "strong"}, xRecord.Matches)
	assert.NotContains(t, xRecord.Matches, "weak")
	assert.Len(t, xRecord.Revealed, 3)
}

func TestRunCycleRanksByScoreWithStableTies(t *testing.T) {
	// five respondents so x must truncate to three
	h := newHarness("x", "best", "tie1", "tie2", "tie3")

	best := baseProfile("best")
	h.dir.profiles["best"] = best
	for _, id := range []string{"tie1", "tie2", "tie3"} {
		p := baseProfile(id)
		p.Clubs = nil // identical lower score for all three
		h.dir.profiles[id] = p
	}

	_, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	xRecord := h.store.get("x", testCycleID)
	require.NotNil(t, xRecord)
	// highest score first, then pool order among the tied candidates
	assert.Equal(t, []string{"best", "tie1", "tie2"}, xRecord.Matches)
}

func TestRunCycleSkipsRespondentsWithoutProfileOrPreference(t *testing.T) {
	h := newHarness("x", "y", "z")
	delete(h.dir.profiles, "y")
	delete(h.dir.prefs, "z")

	summary, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Respondents)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, summary.Skipped)

	// x cannot be offered the incomplete users either
	xRecord := h.store.get("x", testCycleID)
	assert.Nil(t, xRecord)
	assert.Nil(t, h.store.get("y", testCycleID))
}

func TestRunCycleIsolatesPerUserFailures(t *testing.T) {
	h := newHarness("x", "y", "z")
	h.store.failUpsert = map[string]error{"y": errors.New("throttled")}

	summary, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)

	// the failing user aborted nothing else
	require.NotNil(t, h.store.get("x", testCycleID))
	require.NotNil(t, h.store.get("z", testCycleID))
	assert.Equal(t, []string{testCycleID}, h.cycles.completed)
}

func TestRunCycleIdempotentRerun(t *testing.T) {
	h := newHarness("x", "y")

	first, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Matched)

	firstRecord := *h.store.get("x", testCycleID)

	// the finalizer completed the cycle; force keeps it runnable for the re-run
	h.cycles.cycle.Status = models.CycleStatusActive
	second, err := h.service.RunCycle(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 2, second.Processed)
	assert.Equal(t, 0, second.Matched)
	assert.Equal(t, 0, second.MatchesAdded)
	assert.Equal(t, firstRecord.Matches, h.store.get("x", testCycleID).Matches)
}

func TestRunCycleAllowsCrossCycleRepeats(t *testing.T) {
	h := newHarness("x", "y")
	// x and y already matched in an earlier cycle
	h.store.seed(models.MatchRecord{
		UserID: "x", CycleID: "2026-W30", Matches: []string{"y"}, Revealed: []bool{true}, Version: 1,
	})
	h.store.seed(models.MatchRecord{
		UserID: "y", CycleID: "2026-W30", Matches: []string{"x"}, Revealed: []bool{true}, Version: 1,
	})

	_, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	// the prior cycle does not block this one
	assert.Equal(t, []string{"y"}, h.store.get("x", testCycleID).Matches)
	assert.Equal(t, []string{"x"}, h.store.get("y", testCycleID).Matches)
}

func TestRunCycleSameCycleRepeatForbidden(t *testing.T) {
	h := newHarness("x", "y", "z")
	// x already holds y for this cycle from an earlier partial run
	h.store.seed(models.MatchRecord{
		UserID: "x", CycleID: testCycleID, Matches: []string{"y"}, Revealed: []bool{false}, Version: 1,
	})

	_, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	xRecord := h.store.get("x", testCycleID)
	assert.Equal(t, []string{"y", "z"}, xRecord.Matches) // y not re-added, z appended
}

func TestRunCycleBoundaryEnforcement(t *testing.T) {
	h := newHarness("x", "y")
	h.cycles.cycle.MatchAt = time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)

	t.Run("scheduled run refuses before the boundary", func(t *testing.T) {
		_, err := h.service.RunCycle(context.Background(), false)
		require.ErrorIs(t, err, ErrCycleNotDue)
		assert.Empty(t, h.cycles.completed)
	})

	t.Run("forced operator run proceeds", func(t *testing.T) {
		summary, err := h.service.RunCycle(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Matched)
		assert.Equal(t, []string{testCycleID}, h.cycles.completed)
	})
}

func TestRunCycleNoActiveCycle(t *testing.T) {
	h := newHarness("x")
	h.cycles.cycle = nil

	summary, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, &RunSummary{}, summary)
	assert.Empty(t, h.cycles.completed)
}

func TestRunCycleZeroRespondents(t *testing.T) {
	h := newHarness()

	summary, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Respondents)
	assert.Equal(t, 0, summary.Matched)
	// the cycle still completes so the weekly cadence moves on
	assert.Equal(t, []string{testCycleID}, h.cycles.completed)
	assert.Empty(t, h.notifier.queued)
}

func TestRunCycleAbortsWhenRespondentListingFails(t *testing.T) {
	h := newHarness("x")
	h.ledger.err = errors.New("table unavailable")

	_, err := h.service.RunCycle(context.Background(), false)
	require.Error(t, err)
	assert.Empty(t, h.cycles.completed)
}

func TestRunCycleRecordInvariants(t *testing.T) {
	// a larger pool to sweep the structural invariants of every record
	ids := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"}
	h := newHarness(ids...)
	h.block("u1", "u4")

	_, err := h.service.RunCycle(context.Background(), false)
	require.NoError(t, err)

	for _, id := range ids {
		record := h.store.get(id, testCycleID)
		require.NotNil(t, record, "user %s should have a record", id)

		assert.LessOrEqual(t, len(record.Matches), models.MaxMatchesPerCycle)
		assert.Len(t, record.Revealed, len(record.Matches))
		assert.NotContains(t, record.Matches, id, "no self-match")

		seen := map[string]struct{}{}
		for _, matched := range record.Matches {
			_, dup := seen[matched]
			assert.False(t, dup, "no duplicate within a record")
			seen[matched] = struct{}{}
		}
	}
}

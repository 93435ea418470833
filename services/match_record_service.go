package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kindred_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// maxUpsertAttempts bounds the optimistic-concurrency retry loop.
const maxUpsertAttempts = 3

// ErrUpsertContention is returned when the conditional write loses the race
// maxUpsertAttempts times in a row for the same (user, cycle) key.
var ErrUpsertContention = errors.New("match record upsert contention")

// ErrMatchNotFound is returned by RevealMatch when the matched user is not in
// the record.
var ErrMatchNotFound = errors.New("matched user not present in record")

// MatchRecordService owns the MatchRecords table. Every write is a single
// atomic conditional unit keyed by (userId, cycleId): creation asserts the
// key does not exist, appends assert the version that was read. Two
// concurrent upserts therefore never push a record past the cap and never
// drop each other's additions.
type MatchRecordService struct {
	Dynamo *DynamoService
}

// GetRecord fetches one record; (nil, nil) when the user has none for the cycle.
func (ms *MatchRecordService) GetRecord(ctx context.Context, userID, cycleID string) (*models.MatchRecord, error) {
	item, err := ms.Dynamo.GetItem(ctx, models.MatchRecordsTable, CompositeKey("userId", userID, "cycleId", cycleID))
	if errors.Is(err, ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record models.MatchRecord
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match record: %w", err)
	}
	return &record, nil
}

// GetHistory returns every match record for a user across cycles.
func (ms *MatchRecordService) GetHistory(ctx context.Context, userID string) ([]models.MatchRecord, error) {
	items, err := ms.Dynamo.QueryItems(ctx, models.MatchRecordsTable,
		"userId = :userId",
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		}, nil, 0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query match history for %s: %w", userID, err)
	}

	var records []models.MatchRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match history: %w", err)
	}
	return records, nil
}

// UpsertMatches creates or appends to the record for (userID, cycleID).
// Candidates already present, the user themself, and anything past the cap
// are dropped; if nothing survives, the current record is returned untouched
// — callers must not treat "no new matches added" as an error. Existing
// entries are never removed or reordered.
func (ms *MatchRecordService) UpsertMatches(ctx context.Context, userID, cycleID string, candidates []string) (*models.MatchRecord, error) {
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		existing, err := ms.GetRecord(ctx, userID, cycleID)
		if err != nil {
			return nil, err
		}

		if existing == nil {
			record := BuildMatchRecord(userID, cycleID, candidates, time.Now().UTC())
			err := ms.Dynamo.PutItemWithCondition(ctx, models.MatchRecordsTable, record,
				"attribute_not_exists(userId) AND attribute_not_exists(cycleId)")
			if IsConditionalCheckFailed(err) {
				continue // lost the create race; re-read and append instead
			}
			if err != nil {
				return nil, fmt.Errorf("failed to create match record for %s/%s: %w", userID, cycleID, err)
			}
			return &record, nil
		}

		added := AppendableMatches(existing, candidates)
		if len(added) == 0 {
			return existing, nil
		}

		updated := appendMatches(*existing, added)
		err = ms.writeAppend(ctx, &updated, existing.Version)
		if IsConditionalCheckFailed(err) {
			continue // concurrent writer bumped the version; re-read
		}
		if err != nil {
			return nil, fmt.Errorf("failed to append matches for %s/%s: %w", userID, cycleID, err)
		}
		return &updated, nil
	}

	return nil, fmt.Errorf("%w for %s/%s", ErrUpsertContention, userID, cycleID)
}

// RevealMatch flips the revealed flag for one matched user. This is the
// user-facing action outside the weekly pipeline; it shares the version
// protocol so it cannot clobber a concurrent append.
func (ms *MatchRecordService) RevealMatch(ctx context.Context, userID, cycleID, matchedUserID string) (*models.MatchRecord, error) {
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		record, err := ms.GetRecord(ctx, userID, cycleID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, fmt.Errorf("no match record for %s/%s", userID, cycleID)
		}

		index := -1
		for i, id := range record.Matches {
			if id == matchedUserID {
				index = i
				break
			}
		}
		if index == -1 {
			return nil, ErrMatchNotFound
		}

		updated := *record
		updated.Revealed = append([]bool(nil), record.Revealed...)
		updated.Revealed[index] = true
		err = ms.writeAppend(ctx, &updated, record.Version)
		if IsConditionalCheckFailed(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to reveal match for %s/%s: %w", userID, cycleID, err)
		}
		return &updated, nil
	}

	return nil, fmt.Errorf("%w for %s/%s", ErrUpsertContention, userID, cycleID)
}

// writeAppend writes the record's mutable arrays, guarded on the version the
// caller read. Bumps Version on the way in.
func (ms *MatchRecordService) writeAppend(ctx context.Context, record *models.MatchRecord, readVersion int) error {
	record.Version = readVersion + 1

	matchesAttr, err := attributevalue.Marshal(record.Matches)
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}
	revealedAttr, err := attributevalue.Marshal(record.Revealed)
	if err != nil {
		return fmt.Errorf("failed to marshal revealed flags: %w", err)
	}

	updateExpression := "SET matches = :matches, revealed = :revealed, version = :newVersion"
	values := map[string]types.AttributeValue{
		":matches":    matchesAttr,
		":revealed":   revealedAttr,
		":newVersion": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", record.Version)},
		":oldVersion": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", readVersion)},
	}

	if record.ChatUnlocked != nil {
		unlockedAttr, err := attributevalue.Marshal(record.ChatUnlocked)
		if err != nil {
			return fmt.Errorf("failed to marshal chat-unlock flags: %w", err)
		}
		updateExpression += ", chatUnlocked = :chatUnlocked"
		values[":chatUnlocked"] = unlockedAttr
	}

	_, err = ms.Dynamo.UpdateItemWithCondition(ctx, models.MatchRecordsTable,
		updateExpression,
		CompositeKey("userId", record.UserID, "cycleId", record.CycleID),
		values, nil,
		"version = :oldVersion",
	)
	return err
}

// BuildMatchRecord assembles a fresh record: candidates deduplicated, the
// owner excluded, capped, revealed flags all false, expiry on the next weekly
// boundary strictly after now.
func BuildMatchRecord(userID, cycleID string, candidates []string, now time.Time) models.MatchRecord {
	record := models.MatchRecord{
		UserID:    userID,
		CycleID:   cycleID,
		Matches:   []string{},
		Revealed:  []bool{},
		Version:   1,
		CreatedAt: now.Format(time.RFC3339),
		ExpiresAt: models.NextWeeklyBoundary(now).Format(time.RFC3339),
	}
	for _, added := range AppendableMatches(&record, candidates) {
		record.Matches = append(record.Matches, added)
		record.Revealed = append(record.Revealed, false)
	}
	return record
}

// AppendableMatches returns the candidates that may legally join the record:
// not the owner, not already present, not duplicated within the input, and
// only as many as the cap leaves room for. Order is preserved.
func AppendableMatches(record *models.MatchRecord, candidates []string) []string {
	remaining := record.RemainingSlots()
	if remaining == 0 {
		return nil
	}

	var added []string
	for _, id := range candidates {
		if len(added) == remaining {
			break
		}
		if id == record.UserID || record.Contains(id) || containsString(added, id) {
			continue
		}
		added = append(added, id)
	}
	return added
}

// appendMatches extends a copy of record with the already-vetted additions,
// keeping the parallel arrays in step.
func appendMatches(record models.MatchRecord, added []string) models.MatchRecord {
	record.Matches = append(append([]string(nil), record.Matches...), added...)
	record.Revealed = append([]bool(nil), record.Revealed...)
	if record.ChatUnlocked != nil {
		record.ChatUnlocked = append([]bool(nil), record.ChatUnlocked...)
	}
	for range added {
		record.Revealed = append(record.Revealed, false)
		if record.ChatUnlocked != nil {
			record.ChatUnlocked = append(record.ChatUnlocked, false)
		}
	}
	return record
}

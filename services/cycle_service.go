package services

import (
	"context"
	"fmt"
	"time"

	"kindred_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// CycleService reads and transitions weekly prompt cycles. The at-most-one-
// active invariant is owned by the authoring/activation step; matching only
// trusts it.
type CycleService struct {
	Dynamo *DynamoService
}

// GetActiveCycle returns the currently active cycle, or (nil, nil) when no
// cycle is active.
func (cs *CycleService) GetActiveCycle(ctx context.Context) (*models.Cycle, error) {
	var cycles []models.Cycle
	err := cs.Dynamo.ScanWithFilter(ctx, models.CyclesTable,
		"isActive = :true",
		map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
		}, nil, nil, &cycles,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for active cycle: %w", err)
	}

	if len(cycles) == 0 {
		return nil, nil
	}
	return &cycles[0], nil
}

// CreateCycle writes a scheduled cycle for the week containing releaseAt.
// The key is derived from the date, so authoring the same week twice is
// rejected rather than duplicated.
func (cs *CycleService) CreateCycle(ctx context.Context, prompt string, releaseAt, matchAt time.Time) (*models.Cycle, error) {
	cycle := models.Cycle{
		CycleID:   models.CycleIDForDate(releaseAt),
		Prompt:    prompt,
		ReleaseAt: releaseAt.UTC().Format(time.RFC3339),
		MatchAt:   matchAt.UTC().Format(time.RFC3339),
		Status:    models.CycleStatusScheduled,
		IsActive:  false,
	}

	err := cs.Dynamo.PutItemWithCondition(ctx, models.CyclesTable, cycle, "attribute_not_exists(cycleId)")
	if IsConditionalCheckFailed(err) {
		return nil, fmt.Errorf("cycle %s already exists", cycle.CycleID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cycle %s: %w", cycle.CycleID, err)
	}
	return &cycle, nil
}

// CompleteCycle atomically flips an active cycle to completed and stamps the
// completion time. The condition keeps a second finalizer (or a re-run racing
// the scheduler) from completing the same cycle twice.
func (cs *CycleService) CompleteCycle(ctx context.Context, cycleID string) error {
	_, err := cs.Dynamo.UpdateItemWithCondition(ctx, models.CyclesTable,
		"SET #status = :completed, isActive = :false, completedAt = :now",
		StringKey("cycleId", cycleID),
		map[string]types.AttributeValue{
			":completed": &types.AttributeValueMemberS{Value: models.CycleStatusCompleted},
			":false":     &types.AttributeValueMemberBOOL{Value: false},
			":now":       &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
			":active":    &types.AttributeValueMemberS{Value: models.CycleStatusActive},
		},
		map[string]string{"#status": "status"},
		"#status = :active",
	)
	if IsConditionalCheckFailed(err) {
		return fmt.Errorf("cycle %s is not active", cycleID)
	}
	if err != nil {
		return fmt.Errorf("failed to complete cycle %s: %w", cycleID, err)
	}
	return nil
}

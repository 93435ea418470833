package services

import (
	"context"
	"fmt"
	"time"

	"kindred_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// BlockService resolves and maintains block relations. Exclusion is
// symmetric, so reads union both directions: rows the user created and rows
// naming the user (via the BlockedUserIndex GSI).
type BlockService struct {
	Dynamo *DynamoService
}

// BlockUser records a directed block row.
func (bs *BlockService) BlockUser(ctx context.Context, blockerID, blockedID string) error {
	block := models.Block{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := bs.Dynamo.PutItem(ctx, models.BlocksTable, block); err != nil {
		return fmt.Errorf("failed to block %s for %s: %w", blockedID, blockerID, err)
	}
	return nil
}

// UnblockUser removes a directed block row. Removing one direction does not
// touch a block the counterpart created.
func (bs *BlockService) UnblockUser(ctx context.Context, blockerID, blockedID string) error {
	key := CompositeKey("blockerId", blockerID, "blockedId", blockedID)
	if err := bs.Dynamo.DeleteItem(ctx, models.BlocksTable, key); err != nil {
		return fmt.Errorf("failed to unblock %s for %s: %w", blockedID, blockerID, err)
	}
	return nil
}

// BlockedSetFor returns every user blocked by or blocking userID.
func (bs *BlockService) BlockedSetFor(ctx context.Context, userID string) (map[string]struct{}, error) {
	blocked := map[string]struct{}{}

	// Blocks the user created
	items, err := bs.Dynamo.QueryItems(ctx, models.BlocksTable,
		"blockerId = :userId",
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		}, nil, 0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks for %s: %w", userID, err)
	}
	for _, item := range items {
		var block models.Block
		if err := attributevalue.UnmarshalMap(item, &block); err != nil {
			return nil, fmt.Errorf("failed to unmarshal block row: %w", err)
		}
		blocked[block.BlockedID] = struct{}{}
	}

	// Blocks naming the user, via the reverse GSI
	items, err = bs.Dynamo.QueryItemsWithIndex(ctx, models.BlocksTable, models.BlockedUserIndex,
		"blockedId = :userId",
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		}, nil, 0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reverse blocks for %s: %w", userID, err)
	}
	for _, item := range items {
		var block models.Block
		if err := attributevalue.UnmarshalMap(item, &block); err != nil {
			return nil, fmt.Errorf("failed to unmarshal block row: %w", err)
		}
		blocked[block.BlockerID] = struct{}{}
	}

	return blocked, nil
}

// GetBlockedSets resolves the symmetric block set for each user in userIDs.
func (bs *BlockService) GetBlockedSets(ctx context.Context, userIDs []string) (map[string]map[string]struct{}, error) {
	sets := make(map[string]map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		set, err := bs.BlockedSetFor(ctx, id)
		if err != nil {
			return nil, err
		}
		sets[id] = set
	}
	return sets, nil
}

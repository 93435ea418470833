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

// ErrAlreadyResponded is returned when a user submits a second answer for
// the same cycle.
var ErrAlreadyResponded = errors.New("user already answered this cycle")

// ResponseService is the answer ledger: who answered which cycle's prompt.
type ResponseService struct {
	Dynamo *DynamoService
}

// SubmitResponse records a user's answer for a cycle. The conditional put
// keeps the ledger at one row per (cycle, user).
func (rs *ResponseService) SubmitResponse(ctx context.Context, cycleID, userID, answer string) (*models.PromptResponse, error) {
	response := models.PromptResponse{
		CycleID:     cycleID,
		UserID:      userID,
		Answer:      answer,
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}

	err := rs.Dynamo.PutItemWithCondition(ctx, models.PromptResponsesTable, response,
		"attribute_not_exists(cycleId) AND attribute_not_exists(userId)")
	if IsConditionalCheckFailed(err) {
		return nil, ErrAlreadyResponded
	}
	if err != nil {
		return nil, fmt.Errorf("failed to submit response for %s: %w", userID, err)
	}
	return &response, nil
}

// ListRespondents returns the deduplicated identities of everyone who
// answered the cycle's prompt, in ledger order.
func (rs *ResponseService) ListRespondents(ctx context.Context, cycleID string) ([]string, error) {
	items, err := rs.Dynamo.QueryItems(ctx, models.PromptResponsesTable,
		"cycleId = :cycleId",
		map[string]types.AttributeValue{
			":cycleId": &types.AttributeValueMemberS{Value: cycleID},
		}, nil, 0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list respondents for cycle %s: %w", cycleID, err)
	}

	seen := map[string]struct{}{}
	var userIDs []string
	for _, item := range items {
		var response models.PromptResponse
		if err := attributevalue.UnmarshalMap(item, &response); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response row: %w", err)
		}
		if _, dup := seen[response.UserID]; dup {
			continue
		}
		seen[response.UserID] = struct{}{}
		userIDs = append(userIDs, response.UserID)
	}
	return userIDs, nil
}

package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"kindred_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// NotificationService queues match notifications for the external delivery
// mechanism. It only supplies the trigger payload; formatting and push
// mechanics live outside this service.
type NotificationService struct {
	Dynamo *DynamoService
}

// QueueMatchNotifications writes one pending row per notified user. Users
// with zero matches are never queued; the caller already filtered them.
func (ns *NotificationService) QueueMatchNotifications(ctx context.Context, cycleID string, matchCounts map[string]int) error {
	if len(matchCounts) == 0 {
		return nil
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)
	writeRequests := make([]types.WriteRequest, 0, len(matchCounts))
	for userID, count := range matchCounts {
		notification := models.MatchNotification{
			NotificationID: uuid.NewString(),
			UserID:         userID,
			CycleID:        cycleID,
			MatchCount:     count,
			Status:         models.NotificationStatusPending,
			CreatedAt:      createdAt,
		}

		item, err := attributevalue.MarshalMap(notification)
		if err != nil {
			return fmt.Errorf("failed to marshal notification for %s: %w", userID, err)
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	if err := ns.Dynamo.BatchWriteItems(ctx, models.MatchNotificationsTable, writeRequests); err != nil {
		return fmt.Errorf("failed to queue match notifications for cycle %s: %w", cycleID, err)
	}

	log.Printf("Queued %d match notifications for cycle %s", len(writeRequests), cycleID)
	return nil
}

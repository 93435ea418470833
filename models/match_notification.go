package models

// MatchNotification is the fan-out trigger payload queued for the external
// delivery mechanism once a cycle completes. This service only writes the
// rows; formatting and delivery happen elsewhere.
type MatchNotification struct {
	NotificationID string `dynamodbav:"notificationId" json:"notificationId"` // ✅ Partition Key
	UserID         string `dynamodbav:"userId" json:"userId"`
	CycleID        string `dynamodbav:"cycleId" json:"cycleId"`
	MatchCount     int    `dynamodbav:"matchCount" json:"matchCount"`
	Status         string `dynamodbav:"status" json:"status"` // pending until picked up by delivery
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`
}

// MatchNotificationsTable is the DynamoDB table name for queued notifications
const MatchNotificationsTable = "MatchNotifications"

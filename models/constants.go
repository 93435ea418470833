package models

// ✅ Cycle Statuses
const (
	CycleStatusScheduled = "scheduled"
	CycleStatusActive    = "active"
	CycleStatusCompleted = "completed"
)

// ✅ Notification Statuses
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
)

package models

import (
	"fmt"
	"time"
)

// Cycle represents one weekly matching round. At most one cycle is active at
// a time; the authoring step that transitions cycles enforces that, not the
// matching pipeline.
type Cycle struct {
	CycleID     string `dynamodbav:"cycleId" json:"cycleId"` // ✅ Partition Key, ISO year-week ("2026-W35")
	Prompt      string `dynamodbav:"prompt" json:"prompt"`
	ReleaseAt   string `dynamodbav:"releaseAt" json:"releaseAt"` // When the prompt goes live
	MatchAt     string `dynamodbav:"matchAt" json:"matchAt"`     // Match-computation boundary
	Status      string `dynamodbav:"status" json:"status"`       // scheduled, active, completed
	IsActive    bool   `dynamodbav:"isActive" json:"isActive"`
	CompletedAt string `dynamodbav:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// CyclesTable is the DynamoDB table name for weekly prompt cycles
const CyclesTable = "PromptCycles"

// CycleIDForDate derives the deterministic cycle key for a calendar date.
func CycleIDForDate(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// NextWeeklyBoundary returns the next Monday 00:00 UTC strictly after t.
func NextWeeklyBoundary(t time.Time) time.Time {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := (int(time.Monday) - int(midnight.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return midnight.AddDate(0, 0, days)
}

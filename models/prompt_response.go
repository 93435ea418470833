package models

// PromptResponse records that a user answered a cycle's prompt. At most one
// row exists per (cycle, user); it is immutable once matching has read it.
type PromptResponse struct {
	CycleID     string `dynamodbav:"cycleId" json:"cycleId"` // ✅ Partition Key
	UserID      string `dynamodbav:"userId" json:"userId"`   // ✅ Sort Key
	Answer      string `dynamodbav:"answer" json:"answer"`
	SubmittedAt string `dynamodbav:"submittedAt" json:"submittedAt"`
}

// PromptResponsesTable is the DynamoDB table name for prompt answers
const PromptResponsesTable = "PromptResponses"

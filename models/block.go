package models

// Block is a directed block row. Exclusion is symmetric: a row in either
// direction keeps both users out of each other's matches.
type Block struct {
	BlockerID string `dynamodbav:"blockerId" json:"blockerId"` // ✅ Partition Key
	BlockedID string `dynamodbav:"blockedId" json:"blockedId"` // ✅ Sort Key
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// BlocksTable is the DynamoDB table name for block relations
const BlocksTable = "Blocks"

// BlockedUserIndex is the GSI keyed by blockedId, used for the reverse lookup
const BlockedUserIndex = "BlockedUserIndex"

package models

// MaxMatchesPerCycle is the fixed cap on matches per user per cycle
const MaxMatchesPerCycle = 3

// MatchRecord is the persisted result for one user in one cycle. Identity is
// the composite (userId, cycleId) key; repeated computation for the same pair
// converges on this record instead of creating duplicates. Matches and
// Revealed are parallel arrays; ChatUnlocked, when present, tracks them too.
type MatchRecord struct {
	UserID       string   `dynamodbav:"userId" json:"userId"`   // ✅ Partition Key
	CycleID      string   `dynamodbav:"cycleId" json:"cycleId"` // ✅ Sort Key
	Matches      []string `dynamodbav:"matches" json:"matches"`
	Revealed     []bool   `dynamodbav:"revealed" json:"revealed"`
	ChatUnlocked []bool   `dynamodbav:"chatUnlocked,omitempty" json:"chatUnlocked,omitempty"`
	Version      int      `dynamodbav:"version" json:"-"` // Optimistic-concurrency counter
	CreatedAt    string   `dynamodbav:"createdAt" json:"createdAt"`
	ExpiresAt    string   `dynamodbav:"expiresAt" json:"expiresAt"` // Next weekly boundary after creation
}

// MatchRecordsTable is the DynamoDB table name for match records
const MatchRecordsTable = "MatchRecords"

// Contains reports whether userID already appears in the record's matches.
func (m *MatchRecord) Contains(userID string) bool {
	for _, id := range m.Matches {
		if id == userID {
			return true
		}
	}
	return false
}

// RemainingSlots returns how many matches may still be appended.
func (m *MatchRecord) RemainingSlots() int {
	remaining := MaxMatchesPerCycle - len(m.Matches)
	if remaining < 0 {
		return 0
	}
	return remaining
}

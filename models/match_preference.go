package models

// MatchPreference is a user's stated match filter. Empty list fields mean
// "no restriction on this axis"; an age range of [0,0] likewise imposes none.
type MatchPreference struct {
	UserID     string   `dynamodbav:"userId" json:"userId"` // ✅ Partition Key
	Genders    []string `dynamodbav:"genders,omitempty" json:"genders,omitempty"`
	AgeMin     int      `dynamodbav:"ageMin,omitempty" json:"ageMin,omitempty"`
	AgeMax     int      `dynamodbav:"ageMax,omitempty" json:"ageMax,omitempty"`
	ClassYears []string `dynamodbav:"classYears,omitempty" json:"classYears,omitempty"` // Accepted class-year labels, e.g. "2027"
	Schools    []string `dynamodbav:"schools,omitempty" json:"schools,omitempty"`
	Majors     []string `dynamodbav:"majors,omitempty" json:"majors,omitempty"`
}

// MatchPreferencesTable is the DynamoDB table name for match preferences
const MatchPreferencesTable = "MatchPreferences"

package models

// UserProfile holds the demographic attributes consumed for match scoring.
// Owned by the profile management subsystem; the matching pipeline only reads it.
type UserProfile struct {
	UserID    string   `dynamodbav:"userId" json:"userId"` // ✅ Partition Key
	Name      string   `dynamodbav:"name,omitempty" json:"name,omitempty"`
	School    string   `dynamodbav:"school,omitempty" json:"school,omitempty"`
	Majors    []string `dynamodbav:"majors,omitempty" json:"majors,omitempty"`
	ClassYear int      `dynamodbav:"classYear,omitempty" json:"classYear,omitempty"` // Graduation year, e.g. 2027
	DOB       string   `dynamodbav:"dob,omitempty" json:"dob,omitempty"`             // Date of birth, "2006-01-02" format
	Interests []string `dynamodbav:"interests,omitempty" json:"interests,omitempty"`
	Clubs     []string `dynamodbav:"clubs,omitempty" json:"clubs,omitempty"`
	Gender    string   `dynamodbav:"gender,omitempty" json:"gender,omitempty"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "Users"

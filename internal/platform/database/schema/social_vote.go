package schema

// SocialVoteTable represents the 'social.vote' table
type SocialVoteTable struct {
	Table     string
	ID        string
	CommentID string
	ProfileID string
	System    string
	Value     string
	VoterID   string
	CreatedAt string
	UpdatedAt string
}

// SocialVote is the schema definition for social.vote
var SocialVote = SocialVoteTable{
	Table:     "social.vote",
	ID:        "id",
	CommentID: "commentid",
	ProfileID: "profileid",
	System:    "system",
	Value:     "value",
	VoterID:   "voterid",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Columns returns all standard column names
func (t SocialVoteTable) Columns() []string {
	return []string{
		t.ID, t.CommentID, t.ProfileID, t.System, t.Value, t.VoterID,
		t.CreatedAt, t.UpdatedAt,
	}
}

package schema

// SocialCommentTable represents the 'social.comment' table
type SocialCommentTable struct {
	Table      string
	ID         string
	ProfileID  string
	Content    string
	Title      string
	Author     string
	IsVisible  string
	VoteStats  string
	TotalVotes string
	CreatedAt  string
	UpdatedAt  string
}

// SocialComment is the schema definition for social.comment
var SocialComment = SocialCommentTable{
	Table:      "social.comment",
	ID:         "id",
	ProfileID:  "profileid",
	Content:    "content",
	Title:      "title",
	Author:     "author",
	IsVisible:  "isvisible",
	VoteStats:  "votestats",
	TotalVotes: "totalvotes",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

// Columns returns all standard column names
func (t SocialCommentTable) Columns() []string {
	return []string{
		t.ID, t.ProfileID, t.Content, t.Title, t.Author, t.IsVisible,
		t.VoteStats, t.TotalVotes, t.CreatedAt, t.UpdatedAt,
	}
}

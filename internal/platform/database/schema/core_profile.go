package schema

// CoreProfileTable represents the 'core.profile' table
type CoreProfileTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	Category    string
	MBTI        string
	Enneagram   string
	Zodiac      string
	Description string
	Image       string
	CreatedAt   string
	UpdatedAt   string
}

// CoreProfile is the schema definition for core.profile
var CoreProfile = CoreProfileTable{
	Table:       "core.profile",
	ID:          "id",
	Name:        "name",
	Slug:        "slug",
	Category:    "category",
	MBTI:        "mbti",
	Enneagram:   "enneagram",
	Zodiac:      "zodiac",
	Description: "description",
	Image:       "image",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t CoreProfileTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.Category, t.MBTI, t.Enneagram, t.Zodiac,
		t.Description, t.Image, t.CreatedAt, t.UpdatedAt,
	}
}

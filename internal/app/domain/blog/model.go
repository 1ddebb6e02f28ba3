package blog

// Category groups posts on the blog index.
type Category string

const (
	CategoryPersonality   Category = "personality"
	CategoryAstrology     Category = "astrology"
	CategoryRelationships Category = "relationships"
)

// Categories lists every accepted category in display order.
var Categories = []Category{CategoryPersonality, CategoryAstrology, CategoryRelationships}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Post is a published article. CreatedAt is an ISO-8601 string.
type Post struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Excerpt   string   `json:"excerpt"`
	Category  Category `json:"category"`
	Tags      []string `json:"tags"`
	AuthorID  *int64   `json:"authorId"`
	CreatedAt string   `json:"createdAt"`
}

// Comment is a reader reply attached to a post.
type Comment struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	UserID    *int64 `json:"userId"`
	PostID    *int64 `json:"postId"`
	CreatedAt string `json:"createdAt"`
}

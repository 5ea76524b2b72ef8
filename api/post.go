package api

// PostSummary is the abbreviated post returned by the listing endpoint.
type PostSummary struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Excerpt   string `json:"excerpt,omitempty"`
	Published bool   `json:"published"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Post is a full post as returned by the detail endpoint. Content is
// markdown source.
type Post struct {
	PostSummary
	Content string  `json:"content"`
	Photos  []Photo `json:"photos,omitempty"`
}

// Photo is an image attached to a post, ordered by DisplayOrder.
type Photo struct {
	ID           int64  `json:"id"`
	PostID       int64  `json:"post_id"`
	Filename     string `json:"filename"`
	Caption      string `json:"caption,omitempty"`
	DisplayOrder int64  `json:"display_order"`
	CreatedAt    string `json:"created_at"`
}

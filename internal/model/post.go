package model

import "time"

type Post struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Text      string     `json:"text"`
	Author    string     `json:"author"`
	HideStats bool       `json:"hide_stats"`
	Created   time.Time  `json:"created"`
	Updated   time.Time  `json:"updated"`
	Expand    PostExpand `json:"expand"`
}

type PostExpand struct {
	Author *User `json:"author,omitempty"`
}

// StatsVisibleTo reports whether the aggregate like/dislike counts of the post
// may be shown to viewerID. Authors always see their own counts.
func (p *Post) StatsVisibleTo(viewerID string) bool {
	return !p.HideStats || (viewerID != "" && viewerID == p.Author)
}

func (p *Post) IsAuthor(userID string) bool {
	return userID != "" && userID == p.Author
}

// PostUpdate holds the author-editable fields. Nil fields are left unchanged.
type PostUpdate struct {
	Title     *string `json:"title,omitempty"`
	Text      *string `json:"text,omitempty"`
	HideStats *bool   `json:"hide_stats,omitempty"`
}

type PostStats struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

package dto

import "github.com/BloggingApp/blog-gateway/internal/model"

// PostView is one post as a particular viewer sees it. Stats is nil when the
// author hid the counts from this viewer; StatsHidden marks the author's own
// view of such a post.
type PostView struct {
	Post        model.Post          `json:"post"`
	Stats       *model.PostStats    `json:"stats"`
	Reaction    model.ReactionState `json:"reaction"`
	IsAuthor    bool                `json:"is_author"`
	StatsHidden bool                `json:"stats_hidden"`
}

type FeedResponse struct {
	Posts []PostView `json:"posts"`
}

type LikedPostsResponse struct {
	Posts []*model.Post `json:"posts"`
}

package dto

type CreatePostRequest struct {
	Title     string `json:"title" binding:"required,min=2"`
	Text      string `json:"text" binding:"required,min=1"`
	HideStats bool   `json:"hide_stats"`
}

type EditPostRequest struct {
	Title     *string `json:"title" binding:"omitempty,min=2"`
	Text      *string `json:"text" binding:"omitempty,min=1"`
	HideStats *bool   `json:"hide_stats"`
}

type VoteRequest struct {
	Kind string `json:"kind" binding:"required,oneof=like dislike"`
}

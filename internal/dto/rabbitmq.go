package dto

import "time"

type MQPostCreatedMsg struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	PostTitle string    `json:"post_title"`
	CreatedAt time.Time `json:"created_at"`
}

type MQPostDeletedMsg struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type MQReactionChangedMsg struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	State     string    `json:"state"`
	ChangedAt time.Time `json:"changed_at"`
}

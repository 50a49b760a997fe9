package pocketbase

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/model"
)

const dateTimeLayout = "2006-01-02 15:04:05.000Z"

// dateTime decodes the records API timestamp format.
type dateTime struct {
	time.Time
}

func (d *dateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(dateTimeLayout, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return err
		}
	}
	d.Time = t.UTC()
	return nil
}

type userRecord struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

func (r *userRecord) toModel() *model.User {
	return &model.User{
		ID:       r.ID,
		Email:    r.Email,
		Username: r.Username,
		Name:     r.Name,
		Avatar:   r.Avatar,
	}
}

type postRecord struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	Author    string   `json:"author"`
	HideStats bool     `json:"hide_stats"`
	Created   dateTime `json:"created"`
	Updated   dateTime `json:"updated"`
	Expand    struct {
		Author *userRecord `json:"author"`
	} `json:"expand"`
}

func (r *postRecord) toModel() *model.Post {
	post := &model.Post{
		ID:        r.ID,
		Title:     r.Title,
		Text:      r.Text,
		Author:    r.Author,
		HideStats: r.HideStats,
		Created:   r.Created.Time,
		Updated:   r.Updated.Time,
	}
	if r.Expand.Author != nil {
		post.Expand.Author = r.Expand.Author.toModel()
	}
	return post
}

type reactionRecord struct {
	ID     string `json:"id"`
	User   string `json:"user"`
	Post   string `json:"post"`
	Expand struct {
		Post *postRecord `json:"post"`
	} `json:"expand"`
}

func (r *reactionRecord) toModel(kind model.ReactionKind) *model.Reaction {
	return &model.Reaction{
		ID:   r.ID,
		User: r.User,
		Post: r.Post,
		Kind: kind,
	}
}

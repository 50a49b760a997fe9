package dto

import "github.com/BloggingApp/blog-gateway/internal/model"

type SessionResponse struct {
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

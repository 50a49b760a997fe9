// Package pocketbase implements the record store on top of the PocketBase
// records REST API.
package pocketbase

import (
	"time"

	"github.com/BloggingApp/blog-gateway/internal/repository"
	"go.uber.org/zap"
)

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *repository.Store {
	c := newClient(baseURL, timeout, logger)
	return &repository.Store{
		Post:     newPostRepo(c),
		User:     newUserRepo(c),
		Reaction: newReactionRepo(c),
	}
}

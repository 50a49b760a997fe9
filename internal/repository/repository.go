package repository

import (
	"context"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository/redisrepo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Every store call takes the caller's session as auth. A nil session is an
// anonymous request; the store decides what anonymous callers may see.

type Post interface {
	List(ctx context.Context, auth *model.Session, page int, perPage int) ([]*model.Post, error)
	FindByID(ctx context.Context, auth *model.Session, id string) (*model.Post, error)
	Create(ctx context.Context, auth *model.Session, post model.Post) (*model.Post, error)
	Update(ctx context.Context, auth *model.Session, id string, update model.PostUpdate) (*model.Post, error)
	Delete(ctx context.Context, auth *model.Session, id string) error
}

type User interface {
	Create(ctx context.Context, email string, password string, passwordConfirm string) (*model.User, error)
	AuthWithPassword(ctx context.Context, email string, password string) (string, *model.User, error)
	Update(ctx context.Context, auth *model.Session, id string, name string) (*model.User, error)
}

type Reaction interface {
	// Find returns nil, nil when the user has no reaction of this kind on the post.
	Find(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string, postID string) (*model.Reaction, error)
	Create(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string, postID string) (*model.Reaction, error)
	Delete(ctx context.Context, auth *model.Session, kind model.ReactionKind, id string) error
	PostIDsByUser(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string) ([]string, error)
	// Count must not materialize the reaction rows.
	Count(ctx context.Context, auth *model.Session, kind model.ReactionKind, postID string) (int64, error)
	PostsByUser(ctx context.Context, auth *model.Session, kind model.ReactionKind, userID string, limit int) ([]*model.Post, error)
}

// Store is a record store backend.
type Store struct {
	Post
	User
	Reaction
}

type Repository struct {
	Store *Store
	Redis *redisrepo.RedisRepository
}

func New(store *Store, rdb *redis.Client, logger *zap.Logger) *Repository {
	return &Repository{
		Store: store,
		Redis: redisrepo.New(rdb, logger),
	}
}

package redisrepo

import (
	"context"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Default interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Session interface {
	Save(ctx context.Context, session model.Session, ttl time.Duration) error
	// Find returns redis.Nil when the session does not exist or has expired.
	Find(ctx context.Context, id string) (*model.Session, error)
	// Patch replaces the user record of a live session, keeping its remaining TTL.
	Patch(ctx context.Context, id string, user model.User) error
	Delete(ctx context.Context, id string) error
}

type RedisRepository struct {
	Default
	Session
}

func New(rdb *redis.Client, logger *zap.Logger) *RedisRepository {
	def := newDefaultRepo(rdb)
	return &RedisRepository{
		Default: def,
		Session: newSessionRepo(rdb, def, logger),
	}
}

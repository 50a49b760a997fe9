package redisrepo

import (
	"context"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type sessionRepo struct {
	rdb    *redis.Client
	def    Default
	logger *zap.Logger
}

func newSessionRepo(rdb *redis.Client, def Default, logger *zap.Logger) Session {
	return &sessionRepo{
		rdb:    rdb,
		def:    def,
		logger: logger,
	}
}

func (r *sessionRepo) Save(ctx context.Context, session model.Session, ttl time.Duration) error {
	return r.def.SetJSON(ctx, SessionKey(session.ID), session, ttl)
}

func (r *sessionRepo) Find(ctx context.Context, id string) (*model.Session, error) {
	session, err := Get[model.Session](r.def, ctx, SessionKey(id))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, redis.Nil
	}

	return session, nil
}

func (r *sessionRepo) Patch(ctx context.Context, id string, user model.User) error {
	key := SessionKey(id)

	ttl, err := r.rdb.TTL(ctx, key).Result()
	if err != nil {
		return err
	}
	// -2: key is gone, -1: no expiry
	if ttl == -2 {
		return redis.Nil
	}
	if ttl < 0 {
		ttl = 0
	}

	session, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	session.User = user

	r.logger.Sugar().Debugf("patched session(%s) of user(%s)", id, user.ID)

	return r.def.SetJSON(ctx, key, session, ttl)
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	return r.def.Del(ctx, SessionKey(id)).Err()
}

package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type defaultRepo struct {
	rdb *redis.Client
}

func newDefaultRepo(rdb *redis.Client) Default {
	return &defaultRepo{
		rdb: rdb,
	}
}

func (r *defaultRepo) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return r.rdb.Set(ctx, key, valueJSON, ttl).Err()
}

func (r *defaultRepo) Get(ctx context.Context, key string) *redis.StringCmd {
	return r.rdb.Get(ctx, key)
}

func (r *defaultRepo) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return r.rdb.Del(ctx, keys...)
}

// Get decodes the JSON value stored at key. A stored "null" decodes to nil, nil;
// a missing key returns redis.Nil.
func Get[T any](r Default, ctx context.Context, key string) (*T, error) {
	value, err := r.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	if value == "null" {
		return nil, nil
	}

	var result T
	if err := json.Unmarshal([]byte(value), &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ReadThrough serves key from the cache and falls back to load on a miss,
// caching what load returns for ttl. Cache failures never fail the read: they
// are handed to onCacheErr and the value is loaded as on a miss. Errors from
// load are returned as is and nothing is cached.
func ReadThrough[T any](
	r Default,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
	onCacheErr func(err error),
) (value *T, hit bool, err error) {
	cached, err := Get[T](r, ctx, key)
	if err == nil && cached != nil {
		return cached, true, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		onCacheErr(err)
	}

	value, err = load(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := r.SetJSON(ctx, key, value, ttl); err != nil {
		onCacheErr(err)
	}

	return value, false, nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "session:"

type RedisStore struct {
	c   *redis.Client
	ttl time.Duration
}

func NewRedisStore(c *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{c: c, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, id string) (State, error) {
	raw, err := r.c.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, ErrNotFound
		}
		return State{}, err
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return st, nil
}

// Save writes the state and restarts its expiry.
func (r *RedisStore) Save(ctx context.Context, id string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return r.c.Set(ctx, keyPrefix+id, raw, r.ttl).Err()
}

func (r *RedisStore) Destroy(ctx context.Context, id string) error {
	return r.c.Del(ctx, keyPrefix+id).Err()
}

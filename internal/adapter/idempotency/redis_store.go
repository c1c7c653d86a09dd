package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/commerce-service/internal/domain"
)

// RedisStore привязывает ключ идемпотентности к id заказа через SETNX с TTL.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Key(key string) string {
	return "idem:order:" + key
}

func (s *RedisStore) Reserve(ctx context.Context, key, orderID string) (string, bool, error) {
	k := s.Key(key)
	ok, err := s.rdb.SetNX(ctx, k, orderID, s.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return orderID, true, nil
	}
	bound, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// ключ истёк между SETNX и GET, пробуем ещё раз
		return s.Reserve(ctx, key, orderID)
	}
	if err != nil {
		return "", false, err
	}
	return bound, false, nil
}

var _ domain.IdempotencyStore = (*RedisStore)(nil)

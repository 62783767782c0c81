package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSubmissionInFlight means another submission holds the key.
var ErrSubmissionInFlight = errors.New("order submission already in flight")

const pendingMarker = "pending"

// IdempotencyStore makes sure one confirmed payment produces one order.
//
// Begin claims key. If an order was already placed under key its id is
// returned with fresh=false. Complete records the placed order id; Release
// gives the key back after a failed submission so it may be retried.
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) (orderID string, fresh bool, err error)
	Complete(ctx context.Context, key, orderID string) error
	Release(ctx context.Context, key string) error
}

type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *RedisIdempotencyStore) key(k string) string {
	return fmt.Sprintf("idem:order:%s", k)
}

func (s *RedisIdempotencyStore) Begin(ctx context.Context, key string) (string, bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.key(key), pendingMarker, s.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}

	val, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SetNX and Get; claim again
		return s.Begin(ctx, key)
	}
	if err != nil {
		return "", false, fmt.Errorf("read idempotency key: %w", err)
	}
	if val == pendingMarker {
		return "", false, ErrSubmissionInFlight
	}
	return val, false, nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	if err := s.rdb.Set(ctx, s.key(key), orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("record idempotency key: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{keys: make(map[string]string)}
}

func (s *MemoryIdempotencyStore) Begin(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.keys[key]
	if !ok {
		s.keys[key] = pendingMarker
		return "", true, nil
	}
	if val == pendingMarker {
		return "", false, ErrSubmissionInFlight
	}
	return val, false, nil
}

func (s *MemoryIdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	s.mu.Lock()
	s.keys[key] = orderID
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultScope = "_"

// reserveAttempts bounds the optimistic retries when concurrent reservations
// touch the same counter.
const reserveAttempts = 64

type redisSequencer struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisSequencer keeps counters in Redis so ids stay monotonic across
// relay replicas and restarts. Idle counters expire after ttl.
func NewRedisSequencer(client redis.UniversalClient, prefix string, ttl time.Duration) Sequencer {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &redisSequencer{client: client, prefix: prefix, ttl: ttl}
}

func (s *redisSequencer) Reserve(ctx context.Context, scope string, floor int64, n int) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("reserve: negative count %d", n)
	}

	key := s.key(scope)
	var last int64
	reserve := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if last, err = advance(current, floor, n); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, last, s.ttl)
			return nil
		})
		return err
	}

	for range reserveAttempts {
		err := s.client.Watch(ctx, reserve, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("reserving ids for %q: %w", scope, err)
		}
		return last - int64(n) + 1, nil
	}
	return 0, fmt.Errorf("reserving ids for %q: counter kept changing", scope)
}

func (s *redisSequencer) key(scope string) string {
	if scope == "" {
		scope = defaultScope
	}
	return s.prefix + ":seq:" + scope
}

type memorySequencer struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemorySequencer is the single-process fallback when Redis is not configured.
func NewMemorySequencer() Sequencer {
	return &memorySequencer{counters: make(map[string]int64)}
}

func (s *memorySequencer) Reserve(_ context.Context, scope string, floor int64, n int) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("reserve: negative count %d", n)
	}
	if scope == "" {
		scope = defaultScope
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := advance(s.counters[scope], floor, n)
	if err != nil {
		return 0, fmt.Errorf("reserving ids for %q: %w", scope, err)
	}
	s.counters[scope] = last
	return last - int64(n) + 1, nil
}

// advance raises current to floor and adds n, returning the last id taken.
func advance(current, floor int64, n int) (int64, error) {
	current = max(current, floor)
	if current > math.MaxInt64-int64(n) {
		return 0, ErrSequenceExhausted
	}
	return current + int64(n), nil
}

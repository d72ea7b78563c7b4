package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkstash/internal/fetcher"
)

// DefaultFetchTTL is the default TTL for cached fetch outcomes (6 hours)
const DefaultFetchTTL = 6 * time.Hour

// Store caches fetch outcomes in Redis. It satisfies fetcher.Cache.
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewStore creates a new Redis outcome cache. A non-positive ttl selects DefaultFetchTTL.
func NewStore(client redis.UniversalClient, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultFetchTTL
	}
	return &Store{client: client, ttl: ttl}
}

var _ fetcher.Cache = (*Store)(nil)

// SaveOutcome stores the outcome of fetching key
func (s *Store) SaveOutcome(ctx context.Context, key string, o fetcher.Outcome) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	if err := s.client.Set(ctx, FetchKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache outcome: %w", err)
	}
	return nil
}

// GetOutcome retrieves a cached outcome. ok is false on a cache miss.
func (s *Store) GetOutcome(ctx context.Context, key string) (fetcher.Outcome, bool, error) {
	data, err := s.client.Get(ctx, FetchKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fetcher.Outcome{}, false, nil // Cache miss
		}
		return fetcher.Outcome{}, false, fmt.Errorf("failed to get cached outcome: %w", err)
	}

	var o fetcher.Outcome
	if err := json.Unmarshal(data, &o); err != nil {
		return fetcher.Outcome{}, false, fmt.Errorf("failed to unmarshal outcome: %w", err)
	}
	return o, true, nil
}

// InvalidateOutcome removes a cached outcome
func (s *Store) InvalidateOutcome(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, FetchKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate outcome: %w", err)
	}
	return nil
}

// FlushCache removes all cached outcomes and returns how many were dropped
func (s *Store) FlushCache(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixFetch+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return n, fmt.Errorf("failed to delete cache key: %w", err)
		}
		n++
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("failed to flush cache: %w", err)
	}
	return n, nil
}

// Ping reports whether Redis answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

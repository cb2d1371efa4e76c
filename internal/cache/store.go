package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store is a namespaced read-through cache in front of the record store.
// Every method degrades on backend failure: Get reports a miss, Set and
// the deletes become no-ops, so callers always fall through to the
// database and never see a cache error.
type Store interface {
	// Get unmarshals the cached value into dest and reports whether a
	// usable entry was found.
	Get(ctx context.Context, key string, dest interface{}) bool
	// Set stores the value under key. A non-positive ttl falls back to
	// the store's default expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string)
	// DeleteByPrefix removes every key sharing the prefix. Used for
	// coarse invalidation of a whole namespace.
	DeleteByPrefix(ctx context.Context, prefix string)
}

const scanBatchSize = 100

type redisStore struct {
	client     *redis.Client
	namespace  string
	defaultTTL time.Duration
	logger     zerolog.Logger
}

// NewRedisStore wraps a Redis client in the degrade-to-miss Store
// contract. All keys are prefixed with the namespace.
func NewRedisStore(client *redis.Client, namespace string, defaultTTL time.Duration, logger zerolog.Logger) Store {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}

	return &redisStore{
		client:     client,
		namespace:  namespace,
		defaultTTL: defaultTTL,
		logger:     logger.With().Str("component", "cache").Logger(),
	}
}

func (s *redisStore) key(key string) string {
	return s.namespace + key
}

func (s *redisStore) Get(ctx context.Context, key string, dest interface{}) bool {
	if s.client == nil {
		return false
	}

	payload, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		}
		return false
	}

	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache entry undecodable, treating as miss")
		return false
	}

	return true
}

func (s *redisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.client == nil {
		return
	}

	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache value not serializable")
		return
	}

	if err := s.client.Set(ctx, s.key(key), payload, ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) {
	if s.client == nil || len(keys) == 0 {
		return
	}

	namespaced := make([]string, len(keys))
	for i, key := range keys {
		namespaced[i] = s.key(key)
	}

	if err := s.client.Del(ctx, namespaced...).Err(); err != nil {
		s.logger.Warn().Err(err).Strs("keys", keys).Msg("cache delete failed")
	}
}

func (s *redisStore) DeleteByPrefix(ctx context.Context, prefix string) {
	if s.client == nil {
		return
	}

	pattern := s.key(prefix) + "*"
	var cursor uint64

	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			s.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache scan failed")
			return
		}

		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				s.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache prefix delete failed")
				return
			}
		}

		cursor = next
		if cursor == 0 {
			return
		}
	}
}

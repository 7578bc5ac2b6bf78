package blacklist

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisBatchSize = 1000

// RedisStore keeps the blacklist in a single Redis set
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, addr, key string, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Info("Initialized blacklist store",
		zap.String("type", "redis"),
		zap.String("key", key))

	return &RedisStore{
		client: client,
		key:    key,
		logger: logger,
	}, nil
}

// Exists checks if a domain is a member of the set
func (s *RedisStore) Exists(ctx context.Context, domain string) (bool, error) {
	found, err := s.client.SIsMember(ctx, s.key, strings.ToLower(domain)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query blacklist: %w", err)
	}
	return found, nil
}

// AddDomains adds domains to the set in batches
func (s *RedisStore) AddDomains(ctx context.Context, domains []string) (int, error) {
	inserted := 0
	for start := 0; start < len(domains); start += redisBatchSize {
		end := min(start+redisBatchSize, len(domains))

		members := make([]interface{}, 0, end-start)
		for _, domain := range domains[start:end] {
			members = append(members, strings.ToLower(domain))
		}

		n, err := s.client.SAdd(ctx, s.key, members...).Result()
		if err != nil {
			return inserted, fmt.Errorf("failed to add domains: %w", err)
		}
		inserted += int(n)
	}

	s.logger.Debug("Added domains to blacklist",
		zap.String("type", "redis"),
		zap.Int("submitted", len(domains)),
		zap.Int("inserted", inserted))

	return inserted, nil
}

// Count returns the size of the set
func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	count, err := s.client.SCard(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count domains: %w", err)
	}
	return count, nil
}

// Stop closes the Redis connection
func (s *RedisStore) Stop() {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close Redis client", zap.Error(err))
	}
}

package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/ports"
)

func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisRateLimitStore counts provisioning submissions per key in Redis hashes
// and blocks a key once its threshold is crossed within the window.
type RedisRateLimitStore struct {
	client *redis.Client
}

func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

func (s *RedisRateLimitStore) Get(ctx context.Context, key string) (ports.RateState, error) {
	data, err := s.client.HGetAll(ctx, "provision:rate:"+key).Result()
	if err != nil {
		return ports.RateState{}, err
	}
	if len(data) == 0 {
		return ports.RateState{}, nil
	}

	state := ports.RateState{}
	if raw, ok := data["count"]; ok {
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			state.Count = n
		}
	}
	if raw, ok := data["blocked_until"]; ok && raw != "" {
		if unix, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil && unix > 0 {
			t := time.Unix(unix, 0).UTC()
			state.BlockedUntil = &t
		}
	}
	return state, nil
}

func (s *RedisRateLimitStore) Record(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (ports.RateState, error) {
	redisKey := "provision:rate:" + key

	count, err := s.client.HIncrBy(ctx, redisKey, "count", 1).Result()
	if err != nil {
		return ports.RateState{}, err
	}

	state := ports.RateState{Count: int(count)}
	if int(count) >= threshold {
		blockedUntil := now.Add(window).UTC()
		_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, redisKey, "blocked_until", blockedUntil.Unix())
			p.Expire(ctx, redisKey, window+30*time.Minute)
			return nil
		})
		if err != nil {
			return ports.RateState{}, err
		}
		state.BlockedUntil = &blockedUntil
		return state, nil
	}

	_ = s.client.Expire(ctx, redisKey, window).Err()
	return state, nil
}

var _ ports.RateLimitStore = (*RedisRateLimitStore)(nil)

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/presensi-qr-api/pkg/config"
)

const redisKeyPrefix = "presensi:slot:"

// RedisKV stores slot snapshots as plain Redis strings. Snapshots never
// expire; last writer wins.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV connects and pings the configured Redis instance.
func NewRedisKV(cfg config.RedisConfig) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisKV{client: client}, nil
}

// Get fetches a slot snapshot, translating redis.Nil into absence.
func (s *RedisKV) Get(ctx context.Context, key Slot) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+string(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, true, nil
}

// Set overwrites the slot snapshot.
func (s *RedisKV) Set(ctx context.Context, key Slot, value []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+string(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the slot snapshot.
func (s *RedisKV) Delete(ctx context.Context, key Slot) error {
	if err := s.client.Del(ctx, redisKeyPrefix+string(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisKV) Close() error {
	return s.client.Close()
}

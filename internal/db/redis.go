// internal/db/redis.go
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type RedisDB struct {
	Client     *redis.Client
	SessionTTL time.Duration
}

func NewRedisDB(redisURL string, sessionTTL time.Duration) (*RedisDB, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	retrier := retry.NewRetrier(5, 200*time.Millisecond, 2*time.Second)
	err = retrier.Run(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Msg("[Redis] ✅ Connected to Redis")
	return &RedisDB{Client: client, SessionTTL: sessionTTL}, nil
}

func (r *RedisDB) Close() {
	if r.Client != nil {
		_ = r.Client.Close()
		log.Info().Msg("[Redis] Connection closed")
	}
}

// Session records are raw bytes owned by the session package.

func (r *RedisDB) SetSession(ctx context.Context, key string, data []byte) error {
	return r.Client.Set(ctx, "session:"+key, data, r.SessionTTL).Err()
}

// GetSession reports found=false for a missing key.
func (r *RedisDB) GetSession(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.Client.Get(ctx, "session:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisDB) DeleteSession(ctx context.Context, key string) error {
	return r.Client.Del(ctx, "session:"+key).Err()
}

package cache

import (
	"context"
	"fmt"
	"time"

	"banked/config"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// NewRedisClient connects to the configured Redis server and verifies it answers
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	log.WithField("addr", cfg.RedisAddr).Info("Connected to Redis")
	return client, nil
}

package database

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// RedisClient wraps the Redis connection backing the LinkedIn credential
// store when one is configured.
type RedisClient struct {
	Client *redis.Client
}

// InitRedis initializes the Redis connection
func InitRedis(redisURI string) (*RedisClient, error) {
	opts, err := redis.ParseURL(redisURI)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisClient{Client: client}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.Client.Close()
}

// Package cache holds the redis client construction shared by components
// that need the cache, currently the webhook duplicate filter.
package cache

import (
	"github.com/redis/go-redis/v9"

	"kolo/internal/config"
)

// RedisConfig holds redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisConfigFromEnv reads the redis settings from the environment.
func RedisConfigFromEnv() *RedisConfig {
	return &RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	}
}

// NewRedisClient creates a redis client from the given config.
func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

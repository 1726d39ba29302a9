package config

import (
	"os"
	"strconv"
)

type RedisConfig struct {
	DB        int
	Url       string
	Password  string
	KeyPrefix string
	// RecentLimit caps the list of recent outcomes kept in Redis
	RecentLimit int64
}

// Enabled reports whether a Redis address was configured
func (c *RedisConfig) Enabled() bool {
	return c != nil && c.Url != ""
}

func NewRedisConfig() *RedisConfig {
	db, err := strconv.Atoi(os.Getenv("REDIS_DB"))
	if err != nil {
		db = 0
	}
	prefix := os.Getenv("REDIS_KEY_PREFIX")
	if prefix == "" {
		prefix = "otp:"
	}
	return &RedisConfig{
		DB:          db,
		Url:         os.Getenv("REDIS_ADDR"),
		Password:    os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:   prefix,
		RecentLimit: 100,
	}
}

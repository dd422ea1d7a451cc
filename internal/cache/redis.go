package cache

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client

// Connect initializes the redis client. Redis is optional; callers must
// check Enabled() before use.
func Connect(addr string) {
	if addr == "" {
		log.Println("REDIS_ADDR not set, rate limiting disabled")
		return
	}

	Redis = redis.NewClient(&redis.Options{Addr: addr})

	if err := Redis.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	log.Println("Redis connection established.")
}

// Enabled reports whether a redis connection is configured.
func Enabled() bool {
	return Redis != nil
}

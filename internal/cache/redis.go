// Package cache provides the Redis client and cache-aside helpers.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the shared Redis client. Nil when Redis is unavailable; all
// helpers fail open in that case.
var Client *redis.Client

// InitRedis connects to Redis at addr. The app continues without caching if
// the connection fails.
func InitRedis(addr string) {
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		Client = nil
	} else {
		log.Println("Redis connected successfully")
	}
}

// GetClient returns the shared Redis client (may be nil).
func GetClient() *redis.Client {
	return Client
}

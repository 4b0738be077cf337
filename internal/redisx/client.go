package redisx

import (
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		// Subscribers block on reads; -1 disables the read deadline.
		ReadTimeout:  -1,
		MinIdleConns: 1,
	})
}

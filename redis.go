package main

import "github.com/go-redis/redis/v8"

// newRedisClient builds the Cmdable used for cross-instance atomic
// cursor rotation (configstore.WithRedisCursor), grounded on the
// teacher's common.InitRedisClient dial options.
func newRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

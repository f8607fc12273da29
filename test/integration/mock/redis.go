//go:build integration

package mock

import (
	"sync"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var redisOnce sync.Once
var redisServer *miniredis.Miniredis
var redisConn *redis.Client

// NewRedis starts a single miniredis instance for the suite and returns a
// client connected to it.
func NewRedis() (*redis.Client, *miniredis.Miniredis) {
	redisOnce.Do(func() {
		server, err := miniredis.Run()
		if err != nil {
			panic(err)
		}
		redisServer = server
		redisConn = redis.NewClient(&redis.Options{Addr: server.Addr()})
	})
	return redisConn, redisServer
}

// ClearRedis drops every key, which also resets rate limit windows.
func ClearRedis(server *miniredis.Miniredis) {
	server.FlushAll()
}

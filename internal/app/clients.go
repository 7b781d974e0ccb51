package app

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
)

// newRedisClient returns nil when REDIS_ADDR is unset or the server is
// unreachable; callers treat a nil client as cache-off.
func newRedisClient(log *logger.Logger, addr string) *goredis.Client {
	if addr == "" {
		log.Info("REDIS_ADDR not set, price cache disabled")
		return nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, price cache disabled", "addr", addr, "error", err)
		rdb.Close()
		return nil
	}
	log.Info("Redis connected", "addr", addr)
	return rdb
}

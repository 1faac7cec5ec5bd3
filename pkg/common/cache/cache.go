package cache

import (
	"net"
	"strconv"

	"github.com/redis/go-redis/v9"

	"resetd/pkg/common/config"
)

// Addr returns host:port for cfg.
func Addr(cfg config.Redis) string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

// New returns a redis client for cfg. No connection is made until the
// first command.
func New(cfg config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     Addr(cfg),
		Password: cfg.Pass,
		DB:       cfg.DB,
		PoolSize: 4,
	})
}

package lock

import (
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/escolaris/finance/internal/config"
)

var Module = fx.Module("lock",
	fx.Provide(NewKeyedMutex),
	fx.Provide(provideRedisClient),
	fx.Provide(NewLocker),
)

// provideRedisClient returns nil when no redis address is configured;
// the cross-instance locker is optional for single-process deployments.
func provideRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

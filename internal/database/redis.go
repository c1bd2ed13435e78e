package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/vresta/chatbot/internal/config"
)

// InitRedis connects to Redis. It returns nil when Redis is not configured or
// not reachable; callers treat a nil client as "no caching".
func InitRedis(cfg *config.Config, logger *zap.Logger) *redis.Client {
	if !cfg.RedisEnabled() {
		logger.Info("redis not configured, history caching disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	redisAddr := cfg.GetRedisAddr()
	logger.Info("connecting to redis", zap.String("addr", redisAddr))

	redisClient := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("failed to connect to redis, continuing without history caching", zap.Error(err))
		_ = redisClient.Close()
		return nil
	}

	logger.Info("connected to redis")
	return redisClient
}

package queue

import (
	"context"
	"fmt"
	"time"

	"klaso-client/internal/config"
	"klaso-client/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const connectTimeout = 5 * time.Second

// RedisClient owns the connection shared by the export producer and consumer.
type RedisClient struct {
	client *redis.Client
	cfg    *config.Config
	log    zerolog.Logger
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to reach Redis at %s: %w", cfg.RedisAddr(), err)
	}

	return &RedisClient{
		client: rdb,
		cfg:    cfg,
		log:    logger.For("queue"),
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// Depth returns the number of export jobs waiting and dead-lettered.
func (r *RedisClient) Depth(ctx context.Context) (pending, dead int64, err error) {
	pipe := r.client.Pipeline()
	pendingCmd := pipe.LLen(ctx, r.cfg.Redis.ExportQueue)
	deadCmd := pipe.LLen(ctx, r.cfg.Redis.ExportQueue+r.cfg.Redis.DLQSuffix)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to read queue depth: %w", err)
	}
	return pendingCmd.Val(), deadCmd.Val(), nil
}

// Ping backs the gateway health check. Dead-lettered exports are reported
// in the log but do not make Redis unhealthy.
func (r *RedisClient) Ping(ctx context.Context) error {
	pending, dead, err := r.Depth(ctx)
	if err != nil {
		return err
	}
	if dead > 0 {
		r.log.Warn().Int64("pending", pending).Int64("dead", dead).Msg("Dead-lettered export jobs waiting")
	}
	return nil
}

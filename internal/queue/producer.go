package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"klaso-client/internal/config"
	"klaso-client/internal/logger"
	"klaso-client/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// Producer pushes assembled reports for the export worker.
type Producer struct {
	client *redis.Client
	queue  string
	log    zerolog.Logger
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		queue:  cfg.Redis.ExportQueue,
		log:    logger.For("queue"),
	}
}

func (p *Producer) EnqueueExportJob(ctx context.Context, job model.ExportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode export job: %w", err)
	}

	depth, err := p.client.LPush(ctx, p.queue, data).Result()
	if err != nil {
		return fmt.Errorf("failed to enqueue export %s: %w", job.ExportID, err)
	}

	p.log.Debug().Str("export_id", job.ExportID).Int64("depth", depth).Msg("Export job enqueued")
	return nil
}

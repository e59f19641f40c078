package events

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	rediscommon "github.com/vikas186/cts-optimizer-backend/internal/common/redis"
)

// RedisStreamPublisher 写入 Redis Stream（XADD，按近似长度裁剪）
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStreamPublisher(client *redis.Client, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, e Event) error {
	values := map[string]interface{}{
		"type":            e.Type,
		"organization_id": e.OrganizationID,
		"occurred_at":     e.OccurredAt.Format(time.RFC3339Nano),
	}
	if len(e.Payload) > 0 {
		values["payload"] = e.Payload
	}
	_, err := rediscommon.PublishToStream(ctx, p.client, p.stream, values, p.maxLen)
	return err
}

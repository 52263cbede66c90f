package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// StreamAnalyses carries completed moment analyses
	StreamAnalyses = "moments.analyzed"

	// StreamDecisions carries stored reasoning decisions
	StreamDecisions = "moments.decisions"
)

// RedisStreamPublisher publishes analysis events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a new Redis stream publisher from an
// existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// PublishAnalysis publishes a completed moment analysis to the stream
func (rsp *RedisStreamPublisher) PublishAnalysis(ctx context.Context, analysisData interface{}) error {
	return rsp.publish(ctx, StreamAnalyses, analysisData)
}

// PublishDecision publishes a stored reasoning decision to the stream
func (rsp *RedisStreamPublisher) PublishDecision(ctx context.Context, decisionData interface{}) error {
	return rsp.publish(ctx, StreamDecisions, decisionData)
}

func (rsp *RedisStreamPublisher) publish(ctx context.Context, stream string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Producer appends operation tasks to the Redis stream the worker consumes.
type Producer struct {
	client *redis.Client
	stream string
}

func NewProducer(client *redis.Client, stream string) *Producer {
	return &Producer{client: client, stream: stream}
}

func (p *Producer) EnqueueOperation(ctx context.Context, task OperationTask) error {
	values := map[string]any{
		"type":          task.Type,
		"recordId":      task.RecordID,
		"userId":        task.UserID,
		"objectKey":     task.ObjectKey,
		"inputFilename": task.InputFilename,
	}
	if task.WatermarkText != "" {
		values["watermarkText"] = task.WatermarkText
	}

	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Result()
	return err
}

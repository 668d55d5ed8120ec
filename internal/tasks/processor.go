package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"graphichelper/internal/models"
	"graphichelper/internal/queue"
)

type objectCopier interface {
	CopyToProcessed(ctx context.Context, srcKey string, dstKey string) error
}

// Processor executes queued image operations. The transformations are
// placeholders for a real model integration: each one copies the original
// into the processed bucket under the operation's output key.
type Processor struct {
	store  objectCopier
	logger zerolog.Logger
}

func NewProcessor(store objectCopier, logger zerolog.Logger) *Processor {
	return &Processor{
		store:  store,
		logger: logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	task, err := decodeTask(msg.Values)
	if err != nil {
		return fmt.Errorf("decode task: %w", err)
	}

	switch models.OperationKind(task.Type) {
	case models.OpWatermark:
		return p.handleWatermark(ctx, task)
	case models.OpRemoveBackground:
		return p.handleRemoveBackground(ctx, task)
	default:
		p.logger.Warn().Str("type", task.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func decodeTask(values map[string]interface{}) (queue.OperationTask, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return queue.OperationTask{}, err
	}
	var task queue.OperationTask
	if err := json.Unmarshal(raw, &task); err != nil {
		return queue.OperationTask{}, err
	}
	return task, nil
}

func (p *Processor) handleWatermark(ctx context.Context, task queue.OperationTask) error {
	// Real watermarking goes here; for now the output is a copy.
	outputKey := OutputKey(models.OpWatermark, task.ObjectKey)

	if err := p.store.CopyToProcessed(ctx, task.ObjectKey, outputKey); err != nil {
		return fmt.Errorf("watermark output: %w", err)
	}

	p.logger.Info().
		Str("record_id", task.RecordID).
		Str("output_key", outputKey).
		Str("watermark_text", task.WatermarkText).
		Msg("watermark applied")
	return nil
}

func (p *Processor) handleRemoveBackground(ctx context.Context, task queue.OperationTask) error {
	// Real background removal goes here; for now the output is a copy.
	outputKey := OutputKey(models.OpRemoveBackground, task.ObjectKey)

	if err := p.store.CopyToProcessed(ctx, task.ObjectKey, outputKey); err != nil {
		return fmt.Errorf("remove background output: %w", err)
	}

	p.logger.Info().
		Str("record_id", task.RecordID).
		Str("output_key", outputKey).
		Msg("background removed")
	return nil
}

// OutputKey names the processed object for an operation on the given source
// key.
func OutputKey(kind models.OperationKind, srcKey string) string {
	switch kind {
	case models.OpRemoveBackground:
		return "processed_nobg_" + srcKey
	default:
		return "processed_watermark_" + srcKey
	}
}

package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphichelper/internal/models"
)

type fakeCopier struct {
	copies  map[string]string
	copyErr error
}

func (f *fakeCopier) CopyToProcessed(_ context.Context, src, dst string) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	if f.copies == nil {
		f.copies = map[string]string{}
	}
	f.copies[src] = dst
	return nil
}

func message(values map[string]interface{}) redis.XMessage {
	return redis.XMessage{ID: "1-0", Values: values}
}

func TestHandleWatermark(t *testing.T) {
	copier := &fakeCopier{}
	p := NewProcessor(copier, zerolog.Nop())

	err := p.Handle(context.Background(), message(map[string]interface{}{
		"type":          "Watermark",
		"recordId":      "r1",
		"objectKey":     "abc.png",
		"watermarkText": "Your Logo",
	}))
	require.NoError(t, err)
	assert.Equal(t, "processed_watermark_abc.png", copier.copies["abc.png"])
}

func TestHandleRemoveBackground(t *testing.T) {
	copier := &fakeCopier{}
	p := NewProcessor(copier, zerolog.Nop())

	err := p.Handle(context.Background(), message(map[string]interface{}{
		"type":      "RemoveBackground",
		"recordId":  "r2",
		"objectKey": "abc.jpg",
	}))
	require.NoError(t, err)
	assert.Equal(t, "processed_nobg_abc.jpg", copier.copies["abc.jpg"])
}

func TestHandleUnknownTypeIsAcked(t *testing.T) {
	copier := &fakeCopier{}
	p := NewProcessor(copier, zerolog.Nop())

	err := p.Handle(context.Background(), message(map[string]interface{}{
		"type": "Sharpen",
	}))
	assert.NoError(t, err, "unknown tasks are dropped, not retried forever")
	assert.Empty(t, copier.copies)
}

func TestHandleCopyFailurePropagates(t *testing.T) {
	copier := &fakeCopier{copyErr: errors.New("bucket gone")}
	p := NewProcessor(copier, zerolog.Nop())

	err := p.Handle(context.Background(), message(map[string]interface{}{
		"type":      "Watermark",
		"objectKey": "abc.png",
	}))
	assert.Error(t, err)
}

func TestOutputKey(t *testing.T) {
	assert.Equal(t, "processed_watermark_x.png", OutputKey(models.OpWatermark, "x.png"))
	assert.Equal(t, "processed_nobg_x.png", OutputKey(models.OpRemoveBackground, "x.png"))
}

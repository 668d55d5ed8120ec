package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"

	"graphichelper/internal/ids"
	"graphichelper/internal/models"
	"graphichelper/internal/queue"
)

var (
	// ErrRecordWrite means the audit entry could not be persisted. The
	// caller surfaces it and does not retry; no compensating action is
	// taken for work already done.
	ErrRecordWrite = errors.New("operation record write failed")

	// ErrHistoryUnavailable means the history query itself failed. Callers
	// must surface it, never render it as an empty history.
	ErrHistoryUnavailable = errors.New("operation history unavailable")

	ErrInvalidOperation = errors.New("unknown operation kind")
)

type recordStore interface {
	Insert(ctx context.Context, record models.OperationRecord) error
	ListByUser(ctx context.Context, userID string) ([]models.OperationRecord, error)
}

type uploadStore interface {
	Store(ctx context.Context, file multipart.File, header *multipart.FileHeader) (StoredUpload, error)
}

type taskQueue interface {
	EnqueueOperation(ctx context.Context, task queue.OperationTask) error
}

// OperationService runs an image operation end to end: persist the upload,
// append the audit record, enqueue the processing task. The record is the
// source of truth for the audit trail; a failed enqueue is logged but does
// not undo the record.
type OperationService struct {
	records recordStore
	uploads uploadStore
	tasks   taskQueue
	budget  time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

func NewOperationService(records recordStore, uploads uploadStore, tasks taskQueue, budget time.Duration, log zerolog.Logger) *OperationService {
	if budget <= 0 {
		budget = 5 * time.Second
	}
	return &OperationService{
		records: records,
		uploads: uploads,
		tasks:   tasks,
		budget:  budget,
		now:     time.Now,
		log:     log,
	}
}

type RunInput struct {
	UserID        string
	Kind          models.OperationKind
	File          multipart.File
	Header        *multipart.FileHeader
	WatermarkText string
}

type RunResult struct {
	Record    models.OperationRecord
	ObjectKey string
}

// Run executes one operation request. Steps, in order: validate the kind,
// persist the upload, write the audit record, enqueue the task. A record
// write failure aborts with ErrRecordWrite; the stored original stays where
// it is (accepted gap, there is no rollback of completed steps).
func (s *OperationService) Run(ctx context.Context, input RunInput) (RunResult, error) {
	if !input.Kind.Valid() {
		return RunResult{}, ErrInvalidOperation
	}

	stored, err := s.uploads.Store(ctx, input.File, input.Header)
	if err != nil {
		return RunResult{}, err
	}

	record := models.OperationRecord{
		ID:            ids.New(),
		Title:         models.RecordTitle(input.Kind, input.Header.Filename),
		UserID:        input.UserID,
		OperationType: input.Kind,
		RecordedAt:    s.now(),
		InputFilename: input.Header.Filename,
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	if err := s.records.Insert(writeCtx, record); err != nil {
		return RunResult{}, fmt.Errorf("%w: %v", ErrRecordWrite, err)
	}

	task := queue.OperationTask{
		Type:          string(input.Kind),
		RecordID:      record.ID,
		UserID:        input.UserID,
		ObjectKey:     stored.ObjectKey,
		InputFilename: input.Header.Filename,
		WatermarkText: input.WatermarkText,
	}
	if err := s.tasks.EnqueueOperation(ctx, task); err != nil {
		s.log.Warn().Err(err).Str("record_id", record.ID).Msg("enqueue operation failed")
	}

	return RunResult{Record: record, ObjectKey: stored.ObjectKey}, nil
}

// History returns the user's audit trail newest-first. The empty trail is an
// empty slice; a store failure is ErrHistoryUnavailable.
func (s *OperationService) History(ctx context.Context, userID string) ([]models.OperationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}
	if records == nil {
		records = []models.OperationRecord{}
	}
	return records, nil
}

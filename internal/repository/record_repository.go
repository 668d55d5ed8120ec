package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"graphichelper/internal/models"
)

// RecordRepository appends and reads the operation audit trail. Inserts are
// plain INSERTs with a fresh id each time; two identical calls yield two
// rows. Nothing here updates or deletes.
type RecordRepository struct {
	pool *pgxpool.Pool
}

func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

func (r *RecordRepository) Insert(ctx context.Context, record models.OperationRecord) error {
	const query = `
		INSERT INTO operation_records (
			id, title, user_id, operation_type, recorded_at, input_filename
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Title,
		record.UserID,
		record.OperationType,
		record.RecordedAt,
		record.InputFilename,
	)
	return err
}

// ListByUser returns the user's records newest-first. An empty trail is a
// nil slice with a nil error; callers must treat a non-nil error as a failed
// query, never as "no records".
func (r *RecordRepository) ListByUser(ctx context.Context, userID string) ([]models.OperationRecord, error) {
	const query = `
		SELECT id, title, user_id, operation_type, recorded_at, input_filename
		FROM operation_records
		WHERE user_id = $1
		ORDER BY recorded_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *RecordRepository) List(ctx context.Context, limit, offset int) ([]models.OperationRecord, error) {
	const query = `
		SELECT id, title, user_id, operation_type, recorded_at, input_filename
		FROM operation_records
		ORDER BY recorded_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

type recordRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows recordRows) ([]models.OperationRecord, error) {
	var records []models.OperationRecord
	for rows.Next() {
		var record models.OperationRecord
		if err := rows.Scan(
			&record.ID,
			&record.Title,
			&record.UserID,
			&record.OperationType,
			&record.RecordedAt,
			&record.InputFilename,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

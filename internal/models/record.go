package models

import (
	"fmt"
	"time"
)

type OperationKind string

const (
	OpWatermark        OperationKind = "Watermark"
	OpRemoveBackground OperationKind = "RemoveBackground"
)

func (k OperationKind) Valid() bool {
	return k == OpWatermark || k == OpRemoveBackground
}

// OperationRecord is one append-only audit entry. Records are written exactly
// once per completed operation and never mutated or deleted.
type OperationRecord struct {
	ID            string
	Title         string
	UserID        string
	OperationType OperationKind
	RecordedAt    time.Time
	InputFilename string
}

// RecordTitle derives the audit entry title from the operation kind and the
// client-supplied filename.
func RecordTitle(kind OperationKind, filename string) string {
	return fmt.Sprintf("%s - %s", kind, filename)
}

package queue

// OperationTask is one queued image operation. The worker treats the
// operation itself as a placeholder and copies the original to the processed
// bucket under the output key.
type OperationTask struct {
	Type          string `json:"type"`
	RecordID      string `json:"recordId"`
	UserID        string `json:"userId"`
	ObjectKey     string `json:"objectKey"`
	InputFilename string `json:"inputFilename"`
	WatermarkText string `json:"watermarkText,omitempty"`
}

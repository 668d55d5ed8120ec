package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"graphichelper/internal/middleware"
	"graphichelper/internal/models"
	"graphichelper/internal/service"
)

type recordResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	OperationType string    `json:"operationType"`
	InputFilename string    `json:"inputFilename"`
	RecordedAt    time.Time `json:"recordedAt"`
}

func toRecordResponse(r models.OperationRecord) recordResponse {
	return recordResponse{
		ID:            r.ID,
		Title:         r.Title,
		OperationType: string(r.OperationType),
		InputFilename: r.InputFilename,
		RecordedAt:    r.RecordedAt,
	}
}

// RunOperation accepts a multipart form with the image file, the operation
// kind, and an optional watermark text. One request, one audit record.
func (h HandlerSet) RunOperation(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	kind := models.OperationKind(c.PostForm("operation"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_operation"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	result, err := h.operations.Run(c.Request.Context(), service.RunInput{
		UserID:        user.ID,
		Kind:          kind,
		File:          file,
		Header:        header,
		WatermarkText: c.PostForm("watermarkText"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUpload):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrRecordWrite):
			h.log.Error().Err(err).Str("user_id", user.ID).Msg("audit write failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "record_write_failed"})
		default:
			h.log.Error().Err(err).Str("user_id", user.ID).Msg("operation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "operation_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record":    toRecordResponse(result.Record),
		"objectKey": result.ObjectKey,
	})
}

// History returns the caller's own audit trail, newest first. A failed query
// is 502, never an empty list.
func (h HandlerSet) History(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	records, err := h.operations.History(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("history query failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "history_unavailable"})
		return
	}

	items := make([]recordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, toRecordResponse(r))
	}

	c.JSON(http.StatusOK, gin.H{"records": items})
}

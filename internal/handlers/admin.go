package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func pagination(c *gin.Context) (limit, offset int) {
	limit = 50
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	limit, offset := pagination(c)

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("admin user list failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "user_store_unavailable"})
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, userResponse{
			ID:       u.ID,
			Username: u.Username,
			IsAdmin:  u.IsAdmin,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": items})
}

func (h HandlerSet) AdminListRecords(c *gin.Context) {
	limit, offset := pagination(c)

	records, err := h.records.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("admin record list failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "history_unavailable"})
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, r := range records {
		items = append(items, gin.H{
			"id":            r.ID,
			"title":         r.Title,
			"userId":        r.UserID,
			"operationType": r.OperationType,
			"inputFilename": r.InputFilename,
			"recordedAt":    r.RecordedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"records": items})
}

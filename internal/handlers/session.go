package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"graphichelper/internal/middleware"
	"graphichelper/internal/session"
)

// CurrentView resolves the active view for this session through the page
// router.
func (h HandlerSet) CurrentView(c *gin.Context) {
	state, ok := middleware.CurrentState(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"view":    session.Route(state),
		"page":    state.Page,
		"isAdmin": state.IsAdmin,
	})
}

type navigateRequest struct {
	Page session.Page `json:"page" binding:"required"`
}

// Navigate applies a page transition through the state machine and persists
// the new page only when the guard admitted it. A denied admin navigation
// returns 403 and changes nothing.
func (h HandlerSet) Navigate(c *gin.Context) {
	state, ok := middleware.CurrentState(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	serverSession, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next, err := state.Navigate(req.Page)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "insufficient_permission",
				"view":  session.Route(state),
			})
		case errors.Is(err, session.ErrInvalidPage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_page"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		}
		return
	}

	if err := h.sessions.UpdatePage(c.Request.Context(), serverSession.ID, string(next.Page)); err != nil {
		h.log.Error().Err(err).Str("session_id", serverSession.ID).Msg("persist page failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "session_store_unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"view": session.Route(next),
		"page": next.Page,
	})
}

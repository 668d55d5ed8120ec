package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"graphichelper/internal/config"
	"graphichelper/internal/models"
	"graphichelper/internal/repository"
	"graphichelper/internal/security"
	"graphichelper/internal/session"
)

const (
	ContextUser    = "current_user"
	ContextClaims  = "access_claims"
	ContextSession = "current_session"
	ContextState   = "session_state"
)

// Auth validates the bearer token, loads the server session, and re-reads
// the user row. The token's admin claim is never trusted: the state handed
// to handlers carries the flag as stored right now, so a revoked role takes
// effect on the very next request.
func Auth(cfg *config.AppConfig, users *repository.UserRepository, sessions *repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTAccessSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		serverSession, err := sessions.GetByID(c.Request.Context(), claims.SessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_not_found"})
			return
		}

		if serverSession.UserID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_mismatch"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		_ = sessions.Touch(c.Request.Context(), serverSession.ID, c.ClientIP())

		state := session.State{
			Authenticated: true,
			UserID:        user.ID,
			IsAdmin:       user.IsAdmin,
			Page:          session.Page(serverSession.CurrentPage),
		}

		c.Set(ContextClaims, *claims)
		c.Set(ContextUser, user)
		c.Set(ContextSession, serverSession)
		c.Set(ContextState, state)

		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(ContextUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

// CurrentState returns the session state rebuilt by Auth for this request.
func CurrentState(c *gin.Context) (session.State, bool) {
	val, exists := c.Get(ContextState)
	if !exists {
		return session.State{}, false
	}
	state, ok := val.(session.State)
	return state, ok
}

// CurrentSession returns the persisted server session row.
func CurrentSession(c *gin.Context) (models.ServerSession, bool) {
	val, exists := c.Get(ContextSession)
	if !exists {
		return models.ServerSession{}, false
	}
	s, ok := val.(models.ServerSession)
	return s, ok
}

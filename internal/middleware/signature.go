package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"graphichelper/internal/config"
	"graphichelper/internal/security"
)

const signatureMaxSkew = 5 * time.Minute

// Signature requires admin requests to carry an HMAC over the request line
// and body, bound to the caller's session id. Nonces are single-use: a
// replayed request within the skew window is rejected by the redis cache.
func Signature(cfg *config.AppConfig, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, nonce, signature, err := security.ExtractSignatureHeaders(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "signature_required"})
			return
		}

		requestTime, err := time.Parse(time.RFC3339, date)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_date"})
			return
		}
		if skew := time.Since(requestTime); skew > signatureMaxSkew || skew < -signatureMaxSkew {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "stale_signature"})
			return
		}

		claimsVal, _ := c.Get(ContextClaims)
		claims, ok := claimsVal.(security.AccessClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, err = io.ReadAll(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable_body"})
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		valid := security.ValidateSignature(
			cfg.Security.SignatureSecret,
			claims.SessionID,
			signature,
			c.Request.Method,
			c.Request.URL.Path,
			c.Request.URL.RawQuery,
			body,
			date,
			nonce,
		)
		if !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_signature"})
			return
		}

		nonceKey := "signonce:" + claims.SessionID + ":" + nonce
		set, err := redisClient.SetNX(c.Request.Context(), nonceKey, 1, signatureMaxSkew*2).Result()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "nonce_check_failed"})
			return
		}
		if !set {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "replayed_nonce"})
			return
		}

		c.Next()
	}
}

package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// Admin requests carry an HMAC over the request line and body in addition to
// the bearer token. The nonce is single-use (replay cache lives in redis).
const (
	HeaderSignature = "X-GH-Signature"
	HeaderDate      = "X-GH-Date"
	HeaderNonce     = "X-GH-Nonce"
)

func ComputeBodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func ComputeSignature(secret string, sessionID string, method string, path string, query string, bodyHash string, date string, nonce string) string {
	data := strings.Join([]string{
		sessionID,
		strings.ToUpper(method),
		path,
		query,
		bodyHash,
		date,
		nonce,
	}, "\n")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func ValidateSignature(secret string, sessionID string, signature string, method string, path string, query string, body []byte, date string, nonce string) bool {
	expected := ComputeSignature(secret, sessionID, method, path, query, ComputeBodyHash(body), date, nonce)
	return hmac.Equal([]byte(signature), []byte(expected))
}

func ExtractSignatureHeaders(c *gin.Context) (date string, nonce string, signature string, err error) {
	date = c.GetHeader(HeaderDate)
	nonce = c.GetHeader(HeaderNonce)
	signature = c.GetHeader(HeaderSignature)

	if date == "" || nonce == "" || signature == "" {
		return "", "", "", fmt.Errorf("missing signature headers")
	}
	return date, nonce, signature, nil
}

package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"user_auth_service/internal/auth"
	"user_auth_service/internal/observability"

	"github.com/gin-gonic/gin"
)

const maxTokenBodyBytes = 1 << 20

// AuthMiddleware is the gate in front of every protected route. It extracts a
// candidate token from the request, verifies it, and attaches the decoded
// claims to the context. The gate is stateless: it never consults the record
// store, so a still-valid token keeps passing even after its user is deleted.
func AuthMiddleware(codec *auth.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			observability.IncTokenRejection("missing")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "No token provided.",
			})
			return
		}

		claims, err := codec.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				observability.IncTokenRejection("expired")
			} else {
				observability.IncTokenRejection("invalid")
			}
			// Rejection is a structured non-success body, not an HTTP error
			// status. The reason is never exposed to the caller.
			c.AbortWithStatusJSON(http.StatusOK, gin.H{
				"success": false,
				"message": "Failed to authenticate token.",
			})
			return
		}

		c.Set(auth.ClaimsKey, claims)
		c.Next()
	}
}

// tokenFromRequest checks the request body, then the query string, then the
// x-access-token header. First present value wins.
func tokenFromRequest(c *gin.Context) string {
	if token := tokenFromBody(c); token != "" {
		return token
	}
	if token := c.Query("token"); token != "" {
		return token
	}
	return c.GetHeader("x-access-token")
}

// tokenFromBody peeks at a JSON body for a "token" field and restores the
// body so downstream handlers can still bind it.
func tokenFromBody(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return ""
	}
	if !strings.Contains(c.ContentType(), "application/json") {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTokenBodyBytes))
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Token
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"bace/models"
	"bace/services"

	"github.com/gin-gonic/gin"
)

const (
	ClaimsKey = "claims"

	userTokenHeader  = "X-Auth-Token"
	adminTokenHeader = "X-Admin-Token"
)

// TokenParser verifies session tokens.
type TokenParser interface {
	ParseMember(token string) (*models.SessionClaims, error)
	ParseAdmin(token string) (*models.SessionClaims, error)
}

func extractToken(c *gin.Context, fallbackHeader string) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")); token != "" {
			return token
		}
	}
	return strings.TrimSpace(c.GetHeader(fallbackHeader))
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "message": message})
}

// MemberRequired accepts a subscriber token from the Authorization header or
// X-Auth-Token.
func MemberRequired(sessions TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, userTokenHeader)
		if token == "" {
			abort(c, http.StatusUnauthorized, "Authentication token missing")
			return
		}

		claims, err := sessions.ParseMember(token)
		if err != nil {
			abort(c, http.StatusForbidden, "Invalid or expired token")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// AdminRequired accepts an admin token from the Authorization header or
// X-Admin-Token.
func AdminRequired(sessions TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, adminTokenHeader)
		if token == "" {
			abort(c, http.StatusUnauthorized, "Admin token missing")
			return
		}

		claims, err := sessions.ParseAdmin(token)
		if errors.Is(err, services.ErrNotAdmin) {
			abort(c, http.StatusForbidden, "Access denied")
			return
		}
		if err != nil {
			abort(c, http.StatusForbidden, "Invalid or expired admin token")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Claims returns the session claims stored by the auth middleware.
func Claims(c *gin.Context) *models.SessionClaims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*models.SessionClaims); ok {
			return claims
		}
	}
	return nil
}

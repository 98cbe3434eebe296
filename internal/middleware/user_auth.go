package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"optika/internal/auth"
)

const (
	// TokenCookie carries the session token.
	TokenCookie = "token"

	claimsKey = "claims"
)

// tokenFromRequest prefers the session cookie and falls back to a bearer
// header for API clients.
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}

	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.Split(raw, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// ClaimsFrom returns the claims the gate attached, or nil for anonymous
// requests.
func ClaimsFrom(c *gin.Context) *auth.Claims {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*auth.Claims)
	return claims
}

// SetClaims attaches claims outside the gate, mainly for handler tests.
func SetClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
}

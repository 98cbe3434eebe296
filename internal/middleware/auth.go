package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"optika/internal/auth"
)

// Access is the level of authentication a route requires.
type Access int

const (
	// Public routes never look at the token.
	Public Access = iota
	// Optional routes attach claims when a valid token is present.
	Optional
	// Authenticated routes reject requests without a valid token.
	Authenticated
	// Admin routes additionally require the admin role.
	Admin
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Optional:
		return "optional"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Policy maps "METHOD /full/path" to the access a route requires.
type Policy map[string]Access

func PolicyKey(method, fullPath string) string {
	return method + " " + fullPath
}

// Gate enforces policy for every matched route. A matched route missing
// from the policy is treated as admin-only; unmatched requests pass through
// to the 404 handler.
func Gate(tokens *auth.TokenService, policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		fullPath := c.FullPath()
		if fullPath == "" {
			c.Next()
			return
		}

		access, ok := policy[PolicyKey(c.Request.Method, fullPath)]
		if !ok {
			log.Printf("[AUTH] [WARN] no policy for %s %s, requiring admin", c.Request.Method, fullPath)
			access = Admin
		}

		if access == Public {
			c.Next()
			return
		}

		claims, valid := tokens.Verify(tokenFromRequest(c))
		if valid {
			c.Set(claimsKey, claims)
		}

		switch access {
		case Optional:
			c.Next()
			return
		case Authenticated:
			if !valid {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
		case Admin:
			if !valid {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			if !claims.IsAdmin() {
				log.Println("[AUTH] [ERROR] admin route denied for user:", claims.Username)
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}

		c.Next()
	}
}

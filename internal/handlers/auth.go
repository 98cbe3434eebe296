package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"optika/internal/auth"
	"optika/internal/middleware"
	"optika/internal/store"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// CookieOptions controls the session cookie attributes.
type CookieOptions struct {
	Secure bool
}

func setTokenCookie(c *gin.Context, value string, maxAge int, opts CookieOptions) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, value, maxAge, "/", "", opts.Secure, true)
}

func Login(backend store.Backend, tokens *auth.TokenService, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		username := strings.TrimSpace(req.Username)
		if username == "" || req.Password == "" {
			respondWithError(c, http.StatusBadRequest, route, "username and password are required")
			return
		}

		if err := ensureDBConnection(c.Request.Context(), backend); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		user, err := backend.UserStore().FindByUsername(c.Request.Context(), username)
		if errors.Is(err, store.ErrNotFound) {
			auth.BurnPasswordCheck(req.Password)
			log.Println("[AUTH] [ERROR] login invalid credentials")
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] user lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			log.Println("[AUTH] [ERROR] login invalid credentials")
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		token, err := tokens.Create(user.ID.Hex(), user.Username, user.Role)
		if err != nil {
			log.Println("[AUTH] [ERROR] token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		setTokenCookie(c, token, int(tokens.TTL().Seconds()), opts)

		log.Println("[AUTH] [INFO] login succeeded for user:", user.Username)
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"user": sessionUser{
				ID:       user.ID.Hex(),
				Username: user.Username,
				Role:     user.Role,
			},
		})
	}
}

// Logout always expires the cookie, whether or not the caller was signed in.
func Logout(opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		setTokenCookie(c, "", -1, opts)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

func CheckAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.ClaimsFrom(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"authenticated": true,
			"user": sessionUser{
				ID:       claims.ID,
				Username: claims.Username,
				Role:     claims.Role,
			},
		})
	}
}

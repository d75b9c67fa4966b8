package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/auth"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/server/respond"
)

const (
	userSubKey   = "userSub"
	userEmailKey = "userEmail"

	// Identity used when no identity provider is configured (local dev).
	devUserSub   = "dev-user"
	devUserEmail = "dev@localhost"
)

// Auth validates the app session token and stores identity in context.
// When authRequired is false (identity provider unconfigured) requests
// without credentials run as a fixed dev identity.
func Auth(authRequired bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		// Login flow and provider webhooks carry no session token.
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/auth/") || path == "/api/v1/health" || path == "/api/stripe/webhook" {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))

		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			claims, err := auth.VerifyJWT(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			c.Set(userSubKey, claims.Sub)
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			c.Next()
			return
		}

		if authRequired {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(userSubKey, devUserSub)
		c.Set(userEmailKey, devUserEmail)
		c.Next()
	}
}

// UserSubFromContext fetches the identity-provider subject set by the auth middleware.
func UserSubFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userSubKey)
	if sub, ok := val.(string); ok {
		return sub
	}
	return ""
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}

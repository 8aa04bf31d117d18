package middleware

import (
	"context"
	"net/http"
	"strings"

	"stockroom/internal/apierror"
	"stockroom/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	UserKey    = "user"
	AuthViaKey = "authenticated_via"

	ViaCookie = "cookie"
	ViaHeader = "header"
)

const msgNotAuthenticated = "Authentication credentials were not provided."

// Authenticator resolves a token key to an active user, or nil.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*model.User, error)
}

// TokenAuth authenticates every protected route. A non-empty auth cookie wins:
// the Authorization header is only consulted without one, so an invalid
// cookie is never rescued by a valid header. The header accepts both
// "Token <key>" and "Bearer <key>".
func TokenAuth(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, via := credentials(c, cookieName)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(msgNotAuthenticated))
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), key)
		if err != nil {
			log.Warn().
				Str("request_id", c.GetString(RequestIDKey)).
				Err(err).
				Msg("auth: token lookup failed")
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(msgNotAuthenticated))
			return
		}

		c.Set(UserKey, user)
		c.Set(AuthViaKey, via)
		c.Next()
	}
}

func credentials(c *gin.Context, cookieName string) (key, via string) {
	if cookie, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie), ViaCookie
	}
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 {
		return "", ""
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return parts[1], ViaHeader
	}
	return "", ""
}

// CurrentUser returns the authenticated user set by TokenAuth.
func CurrentUser(c *gin.Context) *model.User {
	user, _ := c.Get(UserKey)
	u, _ := user.(*model.User)
	return u
}

// AuthenticatedVia reports whether the request authenticated with the cookie
// or the Authorization header.
func AuthenticatedVia(c *gin.Context) string {
	return c.GetString(AuthViaKey)
}

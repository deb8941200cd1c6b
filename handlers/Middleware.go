package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vendorportal/logger"
	"vendorportal/services"
	"vendorportal/storage"
	"vendorportal/utils"
)

const principalKey = "principal"

// RequestID tags the request context with an id taken from X-Request-ID or
// generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// bearerToken returns the token of an "Authorization: Bearer ..." header.
// A bare token is accepted too.
func bearerToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader("Authorization"))
	token = strings.TrimPrefix(token, "Bearer ")
	return strings.TrimSpace(token)
}

// AuthRequired rejects requests without a valid token and live session.
func AuthRequired(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
			return
		}
		p, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": authMessage(err)})
			return
		}
		c.Set(principalKey, *p)
		c.Next()
	}
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, utils.ErrInvalidToken):
		return "Invalid or expired token"
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, services.ErrSessionExpired):
		return "Invalid or expired session"
	default:
		return "Unauthorized"
	}
}

// currentPrincipal returns the caller set by AuthRequired.
func currentPrincipal(c *gin.Context) services.Principal {
	p, _ := c.Get(principalKey)
	principal, _ := p.(services.Principal)
	return principal
}

package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/carewatch-api/pkg/auth"
	"github.com/jwalitptl/carewatch-api/pkg/errors"
	"github.com/jwalitptl/carewatch-api/pkg/httputil"
)

const (
	HeaderServiceKey   = "X-Service-Key"
	ContextCaregiverID = "caregiver_id"
	ContextEmail       = "caregiver_email"
)

// TokenAuthenticator validates a bearer token and returns its claims.
type TokenAuthenticator interface {
	Authenticate(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenAuthenticator
}

func NewAuthMiddleware(tokens TokenAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireCaregiver rejects requests without a valid caregiver bearer token.
func (m *AuthMiddleware) RequireCaregiver() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := m.tokens.Authenticate(parts[1])
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(ContextCaregiverID, claims.CaregiverID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// ServiceKey guards machine-to-machine endpoints. An empty key disables the check.
func ServiceKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := c.GetHeader(HeaderServiceKey)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

// CaregiverID returns the authenticated caregiver set by RequireCaregiver.
func CaregiverID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextCaregiverID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func abortUnauthorized(c *gin.Context) {
	httputil.RespondWithError(c, errors.Unauthorized(nil))
	c.Abort()
}

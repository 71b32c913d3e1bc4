package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vitaltrack/vitaltrack-api/internal/model"
	"github.com/vitaltrack/vitaltrack-api/internal/service/auth"
	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
	"github.com/vitaltrack/vitaltrack-api/pkg/httputil"
)

// PrincipalKey is the context key carrying the authenticated principal.
const PrincipalKey = "principal"

// TokenKey is the context key carrying the raw bearer token (used by logout).
const TokenKey = "bearer_token"

type AuthMiddleware struct {
	authSvc *auth.Service
}

func NewAuthMiddleware(authSvc *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// Authenticate verifies the bearer credential and attaches the resolved
// principal to the request context. Missing, malformed, expired or orphaned
// credentials all fail with 401.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, apperrors.NewUnauthenticated("missing authorization header", nil))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, apperrors.NewUnauthenticated("invalid authorization format", nil))
			return
		}

		principal, err := m.authSvc.VerifyAccess(c.Request.Context(), parts[1])
		if err != nil {
			abortWith(c, err)
			return
		}

		c.Set(PrincipalKey, principal)
		c.Set(TokenKey, parts[1])
		c.Next()
	}
}

// RequireRoles rejects authenticated principals whose role is not in the
// allowed set. This is a 403, distinct from the 401 credential failures.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortWith(c, apperrors.NewUnauthenticated("", nil))
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		abortWith(c, apperrors.NewForbidden("insufficient role"))
	}
}

// GetPrincipal returns the authenticated principal attached by Authenticate.
func GetPrincipal(c *gin.Context) (*model.Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, false
	}
	principal, ok := v.(*model.Principal)
	return principal, ok
}

func abortWith(c *gin.Context, err error) {
	httputil.RespondWithError(c, err)
	c.Abort()
}

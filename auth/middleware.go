package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const principalKey = "authPrincipal"

// RequireToken validates the Authorization bearer token and attaches the
// resulting principal to the request context. Verification failures are
// terminal 401s; the body names the failure class but never signature
// internals.
func RequireToken(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		principal, err := tokens.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, ErrTokenExpired) {
				reason = "expired_token"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequirePolicy evaluates a named policy against the caller's claim set.
// It must run after RequireToken. Denials are terminal 403s.
func RequirePolicy(authorizer *Authorizer, name string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		if err := authorizer.Evaluate(name, principal.Claims); err != nil {
			if errors.Is(err, ErrPolicyNotFound) {
				logger.Error("policy not registered", zap.String("policy", name))
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}

// PrincipalFromContext extracts the verified principal attached by
// RequireToken.
func PrincipalFromContext(c *gin.Context) (*Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*Principal)
	return principal, ok
}

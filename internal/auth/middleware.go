package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

const contextKeyClaims = "auth_claims"

// ClaimsFromContext returns the token claims set by RequireToken, or nil if
// the request was not authenticated.
func ClaimsFromContext(c *gin.Context) *Claims {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return nil
	}
	claims, ok := v.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// RequireToken returns a middleware that checks the Authorization header for
// a valid bearer token and stores its claims in context. A missing header,
// wrong scheme, or failed validation all produce the same 401.
func RequireToken(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		claims, ok := issuer.Validate(strings.TrimSpace(header[len(bearerPrefix):]))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(contextKeyClaims, claims)
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/flowsight/flowsight/internal/auth/jwt"
	"github.com/flowsight/flowsight/internal/workspace"
)

const claimsKey = "claims"

// JWTAuthMiddleware creates a middleware that rejects requests without a
// valid bearer token.
func JWTAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := bearerClaims(c, jwtService)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalJWTMiddleware attaches claims when a valid bearer token is
// present and lets the request through either way. Analytics reads use
// it: an anonymous caller resolves to the demo workspace.
func OptionalJWTMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := bearerClaims(c, jwtService); claims != nil {
			c.Set(claimsKey, claims)
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, jwtService *jwt.Service) *jwt.Claims {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil
	}

	claims, err := jwtService.ValidateToken(parts[1])
	if err != nil {
		return nil
	}
	return claims
}

// ClaimsFromContext returns the verified claims, or nil on an
// unauthenticated request.
func ClaimsFromContext(c *gin.Context) *jwt.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		return nil
	}
	return claims
}

// IdentityFromContext converts the request's claims into the resolver's
// identity parameter; nil for anonymous callers.
func IdentityFromContext(c *gin.Context) *workspace.Identity {
	claims := ClaimsFromContext(c)
	if claims == nil {
		return nil
	}
	return &workspace.Identity{UserID: claims.UserID, Email: claims.Email}
}

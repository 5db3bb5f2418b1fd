package middleware

import (
	"net/http"
	"strings"

	"github.com/lamatmed/e-rim-api/internal/model"
	"github.com/lamatmed/e-rim-api/internal/repository"
	"github.com/lamatmed/e-rim-api/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	// AuthUserKey is the context key under which the resolved, sanitized
	// user is stored for downstream handlers.
	AuthUserKey = "authUser"
)

// JWTAuthMiddleware creates a middleware for JWT authentication. It
// resolves the token's subject against the user store on every request, so
// a deleted user is rejected and a blocked user is cut off immediately,
// even with a structurally valid token.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		tokenString := parts[1]
		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			// Bad signature, expired and malformed all collapse into one
			// message so the response does not leak which check failed.
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
			return
		}
		if user.Blocked {
			// Deliberately distinct from the token failures above: the
			// token was valid, the account state is the problem.
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is blocked"})
			return
		}

		// Set resolved user (password hash stripped) in context
		c.Set(AuthUserKey, user.Sanitized())

		c.Next()
	}
}

// GetAuthUser extracts the authenticated user bound by JWTAuthMiddleware.
func GetAuthUser(c *gin.Context) (*model.User, bool) {
	val, exists := c.Get(AuthUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	if !ok {
		return nil, false
	}
	return user, true
}

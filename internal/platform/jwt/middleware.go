package jwtmw

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"task_backend/internal/feature/auth/domain/entity"
)

const (
	// ContextUserID is the gin context key holding the authenticated user's ID.
	ContextUserID = "userID"
	// ContextUser is the gin context key holding the authenticated user entity.
	ContextUser = "user"
	// CookieName is the cookie carrying the session token.
	CookieName = "session"
	// EnvKeyJWTSecret is the environment variable holding the signing secret.
	EnvKeyJWTSecret = "JWT_SECRET"
)

// UserValidator materializes the caller identity from a verified token payload.
// It is implemented by the auth usecase.
type UserValidator interface {
	// Validate returns the user for the given ID, or an error if the user no longer exists.
	Validate(ctx context.Context, userID uint) (*entity.User, error)
}

// AuthRequired returns a Gin middleware function that validates session tokens
// and restricts access to authenticated users only.
// The token is read from the session cookie first, falling back to an
// Authorization bearer header for non-browser clients.
func AuthRequired(validator UserValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract token from cookie, then Authorization header
		tokenStr, err := c.Cookie(CookieName)
		if err != nil || tokenStr == "" {
			auth := c.GetHeader("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
				return
			}
			tokenStr = strings.TrimPrefix(auth, "Bearer ")
		}

		// 2. Load secret key from environment variable
		secret := os.Getenv(EnvKeyJWTSecret)
		if secret == "" {
			// Server misconfiguration (JWT_SECRET not set)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		// 3. Parse and verify JWT signature
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			// Check signing algorithm (only HMAC allowed)
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			// Validation error, expired or invalid token
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 4. Extract the subject claim (payload)
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		sub, ok := claims["sub"].(float64) // JWT numbers are decoded as float64
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 5. Materialize the caller; a deleted user invalidates outstanding tokens
		user, err := validator.Validate(c.Request.Context(), uint(sub))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)

		// 6. Pass control to the next handler
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored in the gin context.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok
}

// CurrentUserID returns the authenticated user's ID stored in the gin context.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

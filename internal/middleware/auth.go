package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"blog-comment-api/internal/response"
)

// Context keys set by the auth middleware.
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// Auth returns a middleware that requires a valid bearer token. The numeric
// user id from the "user_id" claim (or "sub") and the "role" claim are
// stored on the gin context.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, ok := authenticate(c, jwtSecret, true)
		if !ok {
			return
		}
		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, role)
		c.Next()
	}
}

// OptionalAuth resolves the viewer when a token is present but lets
// anonymous requests through. Listing uses it so is_liked can be overlaid
// for logged-in readers.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		userID, role, ok := authenticate(c, jwtSecret, false)
		if ok {
			c.Set(ContextUserID, userID)
			c.Set(ContextUserRole, role)
		}
		c.Next()
	}
}

// authenticate parses the bearer token and returns the user id and role.
// When required is true a failure aborts the request with 401.
func authenticate(c *gin.Context, jwtSecret string, required bool) (int64, string, bool) {
	fail := func(message string) (int64, string, bool) {
		if required {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, message)
			c.Abort()
		}
		return 0, "", false
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return fail("Authorization header is required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return fail("Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return fail("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fail("Invalid token claims")
	}

	userID, ok := numericClaim(claims, "user_id")
	if !ok {
		userID, ok = numericClaim(claims, "sub")
	}
	if !ok {
		return fail("User ID not found in token")
	}

	role, _ := claims["role"].(string)
	return userID, role, true
}

// numericClaim reads an int64 claim. JSON numbers decode as float64; string
// claims holding digits are accepted too.
func numericClaim(claims jwt.MapClaims, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case string:
		if v == "" {
			return 0, false
		}
		var id int64
		for _, r := range v {
			if r < '0' || r > '9' {
				return 0, false
			}
			id = id*10 + int64(r-'0')
		}
		return id, true
	default:
		return 0, false
	}
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/innerlight/circles-backend/internal/common"
	"github.com/innerlight/circles-backend/pkg/jwt"
)

// JWTAuth JWT authentication middleware
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract Authorization header
		tokenString, ok := bearerToken(c)
		if !ok {
			common.ErrorResponse(c, 401, "Missing or malformed authorization header", nil)
			c.Abort()
			return
		}

		// 2. Verify token
		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, 401, "Token expired", err)
			} else {
				common.ErrorResponse(c, 401, "Invalid token", err)
			}
			c.Abort()
			return
		}

		// 3. Store user info in context
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth sets the user when a valid token is present and never aborts
func OptionalJWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := jwtManager.VerifyToken(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// bearerToken reads "Authorization: Bearer x", falling back to ?token= for
// websocket upgrades where browsers can't set headers
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" && c.GetHeader("Upgrade") != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set("userID", claims.UserID)
	c.Set("nickname", claims.Nickname)
	c.Set("level", claims.Level)
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get("userID")
	if !exists {
		return ""
	}
	if str, ok := userID.(string); ok {
		return str
	}
	return ""
}

// GetNickname extracts nickname from context
func GetNickname(c *gin.Context) string {
	nickname, exists := c.Get("nickname")
	if !exists {
		return ""
	}
	if str, ok := nickname.(string); ok {
		return str
	}
	return ""
}

package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/models"
	"github.com/tertulia/meeting-server/utils"
)

// AuthJWT checks Authorization: Bearer <token>, validates the JWT, loads the
// user and injects it into the context.
func AuthJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing or invalid Authorization header"})
			return
		}
		rawToken := strings.TrimSpace(authHeader[7:])

		claims, err := utils.VerifyToken(rawToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		// UserID in the claims is a string, parse it to look up the primary key
		uid, err := strconv.ParseUint(claims.UserID, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid subject"})
			return
		}

		var user models.User
		if err := config.DB.First(&user, uid).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Account is deactivated"})
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxUserPublic, user.Public())

		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present and continues
// anonymously otherwise.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			c.Next()
			return
		}
		claims, err := utils.VerifyToken(strings.TrimSpace(authHeader[7:]))
		if err != nil {
			c.Next()
			return
		}
		uid, err := strconv.ParseUint(claims.UserID, 10, 64)
		if err != nil {
			c.Next()
			return
		}
		var user models.User
		if err := config.DB.First(&user, uid).Error; err == nil && user.IsActive {
			c.Set(CtxUser, user)
			c.Set(CtxUserPublic, user.Public())
		}
		c.Next()
	}
}

// RequireAdmin guards admin-only routes. Must run after AuthJWT.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUser)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		u := v.(models.User)
		if !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		c.Next()
	}
}

// RequireOrganizerRole allows only users whose role can own meetings.
func RequireOrganizerRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUser)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		u := v.(models.User)
		if !u.CanCreateMeetings() && !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Only creators and cooperators can do this"})
			return
		}
		c.Next()
	}
}

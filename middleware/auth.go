package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medisync/hospital-api/config"
	"github.com/medisync/hospital-api/model"
	"github.com/medisync/hospital-api/util"
)

// Context keys set for an authenticated caller.
const (
	UserIDKey   = "user_id"
	RoleIDKey   = "role_id"
	RoleNameKey = "role_name"
)

// ExtractToken returns the bearer credential from the Authorization header,
// falling back to the session-token header used by older clients.
func ExtractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.GetHeader("session-token")
}

// resolveSession validates a token against Redis first, then the sessions
// table. On success it returns the user id, role id and role name.
func resolveSession(c *gin.Context, token string) (uint, uint32, string, bool) {
	db := GetDB(c)
	if db == nil {
		return 0, 0, "", false
	}

	// Fast path: the Redis mirror stores "userID:roleID" under session:<token>.
	if rdb := config.GetRedisClient(); rdb != nil {
		val, err := rdb.Get(context.Background(), fmt.Sprintf("session:%s", token)).Result()
		if err == nil {
			var userID uint
			var roleID uint32
			if _, scanErr := fmt.Sscanf(val, "%d:%d", &userID, &roleID); scanErr == nil {
				var role model.Role
				if db.First(&role, roleID).Error == nil {
					return userID, roleID, role.Name, true
				}
			}
		}
	}

	// Authoritative path: join sessions, users and roles.
	var result struct {
		UserID uint   `gorm:"column:user_id"`
		RoleID uint32 `gorm:"column:role_id"`
		Role   string `gorm:"column:role"`
	}
	err := db.Table("sessions").
		Select("sessions.user_id, users.role_id, roles.name as role").
		Joins("JOIN users ON sessions.user_id = users.id").
		Joins("JOIN roles ON users.role_id = roles.id").
		Where("session_token = ? AND expires_at > ? AND sessions.deleted_at IS NULL", token, time.Now()).
		First(&result).Error
	if err != nil {
		return 0, 0, "", false
	}
	return result.UserID, result.RoleID, result.Role, true
}

func setCaller(c *gin.Context, userID uint, roleID uint32, roleName string) {
	c.Set(UserIDKey, userID)
	c.Set(RoleIDKey, roleID)
	c.Set(RoleNameKey, roleName)
}

// SessionAuth requires a valid bearer credential and aborts with 401 otherwise.
func SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Authentication required",
				Err: fmt.Errorf("no bearer credential provided"),
			})
			c.Abort()
			return
		}

		userID, roleID, roleName, ok := resolveSession(c, token)
		if !ok {
			util.LogUnauthorizedAccess(util.UnauthorizedAccessParams{
				IP:       c.ClientIP(),
				Resource: c.Request.URL.Path,
				Reason:   "invalid or expired session",
			})
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Invalid or expired session",
				Err: fmt.Errorf("session not found"),
			})
			c.Abort()
			return
		}

		setCaller(c, userID, roleID, roleName)
		c.Next()
	}
}

// OptionalSessionAuth resolves the caller when a valid credential is present
// but never rejects the request. Used by endpoints open to guests that link
// the authenticated user when available.
func OptionalSessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := ExtractToken(c); token != "" {
			if userID, roleID, roleName, ok := resolveSession(c, token); ok {
				setCaller(c, userID, roleID, roleName)
			}
		}
		c.Next()
	}
}

// RequireRole gates a route to the named roles. Must run after SessionAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleName, ok := GetRoleName(c)
		if !ok {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Authentication required",
				Err: fmt.Errorf("caller role not resolved"),
			})
			c.Abort()
			return
		}
		if !util.Contains(roleName, roles) {
			userID, _ := GetUserID(c)
			util.LogUnauthorizedAccess(util.UnauthorizedAccessParams{
				UserID:   fmt.Sprintf("%d", userID),
				IP:       c.ClientIP(),
				Resource: c.Request.URL.Path,
				Reason:   fmt.Sprintf("role %s not permitted", roleName),
			})
			util.CallUserForbidden(c, util.APIErrorParams{
				Msg: "You do not have permission to perform this action",
				Err: fmt.Errorf("role %s not permitted", roleName),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated caller's user id.
func GetUserID(c *gin.Context) (uint, bool) {
	val, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := val.(uint)
	return id, ok
}

// GetRoleID returns the authenticated caller's role id.
func GetRoleID(c *gin.Context) (uint32, bool) {
	val, ok := c.Get(RoleIDKey)
	if !ok {
		return 0, false
	}
	id, ok := val.(uint32)
	return id, ok
}

// GetRoleName returns the authenticated caller's role name.
func GetRoleName(c *gin.Context) (string, bool) {
	val, ok := c.Get(RoleNameKey)
	if !ok {
		return "", false
	}
	name, ok := val.(string)
	return name, ok
}

package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medisync/hospital-api/util"
)

func requestDetails(c *gin.Context, status int, duration time.Duration, userID uint, roleID uint32) map[string]interface{} {
	details := map[string]interface{}{
		"method":      c.Request.Method,
		"path":        c.FullPath(),
		"raw_path":    c.Request.URL.Path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
		"query":       c.Request.URL.RawQuery,
	}
	if userID != 0 {
		details["user_id"] = userID
	}
	if roleID != 0 {
		details["role_id"] = roleID
	}
	return details
}

// EndpointCallLogger records every HTTP request as an ENDPOINT_CALL audit
// event. DatabaseMiddleware must run first so the caller's email can be
// resolved, and util.SetSecurityLoggerDB must have been called at startup
// for events to reach the security_logs table.
func EndpointCallLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		userID, _ := GetUserID(c)
		roleID, _ := GetRoleID(c)

		// Resolve the caller's email through the cache for the audit record.
		email := ""
		if userID != 0 {
			if db := GetDB(c); db != nil {
				email = util.GetUserEmail(db, userID)
			}
		}

		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventEndpointCall,
			UserID:    fmt.Sprintf("%d", userID),
			Email:     email,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details:   requestDetails(c, status, duration, userID, roleID),
		})
	}
}

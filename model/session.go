package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is a server-side record of an issued bearer token. Tokens are
// mirrored in Redis for fast lookup but the DB row is authoritative.
type Session struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"column:user_id;index"`
	SessionToken string    `json:"session_token" gorm:"column:session_token;type:varchar(512);index"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"column:expires_at"`
	ClientIP     string    `json:"client_ip" gorm:"column:client_ip;type:varchar(45)"`
	Browser      string    `json:"browser" gorm:"column:browser;type:varchar(512)"`
}

package model

import "gorm.io/gorm"

// BloodGroups lists the accepted blood group values for users and donor search.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// User represents an account in the system: a patient, a hospital admin or a
// doctor. Password and salt are never serialized.
// @Description User account information
type User struct {
	gorm.Model
	FullName     string `json:"full_name" gorm:"column:full_name;index" example:"John Doe"`
	Email        string `json:"email" gorm:"column:email;uniqueIndex;type:varchar(191)" example:"john@example.com"`
	Password     string `json:"-" gorm:"column:password"`
	PasswordSalt string `json:"-" gorm:"column:password_salt"`
	RoleID       uint32 `json:"role_id" gorm:"column:role_id"`
	Phone        string `json:"phone" gorm:"column:phone" example:"+1-555-0100"`
	BloodGroup   string `json:"blood_group" gorm:"column:blood_group;type:varchar(3);index" example:"O+"`
	// Geospatial point for donor search, [longitude, latitude]. Defaults to the origin.
	Longitude  float64 `json:"longitude" gorm:"column:longitude;default:0"`
	Latitude   float64 `json:"latitude" gorm:"column:latitude;default:0"`
	Street     string  `json:"street" gorm:"column:street"`
	City       string  `json:"city" gorm:"column:city"`
	State      string  `json:"state" gorm:"column:state"`
	PostalCode string  `json:"postal_code" gorm:"column:postal_code"`
	// Login throttling state.
	FailedAttempts int    `json:"-" gorm:"column:failed_attempts;default:0"`
	LockedUntil    *int64 `json:"-" gorm:"column:locked_until"`
}

// ValidBloodGroup reports whether s is one of the accepted blood group values.
func ValidBloodGroup(s string) bool {
	for _, bg := range BloodGroups {
		if bg == s {
			return true
		}
	}
	return false
}

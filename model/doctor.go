package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Doctor is the professional profile backing a doctor-role user.
// @Description Doctor profile information
type Doctor struct {
	gorm.Model
	Name            string `json:"name" gorm:"column:name" example:"Dr. Jane Smith"`
	Specialization  string `json:"specialization" gorm:"column:specialization" example:"Cardiology"`
	Qualifications  string `json:"qualifications" gorm:"column:qualifications" example:"MBBS, MD"`
	ExperienceYears int    `json:"experience_years" gorm:"column:experience_years;default:0" example:"10"`
	UserID          uint   `json:"user_id" gorm:"column:user_id;index"`
	HospitalID      uint   `json:"hospital_id" gorm:"column:hospital_id;index"`
	// AvailableSlots holds an ordered JSON array of RFC3339 timestamps.
	AvailableSlots datatypes.JSON `json:"available_slots" gorm:"column:available_slots;type:json"`
	ProfileImage   string         `json:"profile_image" gorm:"column:profile_image;default:no-photo.jpg" example:"no-photo.jpg"`
}

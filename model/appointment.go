package model

import "gorm.io/gorm"

// Appointment statuses. Transitions are deliberately unconstrained.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment links a named patient (possibly a guest) to a doctor at a
// date/time. UserID is set only when the booking request carried a valid
// bearer token.
// @Description Appointment booking information
type Appointment struct {
	gorm.Model
	PatientName string `json:"patient_name" gorm:"column:patient_name" example:"John Doe"`
	Phone       string `json:"phone" gorm:"column:phone" example:"+1-555-0100"`
	DoctorID    uint   `json:"doctor_id" gorm:"column:doctor_id;index"`
	Date        string `json:"date" gorm:"column:date" example:"2025-02-01"`
	Time        string `json:"time" gorm:"column:time" example:"10:30"`
	Type        string `json:"type" gorm:"column:type;default:checkup" example:"checkup"`
	Status      string `json:"status" gorm:"column:status;default:scheduled" example:"scheduled"`
	Notes       string `json:"notes" gorm:"column:notes"`
	UserID      *uint  `json:"user_id" gorm:"column:user_id;index"`
}

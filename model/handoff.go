package model

import (
	"time"

	"gorm.io/gorm"
)

// Attendance statuses for the nurse handoff board.
const (
	AttendanceClockedIn  = "Clocked In"
	AttendanceClockedOut = "Clocked Out"
)

// HandoffNote is a shift report written by a nurse on the handoff board.
// The board only ever shows notes from the current local day.
// @Description Nurse handoff note
type HandoffNote struct {
	gorm.Model
	NurseID   string    `json:"nurse_id" gorm:"column:nurse_id;type:varchar(64);index"`
	NurseName string    `json:"nurse_name" gorm:"column:nurse_name"`
	Report    string    `json:"report" gorm:"column:report;type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"column:timestamp;index"`
}

// AttendanceRecord is one clock-in or clock-out event. A nurse's current
// status is the status of their most recent record by timestamp.
// @Description Nurse attendance event
type AttendanceRecord struct {
	gorm.Model
	NurseID   string    `json:"nurse_id" gorm:"column:nurse_id;type:varchar(64);index"`
	NurseName string    `json:"nurse_name" gorm:"column:nurse_name"`
	Status    string    `json:"status" gorm:"column:status;type:varchar(16)"`
	Timestamp time.Time `json:"timestamp" gorm:"column:timestamp;index"`
}

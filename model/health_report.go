package model

import "gorm.io/gorm"

// HealthReport records an uploaded patient report file submitted for AI analysis.
// @Description Uploaded health report metadata
type HealthReport struct {
	gorm.Model
	UserID     uint   `json:"user_id" gorm:"column:user_id;index"`
	ReportName string `json:"report_name" gorm:"column:report_name" example:"blood-panel.pdf"`
	FileURL    string `json:"file_url" gorm:"column:file_url"`
	FileType   string `json:"file_type" gorm:"column:file_type;type:varchar(32)" example:"PDF"`
}

package model

import "gorm.io/gorm"

// Bed categories accepted by the bed occupancy endpoint.
const (
	BedCategoryICU       = "icu"
	BedCategoryGeneral   = "general"
	BedCategoryEmergency = "emergency"
)

// BedBank tracks capacity and occupancy for one bed category.
type BedBank struct {
	Total    int `json:"total" gorm:"default:0"`
	Occupied int `json:"occupied" gorm:"default:0"`
}

// Hospital is managed by exactly one admin user. The occupancy invariant
// 0 <= occupied <= total is enforced by conditional updates in the endpoint
// layer, never by read-modify-write.
// @Description Hospital with per-category bed occupancy
type Hospital struct {
	gorm.Model
	Name      string  `json:"name" gorm:"column:name" example:"Central City Hospital"`
	AdminID   uint    `json:"admin_id" gorm:"column:admin_id;uniqueIndex"`
	ICU       BedBank `json:"icu" gorm:"embedded;embeddedPrefix:icu_"`
	General   BedBank `json:"general" gorm:"embedded;embeddedPrefix:general_"`
	Emergency BedBank `json:"emergency" gorm:"embedded;embeddedPrefix:emergency_"`
}

// ValidBedCategory reports whether s names a known bed category.
func ValidBedCategory(s string) bool {
	return s == BedCategoryICU || s == BedCategoryGeneral || s == BedCategoryEmergency
}

// Beds returns the bed bank for the given category.
func (h *Hospital) Beds(category string) BedBank {
	switch category {
	case BedCategoryICU:
		return h.ICU
	case BedCategoryGeneral:
		return h.General
	case BedCategoryEmergency:
		return h.Emergency
	}
	return BedBank{}
}

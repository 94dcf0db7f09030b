package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Role names seeded at startup.
const (
	RolePatient       = "patient"
	RoleHospitalAdmin = "hospital_admin"
	RoleDoctor        = "doctor"
)

type Role struct {
	gorm.Model
	ID   uint32 `gorm:"primary_key;auto_increment" json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

// SeedRoles ensures the built-in roles exist.
func SeedRoles(db *gorm.DB) error {
	roles := []Role{
		{Name: RolePatient},
		{Name: RoleHospitalAdmin},
		{Name: RoleDoctor},
	}

	for _, role := range roles {
		var existingRole Role
		// Check if the role already exists.
		err := db.Where("name = ?", role.Name).First(&existingRole).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		// Create the role if not found.
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
	}
	return nil
}

// RoleIDByName returns the ID of the named role.
func RoleIDByName(db *gorm.DB, name string) (uint32, error) {
	var role Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		return 0, err
	}
	return role.ID, nil
}

package models

import "time"

// ChecklistType is a recurring audit template (shift-start, weekly, monthly).
// Created by configuration, rarely mutated, never deleted while sessions
// reference it.
type ChecklistType struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Code                string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name                string    `gorm:"size:100;not null" json:"nom"`
	Description         string    `gorm:"type:text" json:"description"`
	Frequency           string    `gorm:"size:32;not null" json:"frequence"`
	ValidityDurationHrs int       `gorm:"not null;default:12" json:"duree_validite_heures"`
	DisplayOrder        int       `gorm:"default:0" json:"ordre"`
	Active              bool      `gorm:"default:true" json:"actif"`
	CreatedAt           time.Time `json:"created_at"`

	Categories []Category `gorm:"foreignKey:TypeID" json:"-"`
}

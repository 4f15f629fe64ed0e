package models

import "time"

// Category groups items inside one checklist type. Pure grouping, no
// lifecycle of its own beyond the type.
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TypeID       uint      `gorm:"index;not null;uniqueIndex:uniq_type_code" json:"type_id"`
	Code         string    `gorm:"size:50;not null;uniqueIndex:uniq_type_code" json:"code"`
	Name         string    `gorm:"size:100;not null" json:"nom"`
	DisplayOrder int       `gorm:"default:0" json:"ordre"`
	Active       bool      `gorm:"default:true" json:"actif"`
	CreatedAt    time.Time `json:"-"`

	Type  ChecklistType `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Items []Item        `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
}

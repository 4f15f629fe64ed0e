package models

import "time"

// Item is one control point of a category. Critical items must be resolved
// (conforme or corrige) before a session can finalize. Active is a
// soft-delete flag: validations against an inactivated item remain valid for
// audit.
type Item struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CategoryID   uint      `gorm:"index;not null;uniqueIndex:uniq_cat_code" json:"categorie_id"`
	Code         string    `gorm:"size:50;not null;uniqueIndex:uniq_cat_code" json:"code"`
	Label        string    `gorm:"size:255;not null" json:"libelle"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	Critical     bool      `gorm:"default:false" json:"critique"`
	DisplayOrder int       `gorm:"default:0" json:"ordre"`
	Active       bool      `gorm:"default:true" json:"actif"`
	CreatedAt    time.Time `json:"-"`

	Category Category `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

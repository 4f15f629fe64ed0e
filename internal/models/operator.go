package models

import "time"

// Operator is the minimal identity record the engine needs to attribute
// sessions and validations. Account administration lives elsewhere.
type Operator struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:64;not null" json:"prenom"`
	LastName  string    `gorm:"size:64;not null" json:"nom"`
	Badge     string    `gorm:"size:32;uniqueIndex" json:"matricule"`
	Station   string    `gorm:"size:64" json:"poste"`
	Active    bool      `gorm:"default:true" json:"actif"`
	CreatedAt time.Time `json:"-"`
}

// FullName joins first and last name for display and exports.
func (o *Operator) FullName() string {
	if o == nil {
		return ""
	}
	return o.FirstName + " " + o.LastName
}

package models

import "time"

// Session is one concrete attempt to complete a checklist type's item set.
// ValidatedAt and ExpiresAt are written together, exactly once, by the
// finalization gate; they are never edited afterwards. A session still
// in_progress past started_at + validity is treated as expired at read time,
// the stored status column is never background-flipped.
type Session struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"` // UUID
	TypeID      uint       `gorm:"index;not null" json:"type_id"`
	OperatorID  *uint      `gorm:"index" json:"operateur_id"`
	Status      string     `gorm:"size:16;index;not null;default:in_progress" json:"statut"`
	StartedAt   time.Time  `gorm:"not null" json:"date_debut"`
	ValidatedAt *time.Time `json:"date_validation"`
	ExpiresAt   *time.Time `json:"date_expiration"`
	Comment     string     `gorm:"type:text" json:"commentaire,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	Type        ChecklistType `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Operator    *Operator     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Validations []Validation  `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

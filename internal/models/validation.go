package models

import "time"

// Validation is the resolution record for one item within one session,
// created lazily on first resolution (no row means "non_verifie"). Upserted
// in place as the operator re-visits an item; it dies with its session.
type Validation struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SessionID   string     `gorm:"size:64;not null;uniqueIndex:uniq_session_item" json:"session_id"`
	ItemID      uint       `gorm:"not null;uniqueIndex:uniq_session_item" json:"item_id"`
	Status      string     `gorm:"size:16;not null;default:non_verifie" json:"statut"`
	Defect      string     `gorm:"type:text" json:"defaut_detecte"`
	Corrective  string     `gorm:"type:text" json:"action_corrective"`
	Comment     string     `gorm:"type:text" json:"commentaire"`
	ResolvedAt  *time.Time `json:"date_verification"`
	ResolvedBy  *uint      `gorm:"index" json:"operateur_id"`
	CorrectedAt *time.Time `json:"date_correction"`
	CorrectedBy *uint      `json:"corrige_par"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`

	Session Session `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Item    Item    `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

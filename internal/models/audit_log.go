package models

import "time"

// AuditLog records mutating API calls for traceability.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey"`
	OperatorID *uint     `gorm:"index"`
	Method     string    `gorm:"size:16"`
	Path       string    `gorm:"size:255"`
	Action     string    `gorm:"size:1024"`
	IP         string    `gorm:"size:64"`
	UserAgent  string    `gorm:"size:255"`
	CreatedAt  time.Time
}

package database

import (
	"fmt"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Operator{},
		&models.ChecklistType{},
		&models.Category{},
		&models.Item{},
		&models.Session{},
		&models.Validation{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

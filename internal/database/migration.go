package database

import (
	"fmt"

	"github.com/AndreCode112/FinanceMartins/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Bank{},
		&models.PayableCategory{},
		&models.Transaction{},
		&models.Event{},
		&models.Payable{},
		&models.PayableStatusHistory{},
		&models.DashboardLayout{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

package models

import "time"

// DashboardLayout stores the per-user ordering of dashboard widgets.
type DashboardLayout struct {
	ID          uint     `gorm:"primaryKey"`
	UserID      uint     `gorm:"uniqueIndex;not null"`
	WidgetOrder []string `gorm:"serializer:json"`
	UpdatedAt   time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

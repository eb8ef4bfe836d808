package models

import "time"

// Bank is a per-user bank/account used to scope transactions and payables.
// Name and slug are unique per owner.
type Bank struct {
	ID        uint   `gorm:"primaryKey"`
	OwnerID   uint   `gorm:"index;not null;uniqueIndex:uniq_bank_name_per_owner;uniqueIndex:uniq_bank_slug_per_owner"`
	Name      string `gorm:"size:80;not null;uniqueIndex:uniq_bank_name_per_owner"`
	Slug      string `gorm:"size:50;not null;uniqueIndex:uniq_bank_slug_per_owner"`
	Color     string `gorm:"size:7;default:#4F46E5"`
	Icon      string `gorm:"size:60;default:ph-bank"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PayableCategory groups payables. Deleting a category detaches payables
// instead of removing them.
type PayableCategory struct {
	ID        uint   `gorm:"primaryKey"`
	OwnerID   uint   `gorm:"index;not null;uniqueIndex:uniq_payable_category_name_per_owner;uniqueIndex:uniq_payable_category_slug_per_owner"`
	Name      string `gorm:"size:80;not null;uniqueIndex:uniq_payable_category_name_per_owner"`
	Slug      string `gorm:"size:50;not null;uniqueIndex:uniq_payable_category_slug_per_owner"`
	Color     string `gorm:"size:7;default:#5D7084"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

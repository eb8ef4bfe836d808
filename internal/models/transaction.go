package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType marks a cashflow record as income or expense.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Label returns the Portuguese display label used in reports.
func (t TransactionType) Label() string {
	if t == TransactionIncome {
		return "Entrada"
	}
	return "Saida"
}

// Valid reports whether the value is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction is a single income or expense record against a bank.
type Transaction struct {
	ID              uint            `gorm:"primaryKey"`
	OwnerID         uint            `gorm:"index;not null"`
	BankID          uint            `gorm:"index;not null"`
	Title           string          `gorm:"size:120;not null"`
	Description     string          `gorm:"size:255"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransactionType TransactionType `gorm:"size:10;not null"`
	TransactionDate time.Time       `gorm:"type:date;index;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Bank Bank `gorm:"constraint:OnDelete:RESTRICT"`
}

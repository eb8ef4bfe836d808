package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayableType classifies a payable.
type PayableType string

const (
	PayableInvoice      PayableType = "invoice"
	PayableSubscription PayableType = "subscription"
	PayableDebt         PayableType = "debt"
	PayableInstallment  PayableType = "installment"
	PayableOther        PayableType = "other"
)

func (t PayableType) Valid() bool {
	switch t {
	case PayableInvoice, PayableSubscription, PayableDebt, PayableInstallment, PayableOther:
		return true
	}
	return false
}

// Label returns the Portuguese display label for the payable type.
func (t PayableType) Label() string {
	switch t {
	case PayableInvoice:
		return "Fatura"
	case PayableSubscription:
		return "Assinatura"
	case PayableDebt:
		return "Divida"
	case PayableInstallment:
		return "Parcela"
	default:
		return "Outro"
	}
}

// PayableStatus is the payment state of a payable.
type PayableStatus string

const (
	StatusPending PayableStatus = "pending"
	StatusPaid    PayableStatus = "paid"
)

func (s PayableStatus) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// Payable is a single bill/obligation owned by a user. Installment
// payables generated from one plan share an InstallmentGroup identifier
// and are only ever mutated as a group for destructive operations.
type Payable struct {
	ID                uint            `gorm:"primaryKey"`
	OwnerID           uint            `gorm:"index;not null"`
	BankID            *uint           `gorm:"index"`
	CategoryID        *uint           `gorm:"index"`
	Title             string          `gorm:"size:120;not null"`
	Description       string          `gorm:"size:255"`
	PayableType       PayableType     `gorm:"size:20;not null"`
	Status            PayableStatus   `gorm:"size:12;index;default:pending"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DueDate           time.Time       `gorm:"type:date;index;not null"`
	PaymentDate       *time.Time      `gorm:"type:date"`
	PaymentNote       string          `gorm:"size:255"`
	ReceiptPath       string          `gorm:"size:255"`
	ReceiptName       string          `gorm:"size:120"`
	InstallmentNumber *int            ``
	InstallmentTotal  *int            ``
	InstallmentGroup  *string         `gorm:"size:36;index"`
	IsRecurring       bool            ``
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Bank     *Bank            `gorm:"constraint:OnDelete:SET NULL"`
	Category *PayableCategory `gorm:"constraint:OnDelete:SET NULL"`
}

// HasReceipt reports whether a receipt blob is attached.
func (p *Payable) HasReceipt() bool {
	return p.ReceiptPath != ""
}

// PayableStatusHistory is an immutable audit record of a status change.
// Rows are only created when status, payment date or payment note really
// changed, and are never updated afterwards.
type PayableStatusHistory struct {
	ID                  uint          `gorm:"primaryKey"`
	PayableID           uint          `gorm:"index;not null"`
	PreviousStatus      PayableStatus `gorm:"size:12;not null"`
	NewStatus           PayableStatus `gorm:"size:12;not null"`
	PreviousPaymentDate *time.Time    `gorm:"type:date"`
	NewPaymentDate      *time.Time    `gorm:"type:date"`
	PreviousPaymentNote string        `gorm:"size:255"`
	NewPaymentNote      string        `gorm:"size:255"`
	Source              string        `gorm:"size:40;default:manual"`
	ChangedByID         *uint         `gorm:"index"`
	ChangedAt           time.Time     `gorm:"autoCreateTime"`

	Payable Payable `gorm:"constraint:OnDelete:CASCADE"`
}

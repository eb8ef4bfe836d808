package payable

import (
	"strings"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/shopspring/decimal"
)

// Clean enforces the payable invariants in memory before persisting,
// mirroring what every write path must guarantee:
//   - installment kind requires a total; the current number defaults to 1
//     and can never exceed the total
//   - any other kind drops the installment fields
//   - only subscriptions may be recurring
//   - paid implies a payment date (defaulting to today); pending clears
//     payment date and note
func Clean(p *models.Payable, today time.Time) *util.ValidationError {
	errs := &util.ValidationError{}

	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.PaymentNote = strings.TrimSpace(p.PaymentNote)

	if p.Title == "" {
		errs.Add("title", "Informe o titulo.")
	}
	if !p.PayableType.Valid() {
		errs.Add("payable_type", "Tipo de conta invalido.")
	}
	if !p.Status.Valid() {
		errs.Add("status", "Status invalido.")
	}
	if !p.Amount.GreaterThan(decimal.Zero) {
		errs.Add("amount", "Informe um valor maior que zero.")
	}

	if p.PayableType == models.PayableInstallment {
		if p.InstallmentTotal == nil || *p.InstallmentTotal < 1 {
			errs.Add("installment_total", "Informe o total de parcelas.")
		}
		if p.InstallmentNumber == nil {
			one := 1
			p.InstallmentNumber = &one
		}
		if p.InstallmentTotal != nil && *p.InstallmentNumber > *p.InstallmentTotal {
			errs.Add("installment_number", "Parcela atual nao pode ser maior que o total.")
		}
	} else {
		p.InstallmentNumber = nil
		p.InstallmentTotal = nil
		p.InstallmentGroup = nil
	}

	if p.PayableType != models.PayableSubscription {
		p.IsRecurring = false
	}

	if p.Status == models.StatusPaid && p.PaymentDate == nil {
		d := util.DateOnly(today)
		p.PaymentDate = &d
	}
	if p.Status == models.StatusPending {
		p.PaymentDate = nil
		p.PaymentNote = ""
	}

	if errs.Empty() {
		return nil
	}
	return errs
}

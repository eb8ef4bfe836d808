package payable

import (
	"strings"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"
)

// Snapshot captures the status-relevant fields of a payable strictly
// before a mutation, so the history recorder can diff them afterwards.
type Snapshot struct {
	Status      models.PayableStatus
	PaymentDate *time.Time
	PaymentNote string
}

// TakeSnapshot copies the tracked fields of a payable.
func TakeSnapshot(p *models.Payable) Snapshot {
	return Snapshot{
		Status:      p.Status,
		PaymentDate: copyDate(p.PaymentDate),
		PaymentNote: p.PaymentNote,
	}
}

// StatusChange describes one status transition to apply in memory.
// PaymentNote distinguishes "not provided" (nil keeps the current note)
// from "explicitly empty" (pointer to "" clears it).
type StatusChange struct {
	Status       models.PayableStatus
	PaymentDate  *time.Time
	PaymentNote  *string
	ClearReceipt bool
}

// ApplyStatus mutates the payable in memory only; persistence is the
// caller's concern so bulk operations can batch the writes. It returns
// the blob reference of a receipt that must be deleted after commit, or
// "" when no receipt is released.
func ApplyStatus(p *models.Payable, change StatusChange, today time.Time) (releasedReceipt string) {
	p.Status = change.Status
	if change.Status == models.StatusPaid {
		switch {
		case change.PaymentDate != nil:
			p.PaymentDate = copyDate(change.PaymentDate)
		case p.PaymentDate != nil:
			// keep the existing date
		default:
			d := util.DateOnly(today)
			p.PaymentDate = &d
		}
		if change.PaymentNote != nil {
			p.PaymentNote = strings.TrimSpace(*change.PaymentNote)
		}
		return ""
	}

	p.PaymentDate = nil
	p.PaymentNote = ""
	if change.ClearReceipt && p.HasReceipt() {
		releasedReceipt = p.ReceiptPath
		p.ReceiptPath = ""
		p.ReceiptName = ""
	}
	return releasedReceipt
}

// BuildHistoryEntry produces an audit row when the payable diverged from
// its before-snapshot in status, payment date or payment note. Receipt
// changes alone never produce an entry. Returns nil for no-op
// transitions.
func BuildHistoryEntry(p *models.Payable, before Snapshot, changedBy *uint, source string) *models.PayableStatusHistory {
	changed := before.Status != p.Status ||
		!util.SameDate(before.PaymentDate, p.PaymentDate) ||
		before.PaymentNote != p.PaymentNote
	if !changed {
		return nil
	}

	return &models.PayableStatusHistory{
		PayableID:           p.ID,
		PreviousStatus:      before.Status,
		NewStatus:           p.Status,
		PreviousPaymentDate: copyDate(before.PaymentDate),
		NewPaymentDate:      copyDate(p.PaymentDate),
		PreviousPaymentNote: before.PaymentNote,
		NewPaymentNote:      p.PaymentNote,
		Source:              source,
		ChangedByID:         changedBy,
	}
}

func copyDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := *t
	return &d
}

package handler

import (
	"fmt"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/gin-gonic/gin"
)

func serializeBank(b *models.Bank) gin.H {
	return gin.H{
		"id":    b.ID,
		"name":  b.Name,
		"slug":  b.Slug,
		"color": b.Color,
		"icon":  b.Icon,
	}
}

func serializeCategory(c *models.PayableCategory) gin.H {
	return gin.H{
		"id":    c.ID,
		"name":  c.Name,
		"slug":  c.Slug,
		"color": c.Color,
	}
}

func serializeTransaction(t *models.Transaction) gin.H {
	return gin.H{
		"id":               t.ID,
		"title":            t.Title,
		"description":      t.Description,
		"amount":           t.Amount.InexactFloat64(),
		"transaction_type": t.TransactionType,
		"transaction_date": t.TransactionDate.Format(util.DateLayout),
		"bank":             serializeBank(&t.Bank),
	}
}

func serializeEvent(e *models.Event) gin.H {
	var endsAt interface{}
	if e.EndsAt != nil {
		endsAt = e.EndsAt.Format(timeLayout)
	}
	return gin.H{
		"id":                      e.ID,
		"title":                   e.Title,
		"creator_name":            e.CreatorName,
		"starts_at":               e.StartsAt.Format(timeLayout),
		"ends_at":                 endsAt,
		"description":             e.Description,
		"location":                e.Location,
		"color":                   e.Color,
		"status":                  e.Status,
		"importance":              e.Importance,
		"reminder_minutes_before": e.ReminderMinutesBefore,
		"all_day":                 e.AllDay,
	}
}

func serializePayable(p *models.Payable) gin.H {
	var paymentDate interface{}
	if p.PaymentDate != nil {
		paymentDate = p.PaymentDate.Format(util.DateLayout)
	}
	var receiptURL, receiptName interface{}
	if p.HasReceipt() {
		receiptURL = fmt.Sprintf("/api/payables/%d/receipt", p.ID)
		receiptName = p.ReceiptName
	}
	var category interface{}
	if p.Category != nil {
		category = serializeCategory(p.Category)
	}
	var bank interface{}
	if p.Bank != nil {
		bank = serializeBank(p.Bank)
	}
	return gin.H{
		"id":                   p.ID,
		"title":                p.Title,
		"description":          p.Description,
		"payable_type":         p.PayableType,
		"status":               p.Status,
		"amount":               p.Amount.InexactFloat64(),
		"due_date":             p.DueDate.Format(util.DateLayout),
		"payment_date":         paymentDate,
		"payment_note":         p.PaymentNote,
		"payment_receipt_url":  receiptURL,
		"payment_receipt_name": receiptName,
		"installment_number":   p.InstallmentNumber,
		"installment_total":    p.InstallmentTotal,
		"installment_group":    p.InstallmentGroup,
		"is_recurring":         p.IsRecurring,
		"category":             category,
		"bank":                 bank,
	}
}

func serializePayables(payables []models.Payable) []gin.H {
	out := make([]gin.H, 0, len(payables))
	for i := range payables {
		out = append(out, serializePayable(&payables[i]))
	}
	return out
}

func serializeHistoryItem(h *models.PayableStatusHistory, changedBy string) gin.H {
	var prevDate, newDate interface{}
	if h.PreviousPaymentDate != nil {
		prevDate = h.PreviousPaymentDate.Format(util.DateLayout)
	}
	if h.NewPaymentDate != nil {
		newDate = h.NewPaymentDate.Format(util.DateLayout)
	}
	var changedByVal interface{}
	if changedBy != "" {
		changedByVal = changedBy
	}
	return gin.H{
		"id":                    h.ID,
		"payable_id":            h.PayableID,
		"previous_status":       h.PreviousStatus,
		"new_status":            h.NewStatus,
		"previous_payment_date": prevDate,
		"new_payment_date":      newDate,
		"previous_payment_note": h.PreviousPaymentNote,
		"new_payment_note":      h.NewPaymentNote,
		"source":                h.Source,
		"changed_at":            h.ChangedAt.Format(timeLayout),
		"changed_by":            changedByVal,
	}
}

const timeLayout = time.RFC3339

package payable

import (
	"fmt"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Input carries the writable fields of a single payable, used by the
// create and form-update paths. Installment plans go through PlanInput
// instead.
type Input struct {
	BankID            *uint
	CategoryID        *uint
	Title             string
	Description       string
	PayableType       models.PayableType
	Status            models.PayableStatus
	Amount            decimal.Decimal
	DueDate           time.Time
	PaymentDate       *time.Time
	PaymentNote       string
	InstallmentNumber *int
	InstallmentTotal  *int
	IsRecurring       bool
}

// Create inserts one non-installment payable. Installment-kind input must
// be routed to CreatePlan by the caller.
func (s *Service) Create(ownerID uint, in Input) (*models.Payable, error) {
	p := models.Payable{
		OwnerID:           ownerID,
		BankID:            in.BankID,
		CategoryID:        in.CategoryID,
		Title:             in.Title,
		Description:       in.Description,
		PayableType:       in.PayableType,
		Status:            in.Status,
		Amount:            in.Amount,
		DueDate:           util.DateOnly(in.DueDate),
		PaymentDate:       copyDate(in.PaymentDate),
		PaymentNote:       in.PaymentNote,
		InstallmentNumber: in.InstallmentNumber,
		InstallmentTotal:  in.InstallmentTotal,
		IsRecurring:       in.IsRecurring,
	}
	if verr := Clean(&p, s.clock.Today()); verr != nil {
		return nil, verr
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if verr := validateRefs(tx, ownerID, in.BankID, in.CategoryID); verr != nil {
			return verr
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return getOwned(s.db, ownerID, p.ID)
}

// Update applies a full form edit to one payable, recording a history
// entry with source "form_update" when the status fields changed. Moving
// a payable back to pending releases its receipt.
func (s *Service) Update(ownerID, payableID uint, in Input) (*models.Payable, []string, error) {
	today := s.clock.Today()
	var released []string
	var updated *models.Payable

	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := getOwned(tx, ownerID, payableID)
		if err != nil {
			return err
		}
		before := TakeSnapshot(p)

		p.BankID = in.BankID
		p.CategoryID = in.CategoryID
		p.Title = in.Title
		p.Description = in.Description
		p.PayableType = in.PayableType
		p.Status = in.Status
		p.Amount = in.Amount
		p.DueDate = util.DateOnly(in.DueDate)
		p.PaymentDate = copyDate(in.PaymentDate)
		p.PaymentNote = in.PaymentNote
		p.InstallmentNumber = in.InstallmentNumber
		p.InstallmentTotal = in.InstallmentTotal
		p.IsRecurring = in.IsRecurring

		if verr := Clean(p, today); verr != nil {
			return verr
		}
		if verr := validateRefs(tx, ownerID, in.BankID, in.CategoryID); verr != nil {
			return verr
		}

		if p.Status == models.StatusPending && p.HasReceipt() {
			released = append(released, p.ReceiptPath)
			p.ReceiptPath = ""
			p.ReceiptName = ""
		}

		if err := tx.Save(p).Error; err != nil {
			return fmt.Errorf("save payable: %w", err)
		}
		if entry := BuildHistoryEntry(p, before, &ownerID, "form_update"); entry != nil {
			if err := tx.Create(entry).Error; err != nil {
				return fmt.Errorf("save history: %w", err)
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	warnings := s.cleanupReceipts(released)
	return updated, warnings, nil
}

// UpdateStatus runs the status engine on one payable and persists the
// result together with its history entry. The snapshot is taken inside
// the same transaction as the write so the audit pair stays consistent.
func (s *Service) UpdateStatus(ownerID, payableID uint, change StatusChange) (*models.Payable, *models.PayableStatusHistory, []string, error) {
	if !change.Status.Valid() {
		return nil, nil, nil, util.NewValidationError("status", "Status invalido.")
	}

	today := s.clock.Today()
	var released []string
	var updated *models.Payable
	var entry *models.PayableStatusHistory

	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := getOwned(tx, ownerID, payableID)
		if err != nil {
			return err
		}
		before := TakeSnapshot(p)

		if ref := ApplyStatus(p, change, today); ref != "" {
			released = append(released, ref)
		}
		if err := tx.Model(p).Select(statusColumns).Updates(p).Error; err != nil {
			return fmt.Errorf("save payable: %w", err)
		}
		if entry = BuildHistoryEntry(p, before, &ownerID, "status_update"); entry != nil {
			if err := tx.Create(entry).Error; err != nil {
				return fmt.Errorf("save history: %w", err)
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	warnings := s.cleanupReceipts(released)
	return updated, entry, warnings, nil
}

// DeleteResult reports what a delete removed.
type DeleteResult struct {
	DeletedIDs   []uint
	DeletedGroup *string
}

// Delete removes one payable. A grouped installment cannot be deleted
// alone: the whole group goes, receipts included.
func (s *Service) Delete(ownerID, payableID uint) (*DeleteResult, []string, error) {
	var released []string
	result := &DeleteResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := getOwned(tx, ownerID, payableID)
		if err != nil {
			return err
		}

		targets := []models.Payable{*p}
		if p.PayableType == models.PayableInstallment && p.InstallmentGroup != nil {
			targets, err = groupMembers(tx, ownerID, *p.InstallmentGroup)
			if err != nil {
				return err
			}
			group := *p.InstallmentGroup
			result.DeletedGroup = &group
		}

		ids := make([]uint, 0, len(targets))
		for _, target := range targets {
			ids = append(ids, target.ID)
			if target.HasReceipt() {
				released = append(released, target.ReceiptPath)
			}
		}
		if err := tx.Where("payable_id IN ?", ids).Delete(&models.PayableStatusHistory{}).Error; err != nil {
			return fmt.Errorf("delete history: %w", err)
		}
		if err := tx.Where("owner_id = ? AND id IN ?", ownerID, ids).Delete(&models.Payable{}).Error; err != nil {
			return fmt.Errorf("delete payables: %w", err)
		}
		result.DeletedIDs = ids
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	warnings := s.cleanupReceipts(released)
	return result, warnings, nil
}

// History returns the newest audit entries of one owned payable, capped
// at 120 rows.
func (s *Service) History(ownerID, payableID uint) ([]models.PayableStatusHistory, error) {
	if _, err := getOwned(s.db, ownerID, payableID); err != nil {
		return nil, err
	}
	var entries []models.PayableStatusHistory
	err := s.db.Where("payable_id = ?", payableID).
		Order("changed_at DESC, id DESC").
		Limit(120).
		Find(&entries).Error
	return entries, err
}

// List returns every payable of the owner ordered by due date then id.
func (s *Service) List(ownerID uint) ([]models.Payable, error) {
	var payables []models.Payable
	err := s.db.Preload("Bank").Preload("Category").
		Where("owner_id = ?", ownerID).
		Order("due_date, id").
		Find(&payables).Error
	return payables, err
}

package payable

import (
	"fmt"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"gorm.io/gorm"
)

// Group bulk actions.
const (
	GroupPayUntil  = "pay_until"
	GroupPayAll    = "pay_all"
	GroupReopenAll = "reopen_all"
)

// Selection bulk actions.
const (
	BulkMarkPaid    = "mark_paid"
	BulkMarkPending = "mark_pending"
	BulkDelete      = "delete"
)

// GroupBulkInput parametrizes a bulk update over one installment group.
type GroupBulkInput struct {
	Action           string
	UntilInstallment *int
	PaymentDate      *time.Time
	PaymentNote      string
}

// GroupBulkUpdate applies one action to the whole installment group the
// reference payable belongs to. pay_until/pay_all mark installments up to
// the target as paid with a shared date and note; reopen_all resets the
// group to pending and releases every receipt. One history entry per
// changed record, tagged bulk_<action>.
func (s *Service) GroupBulkUpdate(ownerID, payableID uint, in GroupBulkInput) ([]models.Payable, []string, error) {
	if in.Action != GroupPayUntil && in.Action != GroupPayAll && in.Action != GroupReopenAll {
		return nil, nil, util.NewValidationError("action", "Acao invalida.")
	}

	today := s.clock.Today()
	var released []string
	var group string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ref, err := getOwned(tx, ownerID, payableID)
		if err != nil {
			return err
		}
		if ref.PayableType != models.PayableInstallment || ref.InstallmentGroup == nil {
			return util.ErrInvalidGroup
		}
		group = *ref.InstallmentGroup

		installments, err := groupMembers(tx, ownerID, group)
		if err != nil {
			return err
		}
		if len(installments) == 0 {
			return util.ErrNotFound
		}

		var changed []*models.Payable
		var entries []*models.PayableStatusHistory

		if in.Action == GroupReopenAll {
			for i := range installments {
				p := &installments[i]
				before := TakeSnapshot(p)
				if ref := ApplyStatus(p, StatusChange{Status: models.StatusPending, ClearReceipt: true}, today); ref != "" {
					released = append(released, ref)
				}
				changed = append(changed, p)
				if entry := BuildHistoryEntry(p, before, &ownerID, "bulk_reopen_all"); entry != nil {
					entries = append(entries, entry)
				}
			}
		} else {
			until := len(installments)
			if in.Action == GroupPayUntil {
				if in.UntilInstallment == nil {
					return util.NewValidationError("until_installment", "Informe uma parcela valida.")
				}
				until = *in.UntilInstallment
				if until < 0 || until > len(installments) {
					return util.NewValidationError("until_installment", "Parcela fora do intervalo permitido.")
				}
			}

			note := in.PaymentNote
			paymentDate := copyDate(in.PaymentDate)
			if paymentDate == nil {
				d := util.DateOnly(today)
				paymentDate = &d
			}

			for i := range installments {
				p := &installments[i]
				number := 0
				if p.InstallmentNumber != nil {
					number = *p.InstallmentNumber
				}
				if number > until {
					continue
				}
				before := TakeSnapshot(p)
				ApplyStatus(p, StatusChange{Status: models.StatusPaid, PaymentDate: paymentDate, PaymentNote: &note}, today)
				changed = append(changed, p)
				if entry := BuildHistoryEntry(p, before, &ownerID, "bulk_"+in.Action); entry != nil {
					entries = append(entries, entry)
				}
			}
		}

		for _, p := range changed {
			if err := tx.Model(p).Select(statusColumns).Updates(p).Error; err != nil {
				return fmt.Errorf("save installment: %w", err)
			}
		}
		for _, entry := range entries {
			if err := tx.Create(entry).Error; err != nil {
				return fmt.Errorf("save history: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	warnings := s.cleanupReceipts(released)
	refreshed, err := groupMembers(s.db, ownerID, group)
	if err != nil {
		return nil, warnings, err
	}
	return refreshed, warnings, nil
}

// BulkActionInput parametrizes an action over an explicit selection.
type BulkActionInput struct {
	Action      string
	PayableIDs  []uint
	PaymentDate *time.Time
	PaymentNote string
}

// BulkActionResult reports the final state of the affected records.
type BulkActionResult struct {
	Action     string
	Payables   []models.Payable
	DeletedIDs []uint
}

// BulkAction applies one action uniformly to a caller-selected set of
// payables. Ids are deduplicated and must resolve to records of the
// acting owner. Deleting a grouped installment expands to its entire
// group: grouped records never lose single members.
func (s *Service) BulkAction(ownerID uint, in BulkActionInput) (*BulkActionResult, []string, error) {
	if in.Action != BulkMarkPaid && in.Action != BulkMarkPending && in.Action != BulkDelete {
		return nil, nil, util.NewValidationError("action", "Acao invalida.")
	}

	ids := dedupeIDs(in.PayableIDs)
	if len(ids) == 0 {
		return nil, nil, util.NewValidationError("payable_ids", "Selecione ao menos uma conta valida.")
	}

	today := s.clock.Today()
	var released []string
	result := &BulkActionResult{Action: in.Action}
	var updatedIDs []uint

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var targets []models.Payable
		err := tx.Preload("Bank").Preload("Category").
			Where("owner_id = ? AND id IN ?", ownerID, ids).
			Order("due_date, id").
			Find(&targets).Error
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return util.ErrNotFound
		}

		if in.Action == BulkDelete {
			targets, err = expandGroups(tx, ownerID, targets)
			if err != nil {
				return err
			}
			deleteIDs := make([]uint, 0, len(targets))
			for _, p := range targets {
				deleteIDs = append(deleteIDs, p.ID)
				if p.HasReceipt() {
					released = append(released, p.ReceiptPath)
				}
			}
			if err := tx.Where("payable_id IN ?", deleteIDs).Delete(&models.PayableStatusHistory{}).Error; err != nil {
				return fmt.Errorf("delete history: %w", err)
			}
			if err := tx.Where("owner_id = ? AND id IN ?", ownerID, deleteIDs).Delete(&models.Payable{}).Error; err != nil {
				return fmt.Errorf("delete payables: %w", err)
			}
			result.DeletedIDs = deleteIDs
			return nil
		}

		note := in.PaymentNote
		for i := range targets {
			p := &targets[i]
			before := TakeSnapshot(p)
			if in.Action == BulkMarkPaid {
				paymentDate := copyDate(in.PaymentDate)
				if paymentDate == nil {
					d := util.DateOnly(today)
					paymentDate = &d
				}
				ApplyStatus(p, StatusChange{Status: models.StatusPaid, PaymentDate: paymentDate, PaymentNote: &note}, today)
			} else {
				if ref := ApplyStatus(p, StatusChange{Status: models.StatusPending, ClearReceipt: true}, today); ref != "" {
					released = append(released, ref)
				}
			}
			updatedIDs = append(updatedIDs, p.ID)
			if err := tx.Model(p).Select(statusColumns).Updates(p).Error; err != nil {
				return fmt.Errorf("save payable: %w", err)
			}
			if entry := BuildHistoryEntry(p, before, &ownerID, "bulk_"+in.Action); entry != nil {
				if err := tx.Create(entry).Error; err != nil {
					return fmt.Errorf("save history: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	warnings := s.cleanupReceipts(released)
	if in.Action != BulkDelete {
		var refreshed []models.Payable
		err := s.db.Preload("Bank").Preload("Category").
			Where("owner_id = ? AND id IN ?", ownerID, updatedIDs).
			Order("due_date, id").
			Find(&refreshed).Error
		if err != nil {
			return nil, warnings, err
		}
		result.Payables = refreshed
	}
	return result, warnings, nil
}

// expandGroups widens a delete selection so every grouped installment
// brings its whole group along.
func expandGroups(tx *gorm.DB, ownerID uint, targets []models.Payable) ([]models.Payable, error) {
	seen := make(map[uint]bool, len(targets))
	out := make([]models.Payable, 0, len(targets))
	for _, p := range targets {
		if seen[p.ID] {
			continue
		}
		if p.PayableType == models.PayableInstallment && p.InstallmentGroup != nil {
			members, err := groupMembers(tx, ownerID, *p.InstallmentGroup)
			if err != nil {
				return nil, err
			}
			for _, member := range members {
				if !seen[member.ID] {
					seen[member.ID] = true
					out = append(out, member)
				}
			}
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

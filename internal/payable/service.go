package payable

import (
	"errors"

	"github.com/AndreCode112/FinanceMartins/internal/blob"
	"github.com/AndreCode112/FinanceMartins/internal/clock"
	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service owns the payable lifecycle: plan creation, status transitions,
// bulk operations and legacy normalization. Every mutating entry point
// runs as one database transaction; receipt blob cleanup happens after
// commit and is best effort.
type Service struct {
	db    *gorm.DB
	blobs blob.Store
	clock clock.Clock
	log   *zap.Logger
}

func NewService(db *gorm.DB, blobs blob.Store, clk clock.Clock, log *zap.Logger) *Service {
	return &Service{db: db, blobs: blobs, clock: clk, log: log}
}

// getOwned loads one payable scoped to the owner. Records belonging to
// another user come back as ErrNotFound, never as a permission error.
func getOwned(tx *gorm.DB, ownerID, payableID uint) (*models.Payable, error) {
	var p models.Payable
	err := tx.Preload("Bank").Preload("Category").
		Where("id = ? AND owner_id = ?", payableID, ownerID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// groupMembers loads all installments of a group ordered by installment
// number then id, the canonical group ordering.
func groupMembers(tx *gorm.DB, ownerID uint, group string) ([]models.Payable, error) {
	var members []models.Payable
	err := tx.Preload("Bank").Preload("Category").
		Where("installment_group = ? AND owner_id = ?", group, ownerID).
		Order("installment_number, id").
		Find(&members).Error
	return members, err
}

// statusColumns are the payable columns every status mutation writes.
var statusColumns = []string{"status", "payment_date", "payment_note", "receipt_path", "receipt_name", "updated_at"}

// cleanupReceipts deletes released blobs after the owning transaction
// committed. Failures are logged and surfaced as warnings, never as
// errors: the row mutation already happened.
func (s *Service) cleanupReceipts(refs []string) []string {
	var warnings []string
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := s.blobs.Delete(ref); err != nil {
			s.log.Warn("receipt cleanup failed", zap.String("ref", ref), zap.Error(err))
			warnings = append(warnings, "Nao foi possivel remover o comprovante "+ref+".")
		}
	}
	return warnings
}

// validateRefs checks that optional bank/category references point at
// records owned by the same user.
func validateRefs(tx *gorm.DB, ownerID uint, bankID, categoryID *uint) *util.ValidationError {
	errs := &util.ValidationError{}
	if bankID != nil {
		var count int64
		tx.Model(&models.Bank{}).Where("id = ? AND owner_id = ?", *bankID, ownerID).Count(&count)
		if count == 0 {
			errs.Add("bank", "Banco nao encontrado.")
		}
	}
	if categoryID != nil {
		var count int64
		tx.Model(&models.PayableCategory{}).Where("id = ? AND owner_id = ?", *categoryID, ownerID).Count(&count)
		if count == 0 {
			errs.Add("category", "Categoria nao encontrada.")
		}
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

package payable

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"gorm.io/gorm"
)

var allowedReceiptExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// MaxReceiptSize caps receipt uploads at 8MB.
const MaxReceiptSize = 8 * 1024 * 1024

// AttachReceipt stores a receipt blob for a paid payable. The new blob is
// written before the row is updated, so a failed write never leaves the
// record pointing at nothing; the replaced blob is removed after commit.
func (s *Service) AttachReceipt(ownerID, payableID uint, r io.Reader, filename string, size int64) (*models.Payable, []string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedReceiptExtensions[ext] {
		return nil, nil, util.NewValidationError("receipt", "Formato invalido. Use PDF, PNG, JPG, JPEG ou WEBP.")
	}
	if size > MaxReceiptSize {
		return nil, nil, util.NewValidationError("receipt", "Arquivo muito grande. Limite de 8MB.")
	}

	var released []string
	var updated *models.Payable

	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := getOwned(tx, ownerID, payableID)
		if err != nil {
			return err
		}
		if p.Status != models.StatusPaid {
			return util.NewValidationError("receipt", "Marque a parcela como paga antes de anexar comprovante.")
		}

		ref, err := s.blobs.Save(r, filename, s.clock.Now())
		if err != nil {
			return fmt.Errorf("save receipt blob: %w", err)
		}
		if p.HasReceipt() {
			released = append(released, p.ReceiptPath)
		}
		p.ReceiptPath = ref
		p.ReceiptName = filepath.Base(filename)

		if err := tx.Model(p).Select("receipt_path", "receipt_name", "updated_at").Updates(p).Error; err != nil {
			return fmt.Errorf("save payable: %w", err)
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

// DeleteReceipt detaches and removes the receipt blob of one payable.
func (s *Service) DeleteReceipt(ownerID, payableID uint) (*models.Payable, []string, error) {
	var released []string
	var updated *models.Payable

	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := getOwned(tx, ownerID, payableID)
		if err != nil {
			return err
		}
		if !p.HasReceipt() {
			return util.NewValidationError("receipt", "Nenhum comprovante anexado nesta parcela.")
		}
		released = append(released, p.ReceiptPath)
		p.ReceiptPath = ""
		p.ReceiptName = ""
		if err := tx.Model(p).Select("receipt_path", "receipt_name", "updated_at").Updates(p).Error; err != nil {
			return fmt.Errorf("save payable: %w", err)
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

// OpenReceipt streams the stored receipt of one owned payable.
func (s *Service) OpenReceipt(ownerID, payableID uint) (io.ReadCloser, string, error) {
	p, err := getOwned(s.db, ownerID, payableID)
	if err != nil {
		return nil, "", err
	}
	if !p.HasReceipt() || !s.blobs.Exists(p.ReceiptPath) {
		return nil, "", util.ErrNotFound
	}
	rc, err := s.blobs.Open(p.ReceiptPath)
	if err != nil {
		return nil, "", fmt.Errorf("open receipt: %w", err)
	}
	name := p.ReceiptName
	if name == "" {
		name = filepath.Base(p.ReceiptPath)
	}
	return rc, name, nil
}

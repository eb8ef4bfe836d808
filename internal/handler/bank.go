package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/AndreCode112/FinanceMartins/internal/middleware"
	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BankHandler serves per-user bank management.
type BankHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewBankHandler(db *gorm.DB, log *zap.Logger) *BankHandler {
	return &BankHandler{DB: db, Log: log}
}

type bankReq struct {
	Name  string `form:"name" json:"name" binding:"required,max=80"`
	Color string `form:"color" json:"color" binding:"max=7"`
	Icon  string `form:"icon" json:"icon" binding:"max=60"`
}

func (h *BankHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req bankReq
	if err := c.ShouldBind(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parametros invalidos.")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, map[string][]string{
			"name": {"Informe o nome do banco."},
		})
		return
	}
	icon := strings.TrimSpace(req.Icon)
	if icon == "" {
		icon = "ph-bank"
	}
	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = "#4F46E5"
	}

	bank := models.Bank{
		OwnerID: user.ID,
		Name:    name,
		Color:   color,
		Icon:    icon,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Bank{}).
			Where("owner_id = ? AND name = ?", user.ID, name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return util.NewValidationError("name", "Ja existe um banco com este nome.")
		}
		slug, err := uniqueBankSlug(tx, user.ID, name, 0)
		if err != nil {
			return err
		}
		bank.Slug = slug
		return tx.Create(&bank).Error
	})
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	util.Success(c, util.Response{"bank": serializeBank(&bank)})
}

// uniqueBankSlug derives a slug from the name, suffixing -2, -3, ... until
// it is free for this owner. excludeID skips the bank being renamed.
func uniqueBankSlug(tx *gorm.DB, ownerID uint, name string, excludeID uint) (string, error) {
	base := util.Slugify(name)
	if base == "" {
		base = "bank"
	}
	slug := base
	for counter := 2; ; counter++ {
		var count int64
		q := tx.Model(&models.Bank{}).Where("owner_id = ? AND slug = ?", ownerID, slug)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

// Delete removes a bank. Banks with transactions are protected; payables
// are detached instead of deleted.
func (h *BankHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	bankID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var bank models.Bank
		if err := tx.Where("id = ? AND owner_id = ?", bankID, user.ID).First(&bank).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrNotFound
			}
			return err
		}

		var txCount int64
		if err := tx.Model(&models.Transaction{}).Where("bank_id = ?", bank.ID).Count(&txCount).Error; err != nil {
			return err
		}
		if txCount > 0 {
			return util.ErrConflict
		}

		if err := tx.Model(&models.Payable{}).Where("bank_id = ?", bank.ID).
			Update("bank_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&bank).Error
	})
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	util.Success(c, util.Response{"deleted_id": bankID})
}

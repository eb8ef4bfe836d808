package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AndreCode112/FinanceMartins/internal/middleware"
	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransactionHandler serves income/expense records.
type TransactionHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewTransactionHandler(db *gorm.DB, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{DB: db, Log: log}
}

type transactionReq struct {
	BankID          uint   `form:"bank" json:"bank" binding:"required"`
	Title           string `form:"title" json:"title" binding:"required,max=120"`
	Description     string `form:"description" json:"description" binding:"max=255"`
	TransactionType string `form:"transaction_type" json:"transaction_type" binding:"required"`
	Amount          string `form:"amount" json:"amount" binding:"required"`
	TransactionDate string `form:"transaction_date" json:"transaction_date" binding:"required"`
}

func (h *TransactionHandler) parse(c *gin.Context, user *models.User) (*models.Transaction, bool) {
	var req transactionReq
	if err := c.ShouldBind(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parametros invalidos.")
		return nil, false
	}

	verr := &util.ValidationError{}

	txType := models.TransactionType(req.TransactionType)
	if !txType.Valid() {
		verr.Add("transaction_type", "Tipo de transacao invalido.")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || amount.Sign() <= 0 {
		verr.Add("amount", "Informe um valor positivo.")
	}
	txDate, err := util.ParseDate(req.TransactionDate)
	if err != nil {
		verr.Add("transaction_date", "Data invalida.")
	}

	var bank models.Bank
	if err := h.DB.Where("id = ? AND owner_id = ?", req.BankID, user.ID).First(&bank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verr.Add("bank", "Banco invalido para este usuario.")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Falha ao consultar banco.")
			return nil, false
		}
	}

	if !verr.Empty() {
		util.FieldErrors(c, http.StatusBadRequest, util.CodeInvalidParam, verr.Fields)
		return nil, false
	}

	return &models.Transaction{
		OwnerID:         user.ID,
		BankID:          bank.ID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Amount:          amount.Round(2),
		TransactionType: txType,
		TransactionDate: util.DateOnly(txDate),
		Bank:            bank,
	}, true
}

func (h *TransactionHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	tx, ok := h.parse(c, user)
	if !ok {
		return
	}

	if err := h.DB.Create(tx).Error; err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"transaction": serializeTransaction(tx)})
}

func (h *TransactionHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	transactionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var existing models.Transaction
	if err := h.DB.Where("id = ? AND owner_id = ?", transactionID, user.ID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeServiceError(c, h.Log, util.ErrNotFound)
		} else {
			writeServiceError(c, h.Log, err)
		}
		return
	}

	tx, ok := h.parse(c, user)
	if !ok {
		return
	}
	tx.ID = existing.ID
	tx.CreatedAt = existing.CreatedAt

	if err := h.DB.Save(tx).Error; err != nil {
		writeServiceError(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"transaction": serializeTransaction(tx)})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	transactionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result := h.DB.Where("id = ? AND owner_id = ?", transactionID, user.ID).Delete(&models.Transaction{})
	if result.Error != nil {
		writeServiceError(c, h.Log, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		writeServiceError(c, h.Log, util.ErrNotFound)
		return
	}
	util.Success(c, util.Response{"deleted_id": transactionID})
}

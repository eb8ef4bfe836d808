package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Bank{},
		&models.Transaction{},
		&models.Payable{},
	))
	return db
}

// bankTestRouter mounts the delete route behind a stub that injects the
// authenticated user, the same contract the auth middleware fulfills.
func bankTestRouter(db *gorm.DB, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("currentUser", user) })
	h := NewBankHandler(db, zap.NewNop())
	r.DELETE("/api/banks/:id", h.Delete)
	return r
}

func TestBankDelete(t *testing.T) {
	db := newHandlerDB(t)
	user := &models.User{Username: "maria", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	router := bankTestRouter(db, user)

	deleteBank := func(id uint) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/banks/%d", id), nil)
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("blocked while transactions reference the bank", func(t *testing.T) {
		bank := &models.Bank{OwnerID: user.ID, Name: "Nubank", Slug: "nubank"}
		require.NoError(t, db.Create(bank).Error)
		require.NoError(t, db.Create(&models.Transaction{
			OwnerID: user.ID, BankID: bank.ID, Title: "Salario",
			TransactionType: models.TransactionIncome,
			Amount:          decimal.RequireFromString("1000.00"),
			TransactionDate: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		}).Error)

		w := deleteBank(bank.ID)
		assert.Equal(t, http.StatusConflict, w.Code)

		var body struct {
			Code int `json:"code"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, util.CodeConflict, body.Code)

		var count int64
		require.NoError(t, db.Model(&models.Bank{}).Where("id = ?", bank.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count, "protected bank must survive")
	})

	t.Run("succeeds and detaches payables without transactions", func(t *testing.T) {
		bank := &models.Bank{OwnerID: user.ID, Name: "Inter", Slug: "inter"}
		require.NoError(t, db.Create(bank).Error)
		payable := &models.Payable{
			OwnerID: user.ID, BankID: &bank.ID, Title: "Fatura",
			PayableType: models.PayableInvoice, Status: models.StatusPending,
			Amount:  decimal.RequireFromString("150.00"),
			DueDate: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, db.Create(payable).Error)

		w := deleteBank(bank.ID)
		assert.Equal(t, http.StatusOK, w.Code)

		var count int64
		require.NoError(t, db.Model(&models.Bank{}).Where("id = ?", bank.ID).Count(&count).Error)
		assert.Zero(t, count)

		var kept models.Payable
		require.NoError(t, db.First(&kept, payable.ID).Error)
		assert.Nil(t, kept.BankID, "payable should be detached, not deleted")
	})

	t.Run("another owner's bank is not found", func(t *testing.T) {
		other := &models.User{Username: "jose", PasswordHash: "x"}
		require.NoError(t, db.Create(other).Error)
		bank := &models.Bank{OwnerID: other.ID, Name: "Itau", Slug: "itau"}
		require.NoError(t, db.Create(bank).Error)

		w := deleteBank(bank.ID)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

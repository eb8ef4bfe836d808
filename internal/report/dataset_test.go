package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var reportToday = time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Bank{},
		&models.PayableCategory{},
		&models.Payable{},
		&models.Transaction{},
	))
	return db
}

func seedBank(t *testing.T, db *gorm.DB, ownerID uint, name, slug string) *models.Bank {
	t.Helper()
	bank := &models.Bank{OwnerID: ownerID, Name: name, Slug: slug, Color: "#000000", Icon: "ph-bank"}
	require.NoError(t, db.Create(bank).Error)
	return bank
}

func seedPayable(t *testing.T, db *gorm.DB, p models.Payable) *models.Payable {
	t.Helper()
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildPayablesDataset(t *testing.T) {
	db := newTestDB(t)
	bank := seedBank(t, db, 1, "Nubank", "nubank")
	paidAt := day(10)

	seedPayable(t, db, models.Payable{
		OwnerID: 1, BankID: &bank.ID, Title: "Paga", PayableType: models.PayableInvoice,
		Status: models.StatusPaid, Amount: decimal.RequireFromString("100.00"),
		DueDate: day(5), PaymentDate: &paidAt,
	})
	seedPayable(t, db, models.Payable{
		OwnerID: 1, BankID: &bank.ID, Title: "Atrasada", PayableType: models.PayableInvoice,
		Status: models.StatusPending, Amount: decimal.RequireFromString("40.00"),
		DueDate: day(10),
	})
	seedPayable(t, db, models.Payable{
		OwnerID: 1, Title: "Futura", PayableType: models.PayableSubscription,
		Status: models.StatusPending, Amount: decimal.RequireFromString("25.50"),
		DueDate: day(20),
	})
	// another owner's record never leaks into the report
	seedPayable(t, db, models.Payable{
		OwnerID: 2, Title: "Alheia", PayableType: models.PayableInvoice,
		Status: models.StatusPending, Amount: decimal.RequireFromString("999.00"),
		DueDate: day(10),
	})

	t.Run("classifies rows against today", func(t *testing.T) {
		d, err := BuildDataset(db, KindPayables, Params{OwnerID: 1, Detail: DetailBoth, Today: reportToday})
		require.NoError(t, err)
		require.Len(t, d.Rows, 3)

		statuses := []string{d.Rows[0][4], d.Rows[1][4], d.Rows[2][4]}
		assert.Equal(t, []string{"Pago", "Vencida", "Pendente"}, statuses)

		// no bank and no category fall back to labels
		assert.Equal(t, "Sem banco", d.Rows[2][3])
		assert.Equal(t, "Assinatura", d.Rows[2][2])

		assert.Contains(t, d.Summary, "Total de contas: 3")
		assert.Contains(t, d.Summary, "Total pendente: R$ 25,50")
		assert.Contains(t, d.Summary, "Total vencido: R$ 40,00")
		assert.Contains(t, d.Summary, "Total pago: R$ 100,00")
		assert.Contains(t, d.Summary, "Total geral: R$ 165,50")
		assert.Contains(t, d.Summary, "Consolidado por banco:")
		assert.Contains(t, d.Summary, "- Nubank: R$ 140,00")
		assert.Contains(t, d.Summary, "- Sem banco: R$ 25,50")
	})

	t.Run("date range is inclusive on both ends", func(t *testing.T) {
		start, end := day(5), day(10)
		d, err := BuildDataset(db, KindPayables, Params{
			OwnerID: 1, Start: &start, End: &end, Detail: DetailDetailed, Today: reportToday,
		})
		require.NoError(t, err)
		require.Len(t, d.Rows, 2)
		assert.Equal(t, "Paga", d.Rows[0][1])
		assert.Equal(t, "Atrasada", d.Rows[1][1])
		assert.Contains(t, d.Summary, "Periodo: 05/03/2025 a 10/03/2025")
	})

	t.Run("bank filter narrows scope and title", func(t *testing.T) {
		d, err := BuildDataset(db, KindPayables, Params{
			OwnerID: 1, Bank: bank, Detail: DetailBoth, Today: reportToday,
		})
		require.NoError(t, err)
		assert.Len(t, d.Rows, 2)
		assert.Equal(t, "Relatorio de contas a pagar - Nubank - Todo periodo", d.Title)
	})

	t.Run("consolidated view drops the rows", func(t *testing.T) {
		d, err := BuildDataset(db, KindPayables, Params{OwnerID: 1, Detail: DetailConsolidated, Today: reportToday})
		require.NoError(t, err)
		assert.Empty(t, d.Rows)
		assert.Contains(t, d.Summary, "Visao: Consolidado")
		assert.Contains(t, d.Summary, "Consolidado por status:")
	})

	t.Run("detailed view skips consolidations", func(t *testing.T) {
		d, err := BuildDataset(db, KindPayables, Params{OwnerID: 1, Detail: DetailDetailed, Today: reportToday})
		require.NoError(t, err)
		assert.NotEmpty(t, d.Rows)
		assert.NotContains(t, d.Summary, "Consolidado por banco:")
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		_, err := BuildDataset(db, "weekly", Params{OwnerID: 1, Detail: DetailBoth, Today: reportToday})
		assert.Error(t, err)
	})
}

func TestBuildCashflowDataset(t *testing.T) {
	db := newTestDB(t)
	nubank := seedBank(t, db, 1, "Nubank", "nubank")
	itau := seedBank(t, db, 1, "Itau", "itau")

	transactions := []models.Transaction{
		{
			OwnerID: 1, BankID: nubank.ID, Title: "Salario",
			TransactionType: models.TransactionIncome,
			Amount:          decimal.RequireFromString("1000.00"),
			TransactionDate: day(1),
		},
		{
			OwnerID: 1, BankID: nubank.ID, Title: "Mercado",
			TransactionType: models.TransactionExpense,
			Amount:          decimal.RequireFromString("400.00"),
			TransactionDate: day(8),
		},
		{
			OwnerID: 1, BankID: itau.ID, Title: "Aluguel",
			TransactionType: models.TransactionExpense,
			Amount:          decimal.RequireFromString("250.00"),
			TransactionDate: day(12),
		},
	}
	require.NoError(t, db.Create(&transactions).Error)

	d, err := BuildDataset(db, KindCashflow, Params{OwnerID: 1, Detail: DetailBoth, Today: reportToday})
	require.NoError(t, err)
	require.Len(t, d.Rows, 3)
	assert.Equal(t, []string{"Data", "Titulo", "Tipo", "Banco", "Valor", "Descricao"}, d.Headers)
	assert.Equal(t, "01/03/2025", d.Rows[0][0])
	assert.Equal(t, "Entrada", d.Rows[0][2])
	assert.Equal(t, "Saida", d.Rows[1][2])

	assert.Contains(t, d.Summary, "Entradas: R$ 1.000,00")
	assert.Contains(t, d.Summary, "Saidas: R$ 650,00")
	assert.Contains(t, d.Summary, "Saldo: R$ 350,00")

	// per-bank consolidation is a signed balance
	assert.Contains(t, d.Summary, "Consolidado por banco (saldo):")
	assert.Contains(t, d.Summary, "- Nubank: R$ 600,00")
	assert.Contains(t, d.Summary, "- Itau: R$ -250,00")
}

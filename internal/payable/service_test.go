package payable

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/blob"
	"github.com/AndreCode112/FinanceMartins/internal/clock"
	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testToday = time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

// sameDay compares dates that round-tripped through the database, where
// the driver may hand back a different location.
func sameDay(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
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
		&models.PayableStatusHistory{},
	))

	store, err := blob.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	return NewService(db, store, clock.Fixed(testToday), zap.NewNop()), db
}

func mustCreatePending(t *testing.T, s *Service, ownerID uint, title string, amount string, due time.Time) *models.Payable {
	t.Helper()
	p, err := s.Create(ownerID, Input{
		Title:       title,
		PayableType: models.PayableInvoice,
		Status:      models.StatusPending,
		Amount:      decimal.RequireFromString(amount),
		DueDate:     due,
	})
	require.NoError(t, err)
	return p
}

func historyCount(t *testing.T, db *gorm.DB, payableID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.PayableStatusHistory{}).
		Where("payable_id = ?", payableID).Count(&count).Error)
	return count
}

func TestCreatePlan(t *testing.T) {
	s, _ := newTestService(t)

	t.Run("splits amount evenly", func(t *testing.T) {
		created, err := s.CreatePlan(1, PlanInput{
			Title:             "Notebook",
			TotalAmount:       decimal.RequireFromString("300.00"),
			DueDate:           time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC),
			InstallmentNumber: 1,
			InstallmentTotal:  12,
			Status:            models.StatusPending,
		})
		require.NoError(t, err)
		require.Len(t, created, 12)

		for i, p := range created {
			assert.Equal(t, "25.00", p.Amount.StringFixed(2))
			assert.Equal(t, i+1, *p.InstallmentNumber)
			assert.Equal(t, 12, *p.InstallmentTotal)
			assert.Equal(t, models.StatusPending, p.Status)
			require.NotNil(t, p.InstallmentGroup)
			assert.Equal(t, *created[0].InstallmentGroup, *p.InstallmentGroup)
		}
		sameDay(t, time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC), created[0].DueDate)
		sameDay(t, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), created[11].DueDate)
	})

	t.Run("distributes remainder cents to first installments", func(t *testing.T) {
		created, err := s.CreatePlan(1, PlanInput{
			Title:             "Sofa",
			TotalAmount:       decimal.RequireFromString("100.00"),
			DueDate:           time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC),
			InstallmentNumber: 1,
			InstallmentTotal:  3,
			Status:            models.StatusPending,
		})
		require.NoError(t, err)
		require.Len(t, created, 3)
		assert.Equal(t, "33.34", created[0].Amount.StringFixed(2))
		assert.Equal(t, "33.33", created[1].Amount.StringFixed(2))
		assert.Equal(t, "33.33", created[2].Amount.StringFixed(2))
	})

	t.Run("anchors due dates on the current installment", func(t *testing.T) {
		paidDate := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
		created, err := s.CreatePlan(1, PlanInput{
			Title:             "Geladeira",
			TotalAmount:       decimal.RequireFromString("1200.00"),
			DueDate:           time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
			InstallmentNumber: 3,
			InstallmentTotal:  4,
			Status:            models.StatusPaid,
			PaymentDate:       &paidDate,
			PaymentNote:       "pix",
		})
		require.NoError(t, err)
		require.Len(t, created, 4)

		// installment 1 sits two months before the current one, with
		// day-of-month clamping
		sameDay(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), created[0].DueDate)
		sameDay(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), created[1].DueDate)
		sameDay(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), created[2].DueDate)
		sameDay(t, time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC), created[3].DueDate)

		// only the current installment keeps the paid state
		assert.Equal(t, models.StatusPaid, created[2].Status)
		require.NotNil(t, created[2].PaymentDate)
		assert.Equal(t, "pix", created[2].PaymentNote)
		for _, i := range []int{0, 1, 3} {
			assert.Equal(t, models.StatusPending, created[i].Status)
			assert.Nil(t, created[i].PaymentDate)
			assert.Empty(t, created[i].PaymentNote)
		}
	})

	t.Run("rejects current installment above total", func(t *testing.T) {
		_, err := s.CreatePlan(1, PlanInput{
			Title:             "Errada",
			TotalAmount:       decimal.RequireFromString("90.00"),
			DueDate:           testToday,
			InstallmentNumber: 5,
			InstallmentTotal:  3,
			Status:            models.StatusPending,
		})
		var verr *util.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "installment_number")
	})
}

func TestUpdateStatus(t *testing.T) {
	s, db := newTestService(t)

	t.Run("records one history entry per real change", func(t *testing.T) {
		p := mustCreatePending(t, s, 1, "Conta de luz", "150.00", testToday)

		updated, entry, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid})
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, models.StatusPaid, updated.Status)
		require.NotNil(t, updated.PaymentDate)
		assert.Equal(t, testToday, *updated.PaymentDate)
		assert.Equal(t, "status_update", entry.Source)

		// identical transition is a no-op: no extra history
		_, entry, _, err = s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid})
		require.NoError(t, err)
		assert.Nil(t, entry)
		assert.EqualValues(t, 1, historyCount(t, db, p.ID))

		// reopen then pay again: two more entries
		_, _, _, err = s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPending, ClearReceipt: true})
		require.NoError(t, err)
		_, _, _, err = s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid})
		require.NoError(t, err)
		assert.EqualValues(t, 3, historyCount(t, db, p.ID))
	})

	t.Run("explicit date wins over existing", func(t *testing.T) {
		p := mustCreatePending(t, s, 1, "Internet", "99.90", testToday)
		first := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
		_, _, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid, PaymentDate: &first})
		require.NoError(t, err)

		second := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
		updated, _, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid, PaymentDate: &second})
		require.NoError(t, err)
		assert.Equal(t, second, *updated.PaymentDate)
	})

	t.Run("nil note keeps the current note", func(t *testing.T) {
		p := mustCreatePending(t, s, 1, "Agua", "80.00", testToday)
		note := "boleto"
		_, _, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid, PaymentNote: &note})
		require.NoError(t, err)

		updated, _, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid, PaymentDate: &testToday})
		require.NoError(t, err)
		assert.Equal(t, "boleto", updated.PaymentNote)

		empty := ""
		updated, _, _, err = s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid, PaymentNote: &empty})
		require.NoError(t, err)
		assert.Empty(t, updated.PaymentNote)
	})

	t.Run("pending clears payment fields", func(t *testing.T) {
		p := mustCreatePending(t, s, 1, "Cartao", "500.00", testToday)
		note := "debito automatico"
		_, _, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid, PaymentNote: &note})
		require.NoError(t, err)

		updated, _, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPending, ClearReceipt: true})
		require.NoError(t, err)
		assert.Nil(t, updated.PaymentDate)
		assert.Empty(t, updated.PaymentNote)
	})

	t.Run("other owners see not found", func(t *testing.T) {
		p := mustCreatePending(t, s, 1, "Privada", "10.00", testToday)
		_, _, _, err := s.UpdateStatus(2, p.ID, StatusChange{Status: models.StatusPaid})
		assert.ErrorIs(t, err, util.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	s, db := newTestService(t)

	t.Run("single payable", func(t *testing.T) {
		p := mustCreatePending(t, s, 1, "Avulsa", "42.00", testToday)
		result, _, err := s.Delete(1, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{p.ID}, result.DeletedIDs)
		assert.Nil(t, result.DeletedGroup)
	})

	t.Run("grouped installment removes the whole group", func(t *testing.T) {
		created, err := s.CreatePlan(1, PlanInput{
			Title:             "TV",
			TotalAmount:       decimal.RequireFromString("600.00"),
			DueDate:           testToday,
			InstallmentNumber: 1,
			InstallmentTotal:  6,
			Status:            models.StatusPending,
		})
		require.NoError(t, err)

		// deleting the third installment takes the other five with it
		result, _, err := s.Delete(1, created[2].ID)
		require.NoError(t, err)
		assert.Len(t, result.DeletedIDs, 6)
		require.NotNil(t, result.DeletedGroup)
		assert.Equal(t, *created[0].InstallmentGroup, *result.DeletedGroup)

		var remaining int64
		require.NoError(t, db.Model(&models.Payable{}).
			Where("installment_group = ?", *created[0].InstallmentGroup).
			Count(&remaining).Error)
		assert.Zero(t, remaining)
	})
}

func TestNormalizeLegacy(t *testing.T) {
	s, db := newTestService(t)

	intp := func(n int) *int { return &n }
	legacy := []models.Payable{
		{
			OwnerID: 1, Title: "Celular", PayableType: models.PayableInstallment,
			Status: models.StatusPaid, Amount: decimal.RequireFromString("120.00"),
			DueDate:           time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
			PaymentDate:       &testToday,
			InstallmentNumber: intp(1), InstallmentTotal: intp(4),
		},
		{
			OwnerID: 1, Title: "Celular", PayableType: models.PayableInstallment,
			Status: models.StatusPending, Amount: decimal.RequireFromString("120.00"),
			DueDate:           time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			InstallmentNumber: intp(3), InstallmentTotal: intp(4),
		},
	}
	require.NoError(t, db.Create(&legacy).Error)

	require.NoError(t, s.NormalizeLegacy(1))

	var group []models.Payable
	require.NoError(t, db.Where("owner_id = ? AND title = ?", 1, "Celular").
		Order("installment_number").Find(&group).Error)
	require.Len(t, group, 4)

	groupID := group[0].InstallmentGroup
	require.NotNil(t, groupID)
	for i, p := range group {
		assert.Equal(t, i+1, *p.InstallmentNumber)
		require.NotNil(t, p.InstallmentGroup)
		assert.Equal(t, *groupID, *p.InstallmentGroup)
	}

	// synthesized installments fill the gaps as pending records
	assert.Equal(t, models.StatusPaid, group[0].Status)
	assert.Equal(t, models.StatusPending, group[1].Status)
	sameDay(t, time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC), group[1].DueDate)
	sameDay(t, time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC), group[3].DueDate)

	// idempotent: a second run changes nothing
	require.NoError(t, s.NormalizeLegacy(1))
	var count int64
	require.NoError(t, db.Model(&models.Payable{}).
		Where("owner_id = ? AND title = ?", 1, "Celular").Count(&count).Error)
	assert.EqualValues(t, 4, count)
}

func TestGroupBulkUpdate(t *testing.T) {
	newPlan := func(t *testing.T, s *Service) []models.Payable {
		t.Helper()
		created, err := s.CreatePlan(1, PlanInput{
			Title:             "Curso",
			TotalAmount:       decimal.RequireFromString("400.00"),
			DueDate:           testToday,
			InstallmentNumber: 1,
			InstallmentTotal:  4,
			Status:            models.StatusPending,
		})
		require.NoError(t, err)
		return created
	}

	t.Run("pay_until marks the prefix paid", func(t *testing.T) {
		s, _ := newTestService(t)
		plan := newPlan(t, s)

		until := 2
		updated, _, err := s.GroupBulkUpdate(1, plan[0].ID, GroupBulkInput{
			Action:           GroupPayUntil,
			UntilInstallment: &until,
			PaymentNote:      "adiantado",
		})
		require.NoError(t, err)
		require.Len(t, updated, 4)
		for _, p := range updated[:2] {
			assert.Equal(t, models.StatusPaid, p.Status)
			require.NotNil(t, p.PaymentDate)
			sameDay(t, testToday, *p.PaymentDate)
			assert.Equal(t, "adiantado", p.PaymentNote)
		}
		for _, p := range updated[2:] {
			assert.Equal(t, models.StatusPending, p.Status)
			assert.Nil(t, p.PaymentDate)
		}
	})

	t.Run("pay_until zero is a no-op", func(t *testing.T) {
		s, db := newTestService(t)
		plan := newPlan(t, s)

		zero := 0
		updated, _, err := s.GroupBulkUpdate(1, plan[0].ID, GroupBulkInput{
			Action:           GroupPayUntil,
			UntilInstallment: &zero,
		})
		require.NoError(t, err)
		for _, p := range updated {
			assert.Equal(t, models.StatusPending, p.Status)
		}
		assert.EqualValues(t, 0, historyCount(t, db, plan[0].ID))
	})

	t.Run("pay_until beyond the group is rejected", func(t *testing.T) {
		s, _ := newTestService(t)
		plan := newPlan(t, s)

		nine := 9
		_, _, err := s.GroupBulkUpdate(1, plan[0].ID, GroupBulkInput{
			Action:           GroupPayUntil,
			UntilInstallment: &nine,
		})
		var verr *util.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "until_installment")
	})

	t.Run("pay_all then reopen_all", func(t *testing.T) {
		s, db := newTestService(t)
		plan := newPlan(t, s)

		updated, _, err := s.GroupBulkUpdate(1, plan[0].ID, GroupBulkInput{Action: GroupPayAll})
		require.NoError(t, err)
		for _, p := range updated {
			assert.Equal(t, models.StatusPaid, p.Status)
		}

		updated, _, err = s.GroupBulkUpdate(1, plan[0].ID, GroupBulkInput{Action: GroupReopenAll})
		require.NoError(t, err)
		for _, p := range updated {
			assert.Equal(t, models.StatusPending, p.Status)
			assert.Nil(t, p.PaymentDate)
		}

		// every installment carries one bulk_pay_all and one
		// bulk_reopen_all entry
		var entries []models.PayableStatusHistory
		require.NoError(t, db.Where("payable_id = ?", plan[0].ID).Order("id").Find(&entries).Error)
		require.Len(t, entries, 2)
		assert.Equal(t, "bulk_pay_all", entries[0].Source)
		assert.Equal(t, "bulk_reopen_all", entries[1].Source)
	})

	t.Run("ungrouped payable is rejected", func(t *testing.T) {
		s, _ := newTestService(t)
		p := mustCreatePending(t, s, 1, "Solta", "15.00", testToday)
		_, _, err := s.GroupBulkUpdate(1, p.ID, GroupBulkInput{Action: GroupPayAll})
		assert.ErrorIs(t, err, util.ErrInvalidGroup)
	})
}

func TestBulkAction(t *testing.T) {
	t.Run("mark_paid shares date and note", func(t *testing.T) {
		s, _ := newTestService(t)
		a := mustCreatePending(t, s, 1, "Conta A", "10.00", testToday)
		b := mustCreatePending(t, s, 1, "Conta B", "20.00", testToday.AddDate(0, 0, 5))

		when := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
		result, _, err := s.BulkAction(1, BulkActionInput{
			Action:      BulkMarkPaid,
			PayableIDs:  []uint{a.ID, b.ID, a.ID}, // duplicate id is dropped
			PaymentDate: &when,
			PaymentNote: "lote",
		})
		require.NoError(t, err)
		require.Len(t, result.Payables, 2)
		for _, p := range result.Payables {
			assert.Equal(t, models.StatusPaid, p.Status)
			sameDay(t, when, *p.PaymentDate)
			assert.Equal(t, "lote", p.PaymentNote)
		}
	})

	t.Run("delete expands grouped installments", func(t *testing.T) {
		s, db := newTestService(t)
		plan, err := s.CreatePlan(1, PlanInput{
			Title:             "Moto",
			TotalAmount:       decimal.RequireFromString("5000.00"),
			DueDate:           testToday,
			InstallmentNumber: 1,
			InstallmentTotal:  10,
			Status:            models.StatusPending,
		})
		require.NoError(t, err)
		loose := mustCreatePending(t, s, 1, "Avulsa", "30.00", testToday)

		result, _, err := s.BulkAction(1, BulkActionInput{
			Action:     BulkDelete,
			PayableIDs: []uint{plan[4].ID, loose.ID},
		})
		require.NoError(t, err)
		assert.Len(t, result.DeletedIDs, 11)

		var remaining int64
		require.NoError(t, db.Model(&models.Payable{}).Where("owner_id = ?", 1).Count(&remaining).Error)
		assert.Zero(t, remaining)
	})

	t.Run("unknown ids alone are not found", func(t *testing.T) {
		s, _ := newTestService(t)
		_, _, err := s.BulkAction(1, BulkActionInput{Action: BulkMarkPaid, PayableIDs: []uint{999}})
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("invalid action is rejected", func(t *testing.T) {
		s, _ := newTestService(t)
		_, _, err := s.BulkAction(1, BulkActionInput{Action: "explode", PayableIDs: []uint{1}})
		var verr *util.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "action")
	})
}

func TestReceipts(t *testing.T) {
	s, _ := newTestService(t)

	t.Run("attach requires paid status", func(t *testing.T) {
		p := mustCreatePending(t, s, 1, "Boleto", "70.00", testToday)
		_, _, err := s.AttachReceipt(1, p.ID, strings.NewReader("fake"), "comprovante.pdf", 4)
		var verr *util.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "receipt")
	})

	t.Run("attach, open and delete round trip", func(t *testing.T) {
		p := mustCreatePending(t, s, 1, "Fatura", "200.00", testToday)
		_, _, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid})
		require.NoError(t, err)

		updated, warnings, err := s.AttachReceipt(1, p.ID, strings.NewReader("conteudo"), "recibo.png", 8)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.True(t, updated.HasReceipt())
		assert.Equal(t, "recibo.png", updated.ReceiptName)

		rc, name, err := s.OpenReceipt(1, p.ID)
		require.NoError(t, err)
		rc.Close()
		assert.Equal(t, "recibo.png", name)

		updated, _, err = s.DeleteReceipt(1, p.ID)
		require.NoError(t, err)
		assert.False(t, updated.HasReceipt())

		_, _, err = s.OpenReceipt(1, p.ID)
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("rejects bad extension and oversized files", func(t *testing.T) {
		p := mustCreatePending(t, s, 1, "Outra", "50.00", testToday)
		_, _, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid})
		require.NoError(t, err)

		_, _, err = s.AttachReceipt(1, p.ID, strings.NewReader("x"), "script.sh", 1)
		var verr *util.ValidationError
		require.ErrorAs(t, err, &verr)

		_, _, err = s.AttachReceipt(1, p.ID, strings.NewReader("x"), "grande.pdf", MaxReceiptSize+1)
		require.ErrorAs(t, err, &verr)
	})

	t.Run("reopening releases the receipt", func(t *testing.T) {
		p := mustCreatePending(t, s, 1, "Com recibo", "90.00", testToday)
		_, _, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid})
		require.NoError(t, err)
		_, _, err = s.AttachReceipt(1, p.ID, strings.NewReader("conteudo"), "nota.jpg", 8)
		require.NoError(t, err)

		updated, _, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPending, ClearReceipt: true})
		require.NoError(t, err)
		assert.False(t, updated.HasReceipt())
	})
}

func TestUpdateReleasesReceiptWhenPending(t *testing.T) {
	s, _ := newTestService(t)

	p := mustCreatePending(t, s, 1, "Mensalidade", "300.00", testToday)
	_, _, _, err := s.UpdateStatus(1, p.ID, StatusChange{Status: models.StatusPaid})
	require.NoError(t, err)
	_, _, err = s.AttachReceipt(1, p.ID, strings.NewReader("conteudo"), "mensalidade.pdf", 8)
	require.NoError(t, err)

	updated, _, err := s.Update(1, p.ID, Input{
		Title:       "Mensalidade",
		PayableType: models.PayableInvoice,
		Status:      models.StatusPending,
		Amount:      decimal.RequireFromString("300.00"),
		DueDate:     testToday,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.False(t, updated.HasReceipt())
}

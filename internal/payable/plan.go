package payable

import (
	"fmt"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/money"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlanInput describes an installment plan from the point of view of the
// "current" installment the user is looking at: its due date, its number
// within the plan, and the status/payment fields it should keep.
type PlanInput struct {
	BankID            *uint
	CategoryID        *uint
	Title             string
	Description       string
	TotalAmount       decimal.Decimal
	DueDate           time.Time
	InstallmentNumber int
	InstallmentTotal  int
	Status            models.PayableStatus
	PaymentDate       *time.Time
	PaymentNote       string
}

// CreatePlan splits the plan total into InstallmentTotal payables sharing
// a fresh group id, one due date per month anchored on the current
// installment's due date. Every installment other than the current one is
// created pending with empty payment fields. All rows are inserted in one
// transaction and returned ordered by installment number.
func (s *Service) CreatePlan(ownerID uint, in PlanInput) ([]models.Payable, error) {
	today := s.clock.Today()
	group := uuid.NewString()

	records, verr := buildPlanRecords(ownerID, group, in, today)
	if verr != nil {
		return nil, verr
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if verr := validateRefs(tx, ownerID, in.BankID, in.CategoryID); verr != nil {
			return verr
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return nil, err
	}

	return groupMembers(s.db, ownerID, group)
}

// buildPlanRecords assembles the N payables of a plan in memory.
func buildPlanRecords(ownerID uint, group string, in PlanInput, today time.Time) ([]models.Payable, *util.ValidationError) {
	errs := &util.ValidationError{}
	if in.InstallmentTotal < 1 {
		errs.Add("installment_total", "Informe o total de parcelas.")
	}
	if in.InstallmentNumber < 1 {
		in.InstallmentNumber = 1
	}
	if in.InstallmentTotal >= 1 && in.InstallmentNumber > in.InstallmentTotal {
		errs.Add("installment_number", "Parcela atual nao pode ser maior que o total.")
	}
	if !in.Status.Valid() {
		errs.Add("status", "Status invalido.")
	}
	if !errs.Empty() {
		return nil, errs
	}

	shares := money.Split(in.TotalAmount, in.InstallmentTotal)
	baseDue := util.DateOnly(in.DueDate)

	records := make([]models.Payable, 0, in.InstallmentTotal)
	for number := 1; number <= in.InstallmentTotal; number++ {
		current := number == in.InstallmentNumber

		status := models.StatusPending
		var paymentDate *time.Time
		paymentNote := ""
		if current {
			status = in.Status
			if status == models.StatusPaid {
				paymentDate = copyDate(in.PaymentDate)
				paymentNote = in.PaymentNote
			}
		}

		n := number
		total := in.InstallmentTotal
		g := group
		p := models.Payable{
			OwnerID:           ownerID,
			BankID:            in.BankID,
			CategoryID:        in.CategoryID,
			Title:             in.Title,
			Description:       in.Description,
			PayableType:       models.PayableInstallment,
			Status:            status,
			Amount:            shares[number-1],
			DueDate:           AddMonths(baseDue, number-in.InstallmentNumber),
			PaymentDate:       paymentDate,
			PaymentNote:       paymentNote,
			InstallmentNumber: &n,
			InstallmentTotal:  &total,
			InstallmentGroup:  &g,
		}
		if verr := Clean(&p, today); verr != nil {
			return nil, verr
		}
		records = append(records, p)
	}
	return records, nil
}

// planStartDate infers the due date of installment 1 by shifting the
// record's own due date back by its position in the plan.
func planStartDate(p *models.Payable) time.Time {
	number := 1
	if p.InstallmentNumber != nil {
		number = *p.InstallmentNumber
	}
	return AddMonths(util.DateOnly(p.DueDate), -(number - 1))
}

// legacyKey clusters ungrouped installments that by all appearances came
// from the same plan. This is a heuristic over stored fields, not a
// persisted identity.
type legacyKey struct {
	BankID    uint
	Title     string
	Desc      string
	Amount    string
	Total     int
	StartDate string
}

// NormalizeLegacy assigns a group id to installment payables created
// before grouping existed, and synthesizes the missing pending
// installments of each inferred plan. Once a record has a group it is
// never selected again, so the operation is idempotent and safe to run on
// every dashboard load.
func (s *Service) NormalizeLegacy(ownerID uint) error {
	var legacy []models.Payable
	err := s.db.
		Where("owner_id = ? AND payable_type = ? AND installment_total > 1 AND installment_group IS NULL",
			ownerID, models.PayableInstallment).
		Order("id").
		Find(&legacy).Error
	if err != nil {
		return fmt.Errorf("load legacy installments: %w", err)
	}
	if len(legacy) == 0 {
		return nil
	}

	groups := make(map[legacyKey][]*models.Payable)
	var order []legacyKey
	for i := range legacy {
		p := &legacy[i]
		key := legacyKey{
			Title:     p.Title,
			Desc:      p.Description,
			Amount:    p.Amount.StringFixed(2),
			Total:     *p.InstallmentTotal,
			StartDate: planStartDate(p).Format(util.DateLayout),
		}
		if p.BankID != nil {
			key.BankID = *p.BankID
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range order {
			members := groups[key]
			first := members[0]
			total := *first.InstallmentTotal
			start := planStartDate(first)
			group := uuid.NewString()

			existing := make(map[int]bool)
			for _, p := range members {
				g := group
				p.InstallmentGroup = &g
				if p.InstallmentNumber == nil {
					one := 1
					p.InstallmentNumber = &one
				}
				existing[*p.InstallmentNumber] = true
				if err := tx.Model(p).Select("installment_group", "installment_number").Updates(p).Error; err != nil {
					return fmt.Errorf("assign group: %w", err)
				}
			}

			var missing []models.Payable
			for number := 1; number <= total; number++ {
				if existing[number] {
					continue
				}
				n := number
				t := total
				g := group
				missing = append(missing, models.Payable{
					OwnerID:           first.OwnerID,
					BankID:            first.BankID,
					CategoryID:        first.CategoryID,
					Title:             first.Title,
					Description:       first.Description,
					PayableType:       models.PayableInstallment,
					Status:            models.StatusPending,
					Amount:            first.Amount,
					DueDate:           AddMonths(start, number-1),
					InstallmentNumber: &n,
					InstallmentTotal:  &t,
					InstallmentGroup:  &g,
				})
			}
			if len(missing) > 0 {
				if err := tx.Create(&missing).Error; err != nil {
					return fmt.Errorf("create missing installments: %w", err)
				}
			}
		}
		return nil
	})
}

package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/money"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Report kinds and detail levels.
const (
	KindPayables = "payables"
	KindCashflow = "cashflow"

	DetailConsolidated = "consolidated"
	DetailDetailed     = "detailed"
	DetailBoth         = "both"
)

var detailLabels = map[string]string{
	DetailConsolidated: "Consolidado",
	DetailDetailed:     "Detalhado",
	DetailBoth:         "Consolidado + detalhado",
}

// Dataset is the normalized tabular shape every renderer consumes: a
// title, column headers, zero or more detail rows and free-form summary
// lines.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
	Summary []string
}

// Params scopes a report: owner, optional bank, optional inclusive date
// range, and the detail level controlling whether rows, summaries or both
// are emitted. Today is injected so classification stays deterministic.
type Params struct {
	OwnerID uint
	Bank    *models.Bank
	Start   *time.Time
	End     *time.Time
	Detail  string
	Today   time.Time
}

// BuildDataset aggregates the owner's records into the dataset for the
// requested kind.
func BuildDataset(db *gorm.DB, kind string, p Params) (*Dataset, error) {
	switch kind {
	case KindPayables:
		return buildPayablesDataset(db, p)
	case KindCashflow:
		return buildCashflowDataset(db, p)
	default:
		return nil, util.NewValidationError("report_type", "Tipo de relatorio invalido.")
	}
}

// payableStatusLabel classifies one payable against the evaluation date:
// paid, overdue (due before today and unpaid) or pending.
func payableStatusLabel(p *models.Payable, today time.Time) string {
	if p.Status == models.StatusPaid {
		return "Pago"
	}
	if util.DateOnly(p.DueDate).Before(util.DateOnly(today)) {
		return "Vencida"
	}
	return "Pendente"
}

func buildPayablesDataset(db *gorm.DB, params Params) (*Dataset, error) {
	var payables []models.Payable
	q := db.Preload("Bank").Preload("Category").
		Where("owner_id = ?", params.OwnerID).
		Order("due_date, id")
	if params.Bank != nil {
		q = q.Where("bank_id = ?", params.Bank.ID)
	}
	if params.Start != nil {
		q = q.Where("due_date >= ?", util.DateOnly(*params.Start))
	}
	if params.End != nil {
		q = q.Where("due_date <= ?", util.DateOnly(*params.End))
	}
	if err := q.Find(&payables).Error; err != nil {
		return nil, fmt.Errorf("load payables: %w", err)
	}

	headers := []string{
		"Vencimento", "Titulo", "Categoria", "Banco", "Status",
		"Parcela", "Valor", "Data pagamento", "Obs pagamento", "Descricao",
	}

	var rows [][]string
	totalPending := decimal.Zero
	totalOverdue := decimal.Zero
	totalPaid := decimal.Zero
	byBank := map[string]decimal.Decimal{}
	byCategory := map[string]decimal.Decimal{}
	byStatus := map[string]decimal.Decimal{}

	for i := range payables {
		p := &payables[i]
		statusLabel := payableStatusLabel(p, params.Today)

		installmentLabel := "-"
		if p.InstallmentNumber != nil && p.InstallmentTotal != nil {
			installmentLabel = fmt.Sprintf("%d/%d", *p.InstallmentNumber, *p.InstallmentTotal)
		}
		bankName := "Sem banco"
		if p.Bank != nil {
			bankName = p.Bank.Name
		}
		categoryName := p.PayableType.Label()
		if p.Category != nil {
			categoryName = p.Category.Name
		}

		rows = append(rows, []string{
			formatDateBR(&p.DueDate),
			p.Title,
			categoryName,
			bankName,
			statusLabel,
			installmentLabel,
			money.FormatBR(p.Amount),
			formatDateBR(p.PaymentDate),
			dashIfEmpty(p.PaymentNote),
			dashIfEmpty(p.Description),
		})

		byBank[bankName] = byBank[bankName].Add(p.Amount)
		byCategory[categoryName] = byCategory[categoryName].Add(p.Amount)
		byStatus[statusLabel] = byStatus[statusLabel].Add(p.Amount)
		switch statusLabel {
		case "Pago":
			totalPaid = totalPaid.Add(p.Amount)
		case "Vencida":
			totalOverdue = totalOverdue.Add(p.Amount)
		default:
			totalPending = totalPending.Add(p.Amount)
		}
	}

	totalAmount := totalPending.Add(totalOverdue).Add(totalPaid)
	summary := []string{
		"Visao: " + detailLabel(params.Detail),
		"Periodo: " + periodLabel(params.Start, params.End),
		fmt.Sprintf("Total de contas: %d", len(rows)),
		"Total pendente: " + money.FormatBR(totalPending),
		"Total vencido: " + money.FormatBR(totalOverdue),
		"Total pago: " + money.FormatBR(totalPaid),
		"Total geral: " + money.FormatBR(totalAmount),
	}
	if params.Detail == DetailConsolidated || params.Detail == DetailBoth {
		summary = append(summary, "Consolidado por banco:")
		summary = append(summary, consolidatedLines(byBank)...)
		summary = append(summary, "Consolidado por categoria:")
		summary = append(summary, consolidatedLines(byCategory)...)
		summary = append(summary, "Consolidado por status:")
		summary = append(summary, consolidatedLines(byStatus)...)
	}

	if params.Detail == DetailConsolidated {
		rows = nil
	}

	scope := "Todos os bancos"
	if params.Bank != nil {
		scope = params.Bank.Name
	}
	title := fmt.Sprintf("Relatorio de contas a pagar - %s - %s", scope, periodLabel(params.Start, params.End))

	return &Dataset{Title: title, Headers: headers, Rows: rows, Summary: summary}, nil
}

func buildCashflowDataset(db *gorm.DB, params Params) (*Dataset, error) {
	var transactions []models.Transaction
	q := db.Preload("Bank").
		Where("owner_id = ?", params.OwnerID).
		Order("transaction_date, id")
	if params.Bank != nil {
		q = q.Where("bank_id = ?", params.Bank.ID)
	}
	if params.Start != nil {
		q = q.Where("transaction_date >= ?", util.DateOnly(*params.Start))
	}
	if params.End != nil {
		q = q.Where("transaction_date <= ?", util.DateOnly(*params.End))
	}
	if err := q.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	headers := []string{"Data", "Titulo", "Tipo", "Banco", "Valor", "Descricao"}

	var rows [][]string
	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	byBank := map[string]decimal.Decimal{}
	byType := map[string]decimal.Decimal{}

	for i := range transactions {
		tx := &transactions[i]
		bankName := tx.Bank.Name
		typeName := tx.TransactionType.Label()

		rows = append(rows, []string{
			formatDateBR(&tx.TransactionDate),
			tx.Title,
			typeName,
			bankName,
			money.FormatBR(tx.Amount),
			dashIfEmpty(tx.Description),
		})

		if tx.TransactionType == models.TransactionIncome {
			byBank[bankName] = byBank[bankName].Add(tx.Amount)
			totalIncome = totalIncome.Add(tx.Amount)
		} else {
			byBank[bankName] = byBank[bankName].Sub(tx.Amount)
			totalExpense = totalExpense.Add(tx.Amount)
		}
		byType[typeName] = byType[typeName].Add(tx.Amount)
	}

	summary := []string{
		"Visao: " + detailLabel(params.Detail),
		"Periodo: " + periodLabel(params.Start, params.End),
		fmt.Sprintf("Total de transacoes: %d", len(rows)),
		"Entradas: " + money.FormatBR(totalIncome),
		"Saidas: " + money.FormatBR(totalExpense),
		"Saldo: " + money.FormatBR(totalIncome.Sub(totalExpense)),
	}
	if params.Detail == DetailConsolidated || params.Detail == DetailBoth {
		summary = append(summary, "Consolidado por banco (saldo):")
		summary = append(summary, consolidatedLines(byBank)...)
		summary = append(summary, "Consolidado por tipo:")
		summary = append(summary, consolidatedLines(byType)...)
	}

	if params.Detail == DetailConsolidated {
		rows = nil
	}

	scope := "Todos os bancos"
	if params.Bank != nil {
		scope = params.Bank.Name
	}
	title := fmt.Sprintf("Relatorio de entradas e saidas - %s - %s", scope, periodLabel(params.Start, params.End))

	return &Dataset{Title: title, Headers: headers, Rows: rows, Summary: summary}, nil
}

// consolidatedLines renders one "- key: R$ value" line per grouping key,
// alphabetically so output stays deterministic.
func consolidatedLines(totals map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, "- "+k+": "+money.FormatBR(totals[k]))
	}
	return lines
}

func detailLabel(detail string) string {
	if label, ok := detailLabels[detail]; ok {
		return label
	}
	return detailLabels[DetailBoth]
}

func periodLabel(start, end *time.Time) string {
	switch {
	case start == nil && end == nil:
		return "Todo periodo"
	case start != nil && end != nil:
		return formatDateBR(start) + " a " + formatDateBR(end)
	case start != nil:
		return "A partir de " + formatDateBR(start)
	default:
		return "Ate " + formatDateBR(end)
	}
}

func formatDateBR(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01/2006")
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package report

import (
	"fmt"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"
)

var formatExtensions = map[string]string{
	FormatCSV:   "csv",
	FormatExcel: "xls",
	FormatPDF:   "pdf",
	FormatXLSX:  "xlsx",
}

// FileName builds the attachment name for an export, encoding every
// parameter so downloads stay self-describing.
func FileName(kind, format string, bank *models.Bank, start, end *time.Time, detail string, today time.Time) string {
	bankScope := "todos-bancos"
	if bank != nil {
		bankScope = bank.Slug
	}
	periodStart := "inicio"
	if start != nil {
		periodStart = start.Format(util.DateLayout)
	}
	periodEnd := "fim"
	if end != nil {
		periodEnd = end.Format(util.DateLayout)
	}
	if detail == "" {
		detail = DetailBoth
	}
	return fmt.Sprintf("relatorio-%s-%s-%s-%s-%s-%s.%s",
		util.Slugify(kind), bankScope, periodStart, periodEnd,
		util.Slugify(detail), today.Format(util.DateLayout), formatExtensions[format])
}

package report

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AndreCode112/FinanceMartins/internal/clock"
	"github.com/AndreCode112/FinanceMartins/internal/models"
	"github.com/AndreCode112/FinanceMartins/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
	FormatXLSX  = "xlsx"
)

var formatContentTypes = map[string]string{
	FormatCSV:   "text/csv; charset=utf-8",
	FormatExcel: "application/vnd.ms-excel",
	FormatPDF:   "application/pdf",
	FormatXLSX:  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Service aggregates report datasets and renders export files.
type Service struct {
	db    *gorm.DB
	clock clock.Clock
	log   *zap.Logger
}

func NewService(db *gorm.DB, clk clock.Clock, log *zap.Logger) *Service {
	return &Service{db: db, clock: clk, log: log}
}

// ExportRequest carries the raw export query parameters. Empty kind,
// format and detail fall back to the same defaults the dashboard uses.
type ExportRequest struct {
	Kind      string
	Format    string
	BankParam string
	Detail    string
	StartRaw  string
	EndRaw    string
}

// ExportResult is a rendered report ready to be written as a download.
type ExportResult struct {
	Content     []byte
	ContentType string
	FileName    string
}

// Export validates the request, aggregates the dataset and renders it in
// the requested format.
func (s *Service) Export(ownerID uint, req ExportRequest) (*ExportResult, error) {
	kind := req.Kind
	if kind == "" {
		kind = KindCashflow
	}
	format := req.Format
	if format == "" {
		format = FormatCSV
	}
	detail := req.Detail
	if detail == "" {
		detail = DetailBoth
	}

	if kind != KindCashflow && kind != KindPayables {
		return nil, util.NewValidationError("report_type", "Tipo de relatorio invalido.")
	}
	if _, ok := formatContentTypes[format]; !ok {
		return nil, util.NewValidationError("format", "Formato de exportacao invalido.")
	}
	if detail != DetailConsolidated && detail != DetailDetailed && detail != DetailBoth {
		return nil, util.NewValidationError("detail_level", "Nivel de detalhamento invalido.")
	}

	bank, err := s.resolveBank(ownerID, req.BankParam)
	if err != nil {
		return nil, err
	}
	start, end, err := parsePeriod(req.StartRaw, req.EndRaw)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	dataset, err := BuildDataset(s.db, kind, Params{
		OwnerID: ownerID,
		Bank:    bank,
		Start:   start,
		End:     end,
		Detail:  detail,
		Today:   today,
	})
	if err != nil {
		return nil, err
	}

	var content []byte
	switch format {
	case FormatCSV:
		content, err = RenderCSV(dataset, today)
	case FormatExcel:
		content = RenderSheetML(dataset, today)
	case FormatPDF:
		content = RenderPDF(dataset, today)
	case FormatXLSX:
		content, err = RenderXLSX(dataset, today)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}

	s.log.Info("report exported",
		zap.Uint("owner_id", ownerID),
		zap.String("kind", kind),
		zap.String("format", format),
		zap.Int("rows", len(dataset.Rows)))

	return &ExportResult{
		Content:     content,
		ContentType: formatContentTypes[format],
		FileName:    FileName(kind, format, bank, start, end, detail, today),
	}, nil
}

// resolveBank maps the bank query param to an owned bank. Empty and "all"
// mean no bank filter.
func (s *Service) resolveBank(ownerID uint, param string) (*models.Bank, error) {
	if param == "" || param == "all" {
		return nil, nil
	}
	bankID, err := strconv.ParseUint(param, 10, 64)
	if err != nil || bankID == 0 {
		return nil, util.NewValidationError("bank", "Banco invalido.")
	}
	var bank models.Bank
	err = s.db.Where("id = ? AND owner_id = ?", bankID, ownerID).First(&bank).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewValidationError("bank", "Banco nao encontrado.")
	}
	if err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}
	return &bank, nil
}

func parsePeriod(startRaw, endRaw string) (*time.Time, *time.Time, error) {
	start, err := util.ParseOptionalDate(startRaw)
	if err != nil {
		return nil, nil, util.NewValidationError("start_date", "Data inicial invalida.")
	}
	end, err := util.ParseOptionalDate(endRaw)
	if err != nil {
		return nil, nil, util.NewValidationError("end_date", "Data final invalida.")
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, util.NewValidationError("end_date", "Data inicial nao pode ser maior que a data final.")
	}
	return start, end, nil
}

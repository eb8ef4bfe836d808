package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// RenderXLSX renders the dataset as a real xlsx workbook. It mirrors the
// SpreadsheetML layout (title, generated stamp, blank row, header, rows,
// blank row, summary) with equivalent styling.
func RenderXLSX(d *Dataset, today time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Relatorio"
	f.SetSheetName("Sheet1", sheet)

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	metaStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true}})
	if err != nil {
		return nil, err
	}

	row := 1
	setLine := func(value string, style int) error {
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
		row++
		return nil
	}

	if err := setLine(d.Title, titleStyle); err != nil {
		return nil, err
	}
	if err := setLine("Gerado em: "+formatDateBR(&today), metaStyle); err != nil {
		return nil, err
	}
	row++

	headerCells := make([]interface{}, len(d.Headers))
	for i, h := range d.Headers {
		headerCells[i] = h
	}
	startCell := fmt.Sprintf("A%d", row)
	if err := f.SetSheetRow(sheet, startCell, &headerCells); err != nil {
		return nil, err
	}
	endCell, _ := excelize.CoordinatesToCellName(len(d.Headers), row)
	if err := f.SetCellStyle(sheet, startCell, endCell, headerStyle); err != nil {
		return nil, err
	}
	row++

	for _, r := range d.Rows {
		cells := make([]interface{}, len(r))
		for i, v := range r {
			cells[i] = v
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return nil, err
		}
		row++
	}

	if len(d.Summary) > 0 {
		row++
		for _, line := range d.Summary {
			if err := setLine(line, metaStyle); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

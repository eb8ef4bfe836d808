package report

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"
)

// RenderSheetML renders the dataset as SpreadsheetML, the XML dialect
// Excel accepts under the .xls extension without needing a zip container.
func RenderSheetML(d *Dataset, today time.Time) []byte {
	var rows bytes.Buffer

	writeRow := func(style, value string) {
		fmt.Fprintf(&rows, `<Row><Cell ss:StyleID="%s"><Data ss:Type="String">%s</Data></Cell></Row>`+"\n",
			style, xmlEscape(value))
	}

	writeRow("title", d.Title)
	writeRow("meta", "Gerado em: "+formatDateBR(&today))
	rows.WriteString("<Row></Row>\n")

	rows.WriteString("<Row>")
	for _, h := range d.Headers {
		fmt.Fprintf(&rows, `<Cell ss:StyleID="header"><Data ss:Type="String">%s</Data></Cell>`, xmlEscape(h))
	}
	rows.WriteString("</Row>\n")

	for _, row := range d.Rows {
		rows.WriteString("<Row>")
		for _, value := range row {
			fmt.Fprintf(&rows, `<Cell ss:StyleID="cell"><Data ss:Type="String">%s</Data></Cell>`, xmlEscape(value))
		}
		rows.WriteString("</Row>\n")
	}

	if len(d.Summary) > 0 {
		rows.WriteString("<Row></Row>\n")
		for _, line := range d.Summary {
			writeRow("meta", line)
		}
	}

	var out bytes.Buffer
	out.WriteString(`<?xml version="1.0"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"
 xmlns:o="urn:schemas-microsoft-com:office:office"
 xmlns:x="urn:schemas-microsoft-com:office:excel"
 xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">
 <Styles>
  <Style ss:ID="title"><Font ss:Bold="1" ss:Size="13"/></Style>
  <Style ss:ID="header"><Font ss:Bold="1"/></Style>
  <Style ss:ID="meta"><Font ss:Italic="1"/></Style>
  <Style ss:ID="cell"></Style>
 </Styles>
 <Worksheet ss:Name="Relatorio">
  <Table>
`)
	out.Write(rows.Bytes())
	out.WriteString(`  </Table>
 </Worksheet>
</Workbook>
`)
	return out.Bytes()
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const pdfLinesPerPage = 46

// RenderPDF builds a minimal but valid PDF 1.4 document by hand: one
// Helvetica text stream per page plus the page tree, catalog, xref table
// and trailer. Everything is folded to ASCII first so the latin-1 content
// streams never need an encoding table.
func RenderPDF(d *Dataset, today time.Time) []byte {
	lines := []string{
		"Gerado em: " + formatDateBR(&today),
		"",
		joinColumns(d.Headers),
		strings.Repeat("-", 120),
	}
	for _, row := range d.Rows {
		line := joinColumns(row)
		if len(line) > 120 {
			line = line[:117] + "..."
		}
		lines = append(lines, line)
	}
	if len(d.Summary) > 0 {
		lines = append(lines, "", "Resumo:")
		for _, item := range d.Summary {
			lines = append(lines, normalizeASCII(item))
		}
	}

	var pages [][]string
	for start := 0; start < len(lines); start += pdfLinesPerPage {
		end := start + pdfLinesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	if len(pages) == 0 {
		pages = [][]string{{}}
	}

	objects := map[int]string{}
	nextID := 1
	newObject := func(content string) int {
		id := nextID
		objects[id] = content
		nextID++
		return id
	}

	fontID := newObject("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	title := normalizeASCII(d.Title)

	var contentIDs, pageIDs []int
	for _, pageLines := range pages {
		var stream strings.Builder
		stream.WriteString("BT\n/F1 10 Tf\n40 805 Td\n")
		fmt.Fprintf(&stream, "(%s) Tj\n0 -18 Td\n", escapePDFText(title))
		for _, line := range pageLines {
			fmt.Fprintf(&stream, "(%s) Tj\n0 -14 Td\n", escapePDFText(line))
		}
		stream.WriteString("ET")
		body := stream.String()
		contentIDs = append(contentIDs, newObject(
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(body), body)))
		pageIDs = append(pageIDs, newObject(""))
	}

	pagesID := newObject("")
	catalogID := newObject(fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesID))

	kids := make([]string, len(pageIDs))
	for i, id := range pageIDs {
		kids[i] = fmt.Sprintf("%d 0 R", id)
	}
	objects[pagesID] = fmt.Sprintf("<< /Type /Pages /Count %d /Kids [%s] >>",
		len(pageIDs), strings.Join(kids, " "))

	for i, pageID := range pageIDs {
		objects[pageID] = fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 595 842] "+
				"/Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			pagesID, fontID, contentIDs[i])
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	maxID := nextID - 1
	offsets := make([]int, maxID+1)
	for id := 1; id <= maxID; id++ {
		offsets[id] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", id, objects[id])
	}

	xrefPos := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", maxID+1)
	out.WriteString("0000000000 65535 f \n")
	for id := 1; id <= maxID; id++ {
		fmt.Fprintf(&out, "%010d 00000 n \n", offsets[id])
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF",
		maxID+1, catalogID, xrefPos)
	return out.Bytes()
}

func joinColumns(cols []string) string {
	folded := make([]string, len(cols))
	for i, c := range cols {
		folded[i] = normalizeASCII(c)
	}
	return strings.Join(folded, " | ")
}

var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// normalizeASCII strips diacritics and drops any rune outside ASCII.
func normalizeASCII(s string) string {
	out, _, err := transform.String(asciiFold, s)
	if err != nil {
		return s
	}
	return out
}

func escapePDFText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	s = strings.ReplaceAll(s, ")", `\)`)
	return s
}

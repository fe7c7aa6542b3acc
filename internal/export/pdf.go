package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/skillwise/internal/roadmap"
	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 15.0
	pdfLineH     = 7.0
	pdfBulletW   = 6.0
	pdfNestShift = 6.0
)

var typography = strings.NewReplacer(
	"–", "-",
	"—", "-",
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"•", "-",
	"…", "...",
)

// PDF renders the roadmap as an A4 document with a title and timestamp.
func PDF(text string, generatedAt time.Time) ([]byte, error) {
	pdf := renderPDF(text, generatedAt)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf write: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPDF(text string, generatedAt time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "SkillWise Learning Roadmap", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, "Generated on "+generatedAt.Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for _, l := range roadmap.Classify(text) {
		switch l.Kind {
		case roadmap.KindHeading:
			pdf.SetFont("Arial", "B", 15)
			pdf.MultiCell(0, pdfLineH+1, cleanText(l.Text), "", "L", false)
		case roadmap.KindSubheading:
			pdf.SetFont("Arial", "B", 13)
			pdf.MultiCell(0, pdfLineH+1, cleanText(l.Text), "", "L", false)
		case roadmap.KindBullet:
			pdf.SetFont("Arial", "", 11)
			left := pdfMargin
			if l.Nested {
				left += pdfNestShift
			}
			pdf.SetX(left)
			pdf.CellFormat(pdfBulletW, pdfLineH, "-", "", 0, "L", false, 0, "")
			pdf.MultiCell(0, pdfLineH, cleanText(strings.TrimPrefix(l.Raw, "* ")), "", "L", false)
		default:
			pdf.SetFont("Arial", "", 11)
			pdf.MultiCell(0, pdfLineH, cleanText(l.Text), "", "L", false)
		}
		pdf.Ln(1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 10, "Generated by SkillWise", "", 1, "C", false, 0, "")
	return pdf
}

// cleanText maps typographic punctuation to ASCII and drops anything the core
// fonts cannot encode.
func cleanText(s string) string {
	s = typography.Replace(s)
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if r < 0x20 || r > 0x7e {
			return -1
		}
		return r
	}, s)
}

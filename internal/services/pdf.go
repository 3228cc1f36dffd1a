package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
)

type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// Render lays out the analysis markdown on A4 pages.
func (s *PDFService) Render(title, markdown string, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("Lighthouse", false)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("02/01/2006 15:04")))
	pdf.Ln(10)

	blocks := parseBlocks(markdown)
	if len(blocks) == 0 {
		pdf.SetFont("Helvetica", "", bodyFontSize)
		pdf.MultiCell(0, 6, "(empty)", "", "L", false)
	}

	for _, b := range blocks {
		text := tr(cleanMarkdownInline(b.text))
		switch b.kind {
		case blockHeading:
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", headingSize(b.level))
			pdf.MultiCell(0, 8, text, "", "L", false)
		case blockBullet:
			pdf.SetFont("Helvetica", "", bodyFontSize)
			pdf.MultiCell(0, 6, tr("• ")+text, "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", bodyFontSize)
			pdf.MultiCell(0, 6, text, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

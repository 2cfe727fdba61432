package export

import (
	"bytes"
	"fmt"
	"strings"

	"paper_summaries_go_backend/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// SummaryCardPDF renders a one-page A4 summary card for the paper.
func SummaryCardPDF(p *models.Paper) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(p.Title, true)
	pdf.SetAuthor(strings.Join(p.Authors, ", "), true)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(p.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(strings.Join(p.Authors, ", ")), "", "L", false)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s | published %s", p.Category, p.PublicationDate)), "", "L", false)
	pdf.Ln(4)

	section := func(heading, body string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, tr(heading), "B", 1, "L", false, 0, "")
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(body), "", "L", false)
		pdf.Ln(3)
	}
	section("Abstract", p.Abstract)
	section("Problem", p.Summary.Problem)
	section("Method", p.Summary.Method)
	section("Dataset", p.Summary.Dataset)
	section("Key results", p.Summary.KeyResults)
	section("Takeaway", p.Summary.Takeaway)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render summary card: %w", err)
	}
	return buf.Bytes(), nil
}

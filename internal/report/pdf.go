package report

import (
	"context"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// PDFRenderer draws the document with fpdf using the core Helvetica font.
// Text is translated to cp1252, which covers Western European scripts;
// fpdf prints any other rune as '.'. Embedding a UTF-8 font would lift that
// limit at the cost of shipping the font file with the binary.
type PDFRenderer struct {
	// Compress toggles stream compression. Tests turn it off to inspect text.
	Compress bool
	// Created pins the creation date, which makes output reproducible.
	Created time.Time
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Compress: true}
}

func (r *PDFRenderer) Extension() string   { return "pdf" }
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

var pdfColumnWidths = [3]float64{90, 45, 45}

const pdfRowHeight = 8

func (r *PDFRenderer) Render(ctx context.Context, doc Document, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetTitle(doc.Title, true)
	if !r.Created.IsZero() {
		pdf.SetCreationDate(r.Created)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	for i, s := range doc.Sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		pdf.AddPage()
		if i == 0 && doc.Title != "" {
			pdf.SetFont("Helvetica", "B", 18)
			pdf.CellFormat(0, 12, tr(doc.Title), "", 1, "L", false, 0, "")
			pdf.Ln(2)
		}
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, tr(s.Heading), "", 1, "L", false, 0, "")

		pdfTableHeader(pdf)
		for _, row := range s.Rows {
			if pdf.GetY()+pdfRowHeight > pageHeight-bottom {
				pdf.AddPage()
				pdfTableHeader(pdf)
			}
			pdf.CellFormat(pdfColumnWidths[0], pdfRowHeight, tr(row.Title), "1", 0, "L", false, 0, "")
			pdf.CellFormat(pdfColumnWidths[1], pdfRowHeight, tr(row.Amount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(pdfColumnWidths[2], pdfRowHeight, row.Date, "1", 1, "L", false, 0, "")
		}

		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 10, tr(s.TotalLine()), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// pdfTableHeader draws the column titles and leaves the body font set.
func pdfTableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for c, name := range Columns {
		pdf.CellFormat(pdfColumnWidths[c], pdfRowHeight, name, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 11)
}

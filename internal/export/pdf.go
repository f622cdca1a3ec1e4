package export

import (
    "io"

    "github.com/jung-kurt/gofpdf"

    "github.com/hyperifyio/hanadict/internal/dictionary"
)

// Landscape A4 leaves 277mm between 10mm margins; widths follow Header order.
var pdfColumnWidths = []float64{40, 40, 45, 40, 25, 25, 32, 30}

const (
    pdfMargin    = 10.0
    pdfRowHeight = 6.0
)

// WritePDF renders rows as a simple landscape table. The header row is
// repeated at the top of every page and over-long cells are truncated with
// an ellipsis rather than wrapped.
func WritePDF(w io.Writer, rows []dictionary.Row, opts Options) error {
    pdf := gofpdf.New("L", "mm", "A4", "")
    pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
    pdf.SetAutoPageBreak(false, pdfMargin)
    // core fonts are cp1252; translate UTF-8 input
    tr := pdf.UnicodeTranslatorFromDescriptor("")

    _, pageH := pdf.GetPageSize()
    header := dictionary.Header()

    writeHeader := func() {
        pdf.SetFont("Helvetica", "B", 9)
        pdf.SetFillColor(230, 230, 230)
        for i, h := range header {
            pdf.CellFormat(pdfColumnWidths[i], pdfRowHeight, tr(h), "1", 0, "L", true, 0, "")
        }
        pdf.Ln(-1)
        pdf.SetFont("Helvetica", "", 8)
    }

    pdf.AddPage()
    pdf.SetFont("Helvetica", "B", 14)
    pdf.CellFormat(0, 10, tr(opts.title()), "", 1, "L", false, 0, "")
    writeHeader()

    for _, r := range rows {
        if pdf.GetY()+pdfRowHeight > pageH-pdfMargin {
            pdf.AddPage()
            writeHeader()
        }
        for i, v := range r.Record() {
            text := fitCell(pdf, tr(v), pdfColumnWidths[i]-2)
            pdf.CellFormat(pdfColumnWidths[i], pdfRowHeight, text, "1", 0, "L", false, 0, "")
        }
        pdf.Ln(-1)
    }

    if err := pdf.Error(); err != nil {
        return err
    }
    return pdf.Output(w)
}

// fitCell shortens s until it fits width at the current font.
func fitCell(pdf *gofpdf.Fpdf, s string, width float64) string {
    if pdf.GetStringWidth(s) <= width {
        return s
    }
    const ellipsis = "..."
    b := []byte(s)
    for len(b) > 0 && pdf.GetStringWidth(string(b)+ellipsis) > width {
        b = b[:len(b)-1]
    }
    return string(b) + ellipsis
}

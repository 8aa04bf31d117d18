package infra

// pdf.go — inventory report rendering using go-pdf/fpdf.
// Layout (A4 portrait):
//   - Title and generation timestamp
//   - Summary block (totals, low stock, suppliers)
//   - Category breakdown table
//   - Full item table, repeated header on every page

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// RenderReportPDF writes doc as a PDF to w.
func RenderReportPDF(w io.Writer, doc *ReportDocument) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Inventory Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Generated "+doc.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Summary ──────────────────────────────────────────────────────────────
	s := doc.Summary
	summary := [][2]string{
		{"Total value", s.TotalValue.Decimal().StringFixed(2)},
		{"Total items", strconv.Itoa(s.TotalItems)},
		{"Total quantity", strconv.Itoa(s.TotalQuantity)},
		{"Low stock items", strconv.Itoa(s.LowStockCount)},
		{"Suppliers", strconv.FormatInt(s.SupplierCount, 10)},
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Summary", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range summary {
		pdf.CellFormat(50, 5, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 5, row[1], "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// ── Category breakdown ───────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Category breakdown", "B", 1, "L", false, 0, "")
	catCols := []float64{contentW * 0.40, contentW * 0.15, contentW * 0.15, contentW * 0.15, contentW * 0.15}
	tableHeader(pdf, catCols, []string{"Category", "Items", "Quantity", "Value", "Share"})
	pdf.SetFont("Helvetica", "", 8)
	for _, c := range s.CategoryBreakdown {
		pdf.CellFormat(catCols[0], 5, tr(truncate(c.Name, 40)), "", 0, "L", false, 0, "")
		pdf.CellFormat(catCols[1], 5, strconv.Itoa(c.Count), "", 0, "R", false, 0, "")
		pdf.CellFormat(catCols[2], 5, strconv.Itoa(c.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(catCols[3], 5, c.Value.Decimal().StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(catCols[4], 5, fmt.Sprintf("%d%%", c.Percentage), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// ── Items ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Items", "B", 1, "L", false, 0, "")
	itemCols := []float64{
		contentW * 0.13, contentW * 0.27, contentW * 0.15, contentW * 0.09,
		contentW * 0.11, contentW * 0.11, contentW * 0.14,
	}
	itemHeader := []string{"SKU", "Item", "Category", "Qty", "Price", "Value", "Supplier"}
	tableHeader(pdf, itemCols, itemHeader)

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	pdf.SetFont("Helvetica", "", 8)
	for _, item := range doc.Items {
		if pdf.GetY()+5 > pageH-bottom {
			pdf.AddPage()
			tableHeader(pdf, itemCols, itemHeader)
			pdf.SetFont("Helvetica", "", 8)
		}
		row := itemRow(item)
		pdf.CellFormat(itemCols[0], 5, tr(truncate(row[0], 14)), "", 0, "L", false, 0, "")
		pdf.CellFormat(itemCols[1], 5, tr(truncate(row[1], 32)), "", 0, "L", false, 0, "")
		pdf.CellFormat(itemCols[2], 5, tr(truncate(row[2], 16)), "", 0, "L", false, 0, "")
		pdf.CellFormat(itemCols[3], 5, row[3], "", 0, "R", false, 0, "")
		pdf.CellFormat(itemCols[4], 5, row[4], "", 0, "R", false, 0, "")
		pdf.CellFormat(itemCols[5], 5, row[5], "", 0, "R", false, 0, "")
		pdf.CellFormat(itemCols[6], 5, tr(truncate(row[6], 16)), "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write report: %w", err)
	}
	return nil
}

func tableHeader(pdf *fpdf.Fpdf, widths []float64, labels []string) {
	pdf.SetFont("Helvetica", "B", 8)
	for i, label := range labels {
		ln := 0
		if i == len(labels)-1 {
			ln = 1
		}
		align := "L"
		if i > 0 && label != "Category" && label != "Item" && label != "Supplier" {
			align = "R"
		}
		pdf.CellFormat(widths[i], 6, label, "B", ln, align, false, 0, "")
	}
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

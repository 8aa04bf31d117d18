package infra

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"stockroom/internal/dto"

	"github.com/shopspring/decimal"
)

// ReportDocument is everything an export renders: the aggregate summary and
// the full, unpaginated item listing.
type ReportDocument struct {
	GeneratedAt time.Time
	Summary     dto.ReportSummary
	Items       []dto.ItemResponse
}

var itemColumns = []string{"SKU", "Item Name", "Category", "Quantity", "Price", "Value", "Supplier", "Created At"}

// RenderReportCSV writes the summary block, the category breakdown and the
// item listing as consecutive CSV sections separated by blank rows.
func RenderReportCSV(w io.Writer, doc *ReportDocument) error {
	cw := csv.NewWriter(w)
	s := doc.Summary

	rows := [][]string{
		{"Inventory Report"},
		{"Generated At", doc.GeneratedAt.UTC().Format(time.RFC3339)},
		{},
		{"Summary"},
		{"Total Value", s.TotalValue.Decimal().StringFixed(2)},
		{"Total Items", strconv.Itoa(s.TotalItems)},
		{"Total Quantity", strconv.Itoa(s.TotalQuantity)},
		{"Low Stock Items", strconv.Itoa(s.LowStockCount)},
		{"Suppliers", strconv.FormatInt(s.SupplierCount, 10)},
		{},
		{"Category Breakdown"},
		{"Category", "Items", "Quantity", "Value", "Percentage"},
	}
	for _, c := range s.CategoryBreakdown {
		rows = append(rows, []string{
			c.Name,
			strconv.Itoa(c.Count),
			strconv.Itoa(c.Quantity),
			c.Value.Decimal().StringFixed(2),
			fmt.Sprintf("%d%%", c.Percentage),
		})
	}
	rows = append(rows, []string{}, []string{"Items"}, itemColumns)
	for _, item := range doc.Items {
		rows = append(rows, itemRow(item))
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("csv: write report: %w", err)
	}
	return nil
}

func itemRow(item dto.ItemResponse) []string {
	return []string{
		item.SKU,
		item.ItemName,
		deref(item.Category, ""),
		strconv.Itoa(item.Quantity),
		item.Price,
		itemValue(item),
		deref(item.SupplierName, ""),
		item.CreatedAt.UTC().Format("2006-01-02 15:04"),
	}
}

func itemValue(item dto.ItemResponse) string {
	price, err := decimal.NewFromString(item.Price)
	if err != nil {
		return ""
	}
	return price.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2)
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

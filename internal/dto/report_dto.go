package dto

import "github.com/shopspring/decimal"

// Money marshals as an unquoted number with two decimals (25.00).
type Money decimal.Decimal

func (m Money) Decimal() decimal.Decimal { return decimal.Decimal(m) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

// CategoryBreakdown is one bucket of the report; null categories land in
// "Uncategorized".
type CategoryBreakdown struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Quantity   int    `json:"quantity"`
	Value      Money  `json:"value"`
	Percentage int    `json:"percentage"`
}

type ReportSummary struct {
	TotalValue        Money               `json:"total_value"`
	TotalItems        int                 `json:"total_items"`
	TotalQuantity     int                 `json:"total_quantity"`
	LowStockCount     int                 `json:"low_stock_count"`
	SupplierCount     int64               `json:"supplier_count"`
	CategoryValues    map[string]Money    `json:"category_values"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
}

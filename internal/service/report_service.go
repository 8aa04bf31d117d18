package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"stockroom/internal/apierror"
	"stockroom/internal/config"
	"stockroom/internal/dto"
	"stockroom/internal/infra"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/shopspring/decimal"
)

const uncategorized = "Uncategorized"

// ExportFile is a rendered report ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ReportService interface {
	Summary(ctx context.Context) (*dto.ReportSummary, error)
	ExportCSV(ctx context.Context) (*ExportFile, error)
	ExportPDF(ctx context.Context) (*ExportFile, error)
}

type reportService struct {
	items     repository.ItemRepository
	suppliers repository.SupplierRepository
	lowStock  int
	now       func() time.Time
}

func NewReportService(items repository.ItemRepository, suppliers repository.SupplierRepository, cfg *config.Config) ReportService {
	return &reportService{
		items:     items,
		suppliers: suppliers,
		lowStock:  cfg.LowStockThreshold,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) Summary(ctx context.Context) (*dto.ReportSummary, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return &doc.Summary, nil
}

func (s *reportService) ExportCSV(ctx context.Context) (*ExportFile, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := infra.RenderReportCSV(&buf, doc); err != nil {
		return nil, apierror.Internal("Failed to export CSV", err)
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("inventory_report_%s.csv", doc.GeneratedAt.Format("2006-01-02")),
		ContentType: "text/csv",
		Body:        buf.Bytes(),
	}, nil
}

func (s *reportService) ExportPDF(ctx context.Context) (*ExportFile, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := infra.RenderReportPDF(&buf, doc); err != nil {
		return nil, apierror.Internal("Failed to export PDF", err)
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("inventory_report_%s.pdf", doc.GeneratedAt.Format("2006-01-02")),
		ContentType: "application/pdf",
		Body:        buf.Bytes(),
	}, nil
}

// load reads the whole inventory in one pass; exports are never paginated.
func (s *reportService) load(ctx context.Context) (*infra.ReportDocument, error) {
	items, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, apierror.Internal("Failed to build report", err)
	}
	suppliers, err := s.suppliers.Count(ctx)
	if err != nil {
		return nil, apierror.Internal("Failed to build report", err)
	}

	doc := &infra.ReportDocument{
		GeneratedAt: s.now(),
		Summary:     summarize(items, suppliers, s.lowStock),
		Items:       make([]dto.ItemResponse, len(items)),
	}
	for i, item := range items {
		doc.Items[i] = toItemResponse(item)
	}
	return doc, nil
}

// summarize aggregates items into totals and a per-category breakdown
// sorted by item count, then name.
func summarize(items []model.InventoryItem, supplierCount int64, lowStock int) dto.ReportSummary {
	total := decimal.Zero
	totalQty, low := 0, 0
	buckets := map[string]*dto.CategoryBreakdown{}
	values := map[string]decimal.Decimal{}

	for i := range items {
		item := &items[i]
		value := item.StockValue()
		total = total.Add(value)
		totalQty += item.Quantity
		if item.Quantity < lowStock {
			low++
		}

		name := uncategorized
		if item.Category != nil && *item.Category != "" {
			name = *item.Category
		}
		b, ok := buckets[name]
		if !ok {
			b = &dto.CategoryBreakdown{Name: name}
			buckets[name] = b
		}
		b.Count++
		b.Quantity += item.Quantity
		values[name] = values[name].Add(value)
	}

	breakdown := make([]dto.CategoryBreakdown, 0, len(buckets))
	categoryValues := make(map[string]dto.Money, len(buckets))
	for name, b := range buckets {
		b.Value = dto.Money(values[name].Round(2))
		b.Percentage = percentage(b.Count, len(items))
		categoryValues[name] = b.Value
		breakdown = append(breakdown, *b)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count != breakdown[j].Count {
			return breakdown[i].Count > breakdown[j].Count
		}
		return breakdown[i].Name < breakdown[j].Name
	})

	return dto.ReportSummary{
		TotalValue:        dto.Money(total.Round(2)),
		TotalItems:        len(items),
		TotalQuantity:     totalQty,
		LowStockCount:     low,
		SupplierCount:     supplierCount,
		CategoryValues:    categoryValues,
		CategoryBreakdown: breakdown,
	}
}

// percentage rounds half to even, so 2.5% reports as 2.
func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(count) / float64(total) * 100))
}

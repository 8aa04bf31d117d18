package infra

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"stockroom/internal/config"
	"stockroom/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(items int) *ReportDocument {
	tools := "Tools"
	acme := "Acme"
	doc := &ReportDocument{
		GeneratedAt: time.Date(2026, 2, 3, 9, 30, 0, 0, time.UTC),
		Summary: dto.ReportSummary{
			TotalValue:    dto.Money(decimal.RequireFromString("25")),
			TotalItems:    2,
			TotalQuantity: 3,
			LowStockCount: 2,
			SupplierCount: 1,
			CategoryBreakdown: []dto.CategoryBreakdown{
				{Name: "Tools", Count: 1, Quantity: 2, Value: dto.Money(decimal.NewFromInt(20)), Percentage: 50},
				{Name: "Uncategorized", Count: 1, Quantity: 1, Value: dto.Money(decimal.NewFromInt(5)), Percentage: 50},
			},
		},
	}
	for i := 0; i < items; i++ {
		doc.Items = append(doc.Items, dto.ItemResponse{
			ID:           uuid.NewString(),
			SKU:          fmt.Sprintf("SKU-%03d", i),
			ItemName:     fmt.Sprintf("Item, number %d", i),
			Quantity:     2,
			Category:     &tools,
			Price:        "10.00",
			SupplierName: &acme,
			CreatedAt:    doc.GeneratedAt,
		})
	}
	return doc
}

func TestRenderReportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReportCSV(&buf, sampleDocument(2)))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)

	find := func(label string) []string {
		for _, row := range rows {
			if len(row) > 0 && row[0] == label {
				return row
			}
		}
		return nil
	}
	assert.Equal(t, []string{"Total Value", "25.00"}, find("Total Value"))
	assert.Equal(t, []string{"Generated At", "2026-02-03T09:30:00Z"}, find("Generated At"))
	assert.Equal(t, []string{"Tools", "1", "2", "20.00", "50%"}, find("Tools"))
	assert.Equal(t, []string{"SKU-001", "Item, number 1", "Tools", "2", "10.00", "20.00", "Acme", "2026-02-03 09:30"}, find("SKU-001"))
}

func TestRenderReportPDF(t *testing.T) {
	var buf bytes.Buffer
	// Enough rows to force page breaks.
	require.NoError(t, RenderReportPDF(&buf, sampleDocument(120)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestRenderReportPDF_Empty(t *testing.T) {
	var buf bytes.Buffer
	doc := sampleDocument(0)
	doc.Summary = dto.ReportSummary{}
	require.NoError(t, RenderReportPDF(&buf, doc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, 10, len([]rune(truncate(strings.Repeat("x", 40), 10))))
}

func TestPasswordResetEmail(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "smtp.test", SMTPPort: 2525, SMTPFrom: "no-reply@stockroom.test"})
	link := "http://app.test/reset-password/abc/def?x=1&y=2"

	e := m.passwordResetEmail("jane@example.com", link)
	assert.Equal(t, "no-reply@stockroom.test", e.From)
	assert.Equal(t, []string{"jane@example.com"}, e.To)
	assert.Equal(t, "Password reset request", e.Subject)
	assert.Contains(t, string(e.Text), link)
	assert.Contains(t, string(e.HTML), "x=1&amp;y=2")
	assert.Equal(t, "smtp.test:2525", m.addr)
}

func TestMailer_RequiresHost(t *testing.T) {
	m := NewMailer(&config.Config{})
	err := m.SendPasswordReset(context.Background(), "jane@example.com", "http://x")
	assert.ErrorContains(t, err, "SMTP_HOST")
	assert.Equal(t, "disabled", m.Status())

	assert.Equal(t, "closed", NewMailer(&config.Config{SMTPHost: "smtp.test"}).Status())
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase("mysql", "", false)
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestRunMigrations_Idempotent(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := NewDatabase("sqlite", dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, RunMigrations(db))
	for _, table := range []string{"users", "tokens", "suppliers", "inventory_items", "transactions"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

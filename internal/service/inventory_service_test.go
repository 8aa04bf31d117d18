package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"stockroom/internal/apierror"
	"stockroom/internal/config"
	"stockroom/internal/dto"
	"stockroom/internal/infra"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type inventoryFixture struct {
	db           *gorm.DB
	items        ItemService
	suppliers    SupplierService
	transactions TransactionService
	reports      *reportService
	admin        *model.User
	clerk        *model.User
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := infra.NewDatabase("sqlite", dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{InventoryPageSize: 10, LowStockThreshold: 5}
	itemRepo := repository.NewItemRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	return &inventoryFixture{
		db:           db,
		items:        NewItemService(itemRepo, supplierRepo, txRepo, cfg),
		suppliers:    NewSupplierService(supplierRepo, itemRepo, txRepo, cfg),
		transactions: NewTransactionService(txRepo, cfg),
		reports:      NewReportService(itemRepo, supplierRepo, cfg).(*reportService),
		admin:        &model.User{Username: "admin", IsSuperuser: true, IsStaff: true},
		clerk:        &model.User{Username: "clerk"},
	}
}

func (f *inventoryFixture) createItem(t *testing.T, sku string, qty int, price string, category *string, supplierID *string) *dto.ItemResponse {
	t.Helper()
	p := decimal.RequireFromString(price)
	item, err := f.items.Create(context.Background(), f.clerk, dto.CreateItemRequest{
		SKU: sku, ItemName: "Item " + sku, Quantity: &qty, Price: &p, Category: category, SupplierID: supplierID,
	})
	require.NoError(t, err)
	return item
}

func (f *inventoryFixture) createSupplier(t *testing.T, name string) *dto.SupplierResponse {
	t.Helper()
	s, err := f.suppliers.Create(context.Background(), dto.CreateSupplierRequest{
		Name: name, Email: name + "@example.com", Phone: "555-" + name,
	})
	require.NoError(t, err)
	return s
}

func (f *inventoryFixture) auditLog(t *testing.T) []dto.TransactionResponse {
	t.Helper()
	page, err := f.transactions.List(context.Background(), dto.TransactionFilter{})
	require.NoError(t, err)
	return page.Results
}

func ptr[T any](v T) *T { return &v }

// ── Items ─────────────────────────────────────────────────────────────────────

func TestItemCreate_TrimsAndAudits(t *testing.T) {
	f := newInventoryFixture(t)
	qty, price := 5, decimal.RequireFromString("2.50")

	item, err := f.items.Create(context.Background(), f.clerk, dto.CreateItemRequest{
		SKU: "  W-1 ", ItemName: " Widget ", Quantity: &qty, Price: &price, Category: ptr("  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "W-1", item.SKU)
	assert.Equal(t, "Widget", item.ItemName)
	assert.Equal(t, "2.50", item.Price)
	assert.Nil(t, item.Category)

	log := f.auditLog(t)
	require.Len(t, log, 1)
	assert.Equal(t, model.TransactionAdd, log[0].TransactionType)
	assert.Equal(t, "Widget", log[0].ItemName)
	assert.Equal(t, "clerk", log[0].UserName)
	assert.Equal(t, "+5 units", log[0].Details)
}

func TestItemCreate_ReportsEveryMissingField(t *testing.T) {
	f := newInventoryFixture(t)
	_, err := f.items.Create(context.Background(), f.clerk, dto.CreateItemRequest{SKU: " "})
	e := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "SKU cannot be empty.", e.Fields["sku"])
	assert.Equal(t, "Item name cannot be empty.", e.Fields["item_name"])
	assert.Equal(t, "This field is required.", e.Fields["quantity"])
	assert.Equal(t, "Price is required.", e.Fields["price"])
	assert.Empty(t, f.auditLog(t))
}

func TestItemCreate_RejectsBadNumbers(t *testing.T) {
	f := newInventoryFixture(t)
	cases := []struct {
		qty   int
		price string
		field string
		msg   string
	}{
		{-1, "1.00", "quantity", "Quantity must be greater than or equal to 0."},
		{1, "-0.01", "price", "Price must be greater than or equal to 0."},
		{1, "1.005", "price", "Ensure that there are no more than 2 decimal places."},
		{1, "100000000.00", "price", "Ensure that there are no more than 10 digits in total."},
	}
	for _, tc := range cases {
		qty, price := tc.qty, decimal.RequireFromString(tc.price)
		_, err := f.items.Create(context.Background(), f.clerk, dto.CreateItemRequest{
			SKU: "X", ItemName: "X", Quantity: &qty, Price: &price,
		})
		e := requireKind(t, err, apierror.KindValidation)
		assert.Equal(t, tc.msg, e.Fields[tc.field], tc.price)
	}
}

func TestItemCreate_ZeroPriceAndQuantityAllowed(t *testing.T) {
	f := newInventoryFixture(t)
	item := f.createItem(t, "FREE", 0, "0", nil, nil)
	assert.Equal(t, "0.00", item.Price)
	assert.Equal(t, 0, item.Quantity)
}

func TestItemCreate_DuplicateSKU(t *testing.T) {
	f := newInventoryFixture(t)
	f.createItem(t, "W-1", 1, "1", nil, nil)

	qty, price := 1, decimal.NewFromInt(1)
	_, err := f.items.Create(context.Background(), f.clerk, dto.CreateItemRequest{SKU: "W-1", ItemName: "Again", Quantity: &qty, Price: &price})
	e := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "An inventory item with this SKU already exists.", e.Fields["sku"])
}

func TestItemCreate_UnknownSupplier(t *testing.T) {
	f := newInventoryFixture(t)
	qty, price := 1, decimal.NewFromInt(1)
	req := dto.CreateItemRequest{SKU: "W", ItemName: "W", Quantity: &qty, Price: &price}

	req.SupplierID = ptr("not-a-uuid")
	_, err := f.items.Create(context.Background(), f.clerk, req)
	assert.Equal(t, "Invalid supplier id.", requireKind(t, err, apierror.KindValidation).Fields["supplier_id"])

	req.SupplierID = ptr(uuid.NewString())
	_, err = f.items.Create(context.Background(), f.clerk, req)
	assert.Equal(t, "Supplier not found.", requireKind(t, err, apierror.KindValidation).Fields["supplier_id"])
}

func TestItemUpdate_DescribesChanges(t *testing.T) {
	f := newInventoryFixture(t)
	acme := f.createSupplier(t, "Acme")
	item := f.createItem(t, "W-1", 5, "2.50", nil, nil)
	id := uuid.MustParse(item.ID)

	updated, err := f.items.Update(context.Background(), f.clerk, id, dto.UpdateItemRequest{
		Quantity: ptr(7), Category: ptr("Tools"), SupplierID: &acme.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Quantity)
	require.NotNil(t, updated.SupplierName)
	assert.Equal(t, "Acme", *updated.SupplierName)

	log := f.auditLog(t)
	require.Len(t, log, 2)
	assert.Equal(t, model.TransactionUpdate, log[0].TransactionType, "newest first")
	assert.Equal(t, "quantity: 5 -> 7; category: none -> Tools; supplier: none -> Acme", log[0].Details)

	_, err = f.items.Update(context.Background(), f.clerk, id, dto.UpdateItemRequest{Quantity: ptr(7)})
	require.NoError(t, err)
	assert.Equal(t, "No changes", f.auditLog(t)[0].Details)
}

func TestItemUpdate_Validation(t *testing.T) {
	f := newInventoryFixture(t)
	f.createItem(t, "TAKEN", 1, "1", nil, nil)
	item := f.createItem(t, "W-1", 1, "1", nil, nil)
	id := uuid.MustParse(item.ID)

	_, err := f.items.Update(context.Background(), f.clerk, id, dto.UpdateItemRequest{
		SKU: ptr("TAKEN"), ItemName: ptr(" "), Quantity: ptr(-3),
	})
	e := requireKind(t, err, apierror.KindValidation)
	assert.Len(t, e.Fields, 3)

	got, err := f.items.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "W-1", got.SKU)
	assert.Equal(t, 1, got.Quantity)
}

func TestItemUpdate_NotFound(t *testing.T) {
	f := newInventoryFixture(t)
	_, err := f.items.Update(context.Background(), f.clerk, uuid.New(), dto.UpdateItemRequest{})
	requireKind(t, err, apierror.KindNotFound)
}

func TestItemDelete_RequiresSuperuser(t *testing.T) {
	f := newInventoryFixture(t)
	item := f.createItem(t, "W-1", 1, "1", nil, nil)
	id := uuid.MustParse(item.ID)

	err := f.items.Delete(context.Background(), f.clerk, id)
	e := requireKind(t, err, apierror.KindPermissionDenied)
	assert.Equal(t, "Only admins can delete inventory items", e.Message)

	_, err = f.items.Get(context.Background(), id)
	require.NoError(t, err, "row survives a denied delete")
	assert.Len(t, f.auditLog(t), 1)

	require.NoError(t, f.items.Delete(context.Background(), f.admin, id))
	_, err = f.items.Get(context.Background(), id)
	requireKind(t, err, apierror.KindNotFound)

	log := f.auditLog(t)
	require.Len(t, log, 2)
	assert.Equal(t, model.TransactionDelete, log[0].TransactionType)
	assert.Equal(t, "SKU: W-1", log[0].Details)
	assert.Equal(t, "admin", log[0].UserName)
}

func TestItemList_FiltersAndPages(t *testing.T) {
	f := newInventoryFixture(t)
	acme := f.createSupplier(t, "Acme")
	for i := 0; i < 12; i++ {
		var supplier *string
		if i%2 == 0 {
			supplier = &acme.ID
		}
		f.createItem(t, fmt.Sprintf("SKU-%02d", i), i, "1", ptr("Tools"), supplier)
	}
	ctx := context.Background()

	first, err := f.items.List(ctx, dto.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, first.Results, 10)
	require.NotNil(t, first.Next)
	assert.Nil(t, first.Previous)
	assert.Equal(t, "SKU-00", first.Results[0].SKU)

	second, err := f.items.List(ctx, dto.ItemFilter{Cursor: *first.Next})
	require.NoError(t, err)
	assert.Len(t, second.Results, 2)
	assert.Nil(t, second.Next)
	require.NotNil(t, second.Previous)

	back, err := f.items.List(ctx, dto.ItemFilter{Cursor: *second.Previous})
	require.NoError(t, err)
	require.Len(t, back.Results, 10)
	assert.Equal(t, first.Results[0].ID, back.Results[0].ID)

	bySupplier, err := f.items.List(ctx, dto.ItemFilter{Supplier: "ACME"})
	require.NoError(t, err)
	assert.Len(t, bySupplier.Results, 6)

	_, err = f.items.List(ctx, dto.ItemFilter{Cursor: "%%%"})
	requireKind(t, err, apierror.KindValidation)
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func TestSupplierCreate_Validation(t *testing.T) {
	f := newInventoryFixture(t)
	f.createSupplier(t, "Acme")

	_, err := f.suppliers.Create(context.Background(), dto.CreateSupplierRequest{Name: "Acme", Email: " ", Phone: "555-Acme"})
	e := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "A supplier with this name already exists.", e.Fields["name"])
	assert.Equal(t, "This field may not be blank.", e.Fields["email"])
	assert.Equal(t, "A supplier with this phone already exists.", e.Fields["phone"])
}

// racingSupplierRepo inserts a rival supplier right before the real insert,
// as a concurrent request would between the uniqueness check and the write.
type racingSupplierRepo struct {
	repository.SupplierRepository
	rival *model.Supplier
}

func (r *racingSupplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	if r.rival != nil {
		rival := r.rival
		r.rival = nil
		if err := r.SupplierRepository.Create(ctx, rival); err != nil {
			return err
		}
	}
	return r.SupplierRepository.Create(ctx, s)
}

func TestSupplierCreate_LostRaceNamesTakenField(t *testing.T) {
	f := newInventoryFixture(t)
	cfg := &config.Config{InventoryPageSize: 10}
	repo := &racingSupplierRepo{
		SupplierRepository: repository.NewSupplierRepository(f.db),
		rival:              &model.Supplier{Name: "Rival", Email: "sales@acme.test", Phone: "555-0000"},
	}
	svc := NewSupplierService(repo, repository.NewItemRepository(f.db), repository.NewTransactionRepository(f.db), cfg)

	_, err := svc.Create(context.Background(), dto.CreateSupplierRequest{Name: "Acme", Email: "sales@acme.test", Phone: "555-1111"})
	e := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, map[string]string{"email": "A supplier with this email already exists."}, e.Fields)
}

func TestSupplierUpdate_KeepsOwnValues(t *testing.T) {
	f := newInventoryFixture(t)
	acme := f.createSupplier(t, "Acme")
	f.createSupplier(t, "Globex")
	id := uuid.MustParse(acme.ID)

	updated, err := f.suppliers.Update(context.Background(), id, dto.UpdateSupplierRequest{Name: ptr("Acme"), Address: ptr("1 Road")})
	require.NoError(t, err)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "1 Road", *updated.Address)

	_, err = f.suppliers.Update(context.Background(), id, dto.UpdateSupplierRequest{Name: ptr("Globex")})
	e := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "A supplier with this name already exists.", e.Fields["name"])
}

func TestSupplierDelete_CascadesToItems(t *testing.T) {
	f := newInventoryFixture(t)
	acme := f.createSupplier(t, "Acme")
	f.createItem(t, "A-1", 1, "1", nil, &acme.ID)
	f.createItem(t, "A-2", 1, "1", nil, &acme.ID)
	keep := f.createItem(t, "K-1", 1, "1", nil, nil)
	id := uuid.MustParse(acme.ID)

	got, err := f.suppliers.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ItemCount)

	_, err = f.suppliers.Delete(context.Background(), f.clerk, id)
	requireKind(t, err, apierror.KindPermissionDenied)

	removed, err := f.suppliers.Delete(context.Background(), f.admin, id)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = f.suppliers.Get(context.Background(), id)
	requireKind(t, err, apierror.KindNotFound)
	page, err := f.items.List(context.Background(), dto.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, keep.ID, page.Results[0].ID)

	deletes, err := f.transactions.List(context.Background(), dto.TransactionFilter{Type: "DELETE"})
	require.NoError(t, err)
	assert.Len(t, deletes.Results, 2)
}

func TestSupplierList_ItemCounts(t *testing.T) {
	f := newInventoryFixture(t)
	acme := f.createSupplier(t, "Acme")
	f.createSupplier(t, "Globex")
	f.createItem(t, "A-1", 1, "1", nil, &acme.ID)

	page, err := f.suppliers.List(context.Background(), dto.SupplierFilter{})
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, int64(1), page.Results[0].ItemCount)
	assert.Equal(t, int64(0), page.Results[1].ItemCount)

	page, err = f.suppliers.List(context.Background(), dto.SupplierFilter{Search: "glob"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Globex", page.Results[0].Name)
}

// ── Reports ───────────────────────────────────────────────────────────────────

func TestReportSummary(t *testing.T) {
	f := newInventoryFixture(t)
	f.createSupplier(t, "Acme")
	f.createItem(t, "A", 2, "10.00", ptr("Tools"), nil)
	f.createItem(t, "B", 1, "5.00", nil, nil)

	summary, err := f.reports.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "25.00", summary.TotalValue.Decimal().StringFixed(2))
	assert.Equal(t, 2, summary.TotalItems)
	assert.Equal(t, 3, summary.TotalQuantity)
	assert.Equal(t, 2, summary.LowStockCount)
	assert.Equal(t, int64(1), summary.SupplierCount)

	require.Len(t, summary.CategoryBreakdown, 2)
	for _, b := range summary.CategoryBreakdown {
		assert.Equal(t, 50, b.Percentage, b.Name)
	}
	assert.Equal(t, "20.00", summary.CategoryValues["Tools"].Decimal().StringFixed(2))
	assert.Equal(t, "5.00", summary.CategoryValues["Uncategorized"].Decimal().StringFixed(2))
}

func TestReportSummary_Empty(t *testing.T) {
	f := newInventoryFixture(t)
	summary, err := f.reports.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.TotalValue.Decimal().IsZero())
	assert.Zero(t, summary.TotalItems)
	assert.Empty(t, summary.CategoryBreakdown)
}

func TestReportExports(t *testing.T) {
	f := newInventoryFixture(t)
	f.reports.now = func() time.Time { return time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC) }
	f.createItem(t, "A", 2, "10.00", ptr("Tools"), nil)

	csv, err := f.reports.ExportCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inventory_report_2026-02-03.csv", csv.Filename)
	assert.Equal(t, "text/csv", csv.ContentType)
	assert.Contains(t, string(csv.Body), "Item A")

	pdf, err := f.reports.ExportPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inventory_report_2026-02-03.pdf", pdf.Filename)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.Equal(t, "%PDF", string(pdf.Body[:4]))
}

func TestSummarize_SortsAndRounds(t *testing.T) {
	items := make([]model.InventoryItem, 0, 40)
	for i := 0; i < 40; i++ {
		cat := "Big"
		if i == 0 {
			cat = "Alpha"
		}
		items = append(items, model.InventoryItem{Quantity: 10, Category: &cat, Price: decimal.NewFromInt(1)})
	}
	s := summarize(items, 0, 5)
	require.Len(t, s.CategoryBreakdown, 2)
	assert.Equal(t, "Big", s.CategoryBreakdown[0].Name)
	assert.Equal(t, 98, s.CategoryBreakdown[0].Percentage) // 97.5 rounds to even
	assert.Equal(t, 2, s.CategoryBreakdown[1].Percentage)  // 2.5 rounds to even
	assert.Zero(t, s.LowStockCount)
}

// ── Transactions ──────────────────────────────────────────────────────────────

func TestTransactionList_NewestFirstAndPaged(t *testing.T) {
	f := newInventoryFixture(t)
	for i := 0; i < 11; i++ {
		f.createItem(t, fmt.Sprintf("SKU-%02d", i), 1, "1", nil, nil)
	}
	page, err := f.transactions.List(context.Background(), dto.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, page.Results, 10)
	assert.Equal(t, "Item SKU-10", page.Results[0].ItemName)
	require.NotNil(t, page.Next)

	rest, err := f.transactions.List(context.Background(), dto.TransactionFilter{Cursor: *page.Next})
	require.NoError(t, err)
	require.Len(t, rest.Results, 1)
	assert.Equal(t, "Item SKU-00", rest.Results[0].ItemName)
}

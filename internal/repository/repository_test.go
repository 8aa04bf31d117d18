package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"stockroom/internal/infra"
	"stockroom/internal/model"
	"stockroom/internal/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := infra.NewDatabase("sqlite", dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedItem(t *testing.T, db *gorm.DB, sku, name string, category *string, supplier *model.Supplier) *model.InventoryItem {
	t.Helper()
	item := &model.InventoryItem{SKU: sku, ItemName: name, Quantity: 1, Category: category, Price: decimal.NewFromInt(1)}
	if supplier != nil {
		item.SupplierID = &supplier.ID
	}
	require.NoError(t, NewItemRepository(db).CreateTx(db, item))
	return item
}

func seedSupplier(t *testing.T, db *gorm.DB, name string) *model.Supplier {
	t.Helper()
	s := &model.Supplier{Name: name, Email: name + "@example.com", Phone: "555-" + name}
	require.NoError(t, NewSupplierRepository(db).Create(context.Background(), s))
	return s
}

func strPtr(s string) *string { return &s }

// ── Users / tokens ────────────────────────────────────────────────────────────

func TestUserRepo_FindByEmailIgnoresCase(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Username: "jane", Email: "Jane@Example.com", PasswordHash: "x", IsActive: true}))

	u, err := repo.FindByEmail(ctx, "jane@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "jane", u.Username)

	exists, err := repo.EmailExists(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.True(t, IsNotFound(err))
}

func TestUserRepo_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Username: "jane", Email: "a@example.com", PasswordHash: "x"}))
	err := repo.Create(ctx, &model.User{Username: "jane", Email: "b@example.com", PasswordHash: "x"})
	assert.True(t, IsDuplicate(err))
}

func TestUserRepo_TouchLastLogin(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := &model.User{Username: "jane", Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, u))

	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastLogin(ctx, u.ID, at))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(*got.LastLogin))
}

func TestTokenRepo_OnePerUser(t *testing.T) {
	db := newTestDB(t)
	users, tokens := NewUserRepository(db), NewTokenRepository(db)
	ctx := context.Background()
	u := &model.User{Username: "jane", Email: "a@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, users.Create(ctx, u))

	require.NoError(t, tokens.Create(ctx, &model.Token{Key: "k1", UserID: u.ID}))
	err := tokens.Create(ctx, &model.Token{Key: "k2", UserID: u.ID})
	assert.True(t, IsDuplicate(err))

	tok, err := tokens.FindByKey(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, tok.User)
	assert.Equal(t, "jane", tok.User.Username)

	require.NoError(t, tokens.DeleteByUserID(ctx, u.ID))
	_, err = tokens.FindByKey(ctx, "k1")
	assert.True(t, IsNotFound(err))
}

// ── Items ─────────────────────────────────────────────────────────────────────

func TestItemRepo_ListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()
	acme := seedSupplier(t, db, "Acme")
	seedItem(t, db, "W-1", "Blue Widget", strPtr("Tools"), acme)
	seedItem(t, db, "W-2", "Red Widget", strPtr("tools"), nil)
	seedItem(t, db, "G-1", "Gadget", nil, acme)
	pager := pagination.New("inventory_items", 50, false)

	byCategory, err := repo.List(ctx, ItemQuery{Category: "TOOLS"}, pager, nil)
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	bySupplier, err := repo.List(ctx, ItemQuery{Supplier: "acme"}, pager, nil)
	require.NoError(t, err)
	require.Len(t, bySupplier, 2)
	require.NotNil(t, bySupplier[0].Supplier)
	assert.Equal(t, "Acme", bySupplier[0].Supplier.Name)

	bySearch, err := repo.List(ctx, ItemQuery{Search: "widget"}, pager, nil)
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)

	bySKU, err := repo.List(ctx, ItemQuery{Search: "g-1"}, pager, nil)
	require.NoError(t, err)
	require.Len(t, bySKU, 1)
	assert.Equal(t, "Gadget", bySKU[0].ItemName)

	none, err := repo.List(ctx, ItemQuery{Supplier: "Nobody"}, pager, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestItemRepo_CursorWalksEveryRowOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seedItem(t, db, fmt.Sprintf("SKU-%d", i), fmt.Sprintf("Item %d", i), nil, nil)
	}
	pager := pagination.New("inventory_items", 2, false)

	seen := map[uuid.UUID]bool{}
	var cur *pagination.Cursor
	for pages := 0; pages < 5; pages++ {
		rows, err := repo.List(ctx, ItemQuery{}, pager, cur)
		require.NoError(t, err)
		page := pagination.Cut(pager, rows, cur)
		for _, item := range page.Results {
			assert.False(t, seen[item.ID], "item returned twice")
			seen[item.ID] = true
		}
		if page.Next == nil {
			break
		}
		cur, err = pagination.ParseCursor(*page.Next)
		require.NoError(t, err)
	}
	assert.Len(t, seen, 5)
}

func TestItemRepo_SameCursorSamePage(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		seedItem(t, db, fmt.Sprintf("SKU-%d", i), "Item", nil, nil)
	}
	pager := pagination.New("inventory_items", 2, false)

	first, err := repo.List(ctx, ItemQuery{}, pager, nil)
	require.NoError(t, err)
	page := pagination.Cut(pager, first, nil)
	require.NotNil(t, page.Next)
	cur, err := pagination.ParseCursor(*page.Next)
	require.NoError(t, err)

	a, err := repo.List(ctx, ItemQuery{}, pager, cur)
	require.NoError(t, err)
	b, err := repo.List(ctx, ItemQuery{}, pager, cur)
	require.NoError(t, err)
	require.Len(t, a, len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
}

func TestItemRepo_SKUExists(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()
	item := seedItem(t, db, "ABC", "Thing", nil, nil)

	exists, err := repo.SKUExists(ctx, "ABC", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SKUExists(ctx, "ABC", &item.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestItemRepo_PriceRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	item := &model.InventoryItem{SKU: "P", ItemName: "Priced", Quantity: 3, Price: decimal.RequireFromString("99.99")}
	require.NoError(t, repo.CreateTx(db, item))

	got, err := repo.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "99.99", got.Price.StringFixed(2))
	assert.Equal(t, "299.97", got.StockValue().StringFixed(2))
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func TestSupplierRepo_ItemCountsAndDelete(t *testing.T) {
	db := newTestDB(t)
	suppliers, items := NewSupplierRepository(db), NewItemRepository(db)
	ctx := context.Background()
	acme := seedSupplier(t, db, "Acme")
	empty := seedSupplier(t, db, "Empty")
	seedItem(t, db, "A-1", "One", nil, acme)
	seedItem(t, db, "A-2", "Two", nil, acme)

	counts, err := suppliers.ItemCounts(ctx, []uuid.UUID{acme.ID, empty.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[acme.ID])
	assert.Zero(t, counts[empty.ID])

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := items.DeleteBySupplierTx(tx, acme.ID); err != nil {
			return err
		}
		return suppliers.DeleteTx(tx, acme.ID)
	})
	require.NoError(t, err)

	n, err := suppliers.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	all, err := items.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSupplierRepo_Exists(t *testing.T) {
	db := newTestDB(t)
	repo := NewSupplierRepository(db)
	ctx := context.Background()
	acme := seedSupplier(t, db, "Acme")

	exists, err := repo.Exists(ctx, SupplierEmail, "Acme@example.com", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, SupplierName, "Acme", &acme.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Exists(ctx, "address; DROP TABLE suppliers", "x", nil)
	assert.Error(t, err)
}

func TestSupplierRepo_SearchMatchesPhone(t *testing.T) {
	db := newTestDB(t)
	repo := NewSupplierRepository(db)
	seedSupplier(t, db, "Acme")
	seedSupplier(t, db, "Globex")

	rows, err := repo.List(context.Background(), "555-glob", pagination.New("suppliers", 10, false), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Globex", rows[0].Name)
}

// ── Transactions ──────────────────────────────────────────────────────────────

func TestTransactionRepo_ListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Transaction{TransactionType: model.TransactionAdd, ItemName: "Widget", UserName: "jane", Details: "+5 units"}))
	require.NoError(t, repo.Create(ctx, &model.Transaction{TransactionType: model.TransactionDelete, ItemName: "Gadget", UserName: "widget-fan", Details: "SKU: G-1"}))
	pager := pagination.New("", 10, true)

	adds, err := repo.List(ctx, TransactionQuery{Type: model.TransactionAdd}, pager, nil)
	require.NoError(t, err)
	require.Len(t, adds, 1)
	assert.Equal(t, "Widget", adds[0].ItemName)

	// user_name is not searched.
	hits, err := repo.List(ctx, TransactionQuery{Search: "widget"}, pager, nil)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = repo.List(ctx, TransactionQuery{Search: "g-1"}, pager, nil)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

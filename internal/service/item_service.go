package service

import (
	"context"
	"fmt"
	"strings"

	"stockroom/internal/apierror"
	"stockroom/internal/config"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/pagination"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const msgItemNotFound = "Item not found"

// maxPrice is the first value that no longer fits decimal(10,2).
var maxPrice = decimal.New(1, 8)

type ItemService interface {
	Create(ctx context.Context, actor *model.User, req dto.CreateItemRequest) (*dto.ItemResponse, error)
	List(ctx context.Context, filter dto.ItemFilter) (*pagination.Page[dto.ItemResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ItemResponse, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
}

type itemService struct {
	items        repository.ItemRepository
	suppliers    repository.SupplierRepository
	transactions repository.TransactionRepository
	pager        pagination.CursorPager
}

func NewItemService(
	items repository.ItemRepository,
	suppliers repository.SupplierRepository,
	transactions repository.TransactionRepository,
	cfg *config.Config,
) ItemService {
	return &itemService{
		items:        items,
		suppliers:    suppliers,
		transactions: transactions,
		pager:        pagination.New("inventory_items", cfg.InventoryPageSize, false),
	}
}

func (s *itemService) Create(ctx context.Context, actor *model.User, req dto.CreateItemRequest) (*dto.ItemResponse, error) {
	item := &model.InventoryItem{
		SKU:      strings.TrimSpace(req.SKU),
		ItemName: strings.TrimSpace(req.ItemName),
		Category: cleanOptional(req.Category),
	}
	fields := map[string]string{}

	if item.SKU == "" {
		fields["sku"] = "SKU cannot be empty."
	}
	if item.ItemName == "" {
		fields["item_name"] = "Item name cannot be empty."
	}
	if req.Quantity == nil {
		fields["quantity"] = "This field is required."
	} else if msg := validateQuantity(*req.Quantity); msg != "" {
		fields["quantity"] = msg
	} else {
		item.Quantity = *req.Quantity
	}
	if req.Price == nil {
		fields["price"] = "Price is required."
	} else if msg := validatePrice(*req.Price); msg != "" {
		fields["price"] = msg
	} else {
		item.Price = *req.Price
	}
	if req.SupplierID != nil && strings.TrimSpace(*req.SupplierID) != "" {
		supplier, msg, err := s.resolveSupplier(ctx, *req.SupplierID)
		if err != nil {
			return nil, apierror.Internal("Failed to create inventory item", err)
		}
		if msg != "" {
			fields["supplier_id"] = msg
		} else {
			item.SupplierID = &supplier.ID
			item.Supplier = supplier
		}
	}
	if item.SKU != "" {
		if exists, err := s.items.SKUExists(ctx, item.SKU, nil); err != nil {
			return nil, apierror.Internal("Failed to create inventory item", err)
		} else if exists {
			fields["sku"] = "An inventory item with this SKU already exists."
		}
	}
	if len(fields) > 0 {
		return nil, apierror.Validation("Validation failed", fields)
	}
	if err := item.Clean(); err != nil {
		return nil, apierror.Validation(err.Error(), nil)
	}

	err := s.items.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.items.CreateTx(tx, item); err != nil {
			return err
		}
		return s.transactions.CreateTx(tx, &model.Transaction{
			TransactionType: model.TransactionAdd,
			ItemName:        item.ItemName,
			UserName:        actorName(actor),
			Details:         fmt.Sprintf("+%d units", item.Quantity),
		})
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Field("sku", "An inventory item with this SKU already exists.")
		}
		return nil, apierror.Internal("Failed to create inventory item", err)
	}

	resp := toItemResponse(*item)
	return &resp, nil
}

func (s *itemService) List(ctx context.Context, filter dto.ItemFilter) (*pagination.Page[dto.ItemResponse], error) {
	cur, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return nil, apierror.Field("cursor", "Invalid cursor")
	}
	q := repository.ItemQuery{
		Category: strings.TrimSpace(filter.Category),
		Supplier: strings.TrimSpace(filter.Supplier),
		Search:   strings.TrimSpace(filter.Search),
	}
	rows, err := s.items.List(ctx, q, s.pager, cur)
	if err != nil {
		return nil, apierror.Internal("Failed to list inventory items", err)
	}
	page := pagination.Map(pagination.Cut(s.pager, rows, cur), toItemResponse)
	return &page, nil
}

func (s *itemService) Get(ctx context.Context, id uuid.UUID) (*dto.ItemResponse, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toItemResponse(*item)
	return &resp, nil
}

func (s *itemService) Update(ctx context.Context, actor *model.User, id uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *item
	fields := map[string]string{}

	if req.SKU != nil {
		if sku := strings.TrimSpace(*req.SKU); sku == "" {
			fields["sku"] = "SKU cannot be empty."
		} else if sku != item.SKU {
			exists, err := s.items.SKUExists(ctx, sku, &item.ID)
			if err != nil {
				return nil, apierror.Internal("Failed to update item", err)
			}
			if exists {
				fields["sku"] = "An inventory item with this SKU already exists."
			}
			item.SKU = sku
		}
	}
	if req.ItemName != nil {
		if name := strings.TrimSpace(*req.ItemName); name == "" {
			fields["item_name"] = "Item name cannot be empty."
		} else {
			item.ItemName = name
		}
	}
	if req.Quantity != nil {
		if msg := validateQuantity(*req.Quantity); msg != "" {
			fields["quantity"] = msg
		} else {
			item.Quantity = *req.Quantity
		}
	}
	if req.Price != nil {
		if msg := validatePrice(*req.Price); msg != "" {
			fields["price"] = msg
		} else {
			item.Price = *req.Price
		}
	}
	if req.Category != nil {
		item.Category = cleanOptional(req.Category)
	}
	if req.SupplierID != nil {
		if strings.TrimSpace(*req.SupplierID) == "" {
			item.SupplierID, item.Supplier = nil, nil
		} else {
			supplier, msg, err := s.resolveSupplier(ctx, *req.SupplierID)
			if err != nil {
				return nil, apierror.Internal("Failed to update item", err)
			}
			if msg != "" {
				fields["supplier_id"] = msg
			} else {
				item.SupplierID, item.Supplier = &supplier.ID, supplier
			}
		}
	}
	if len(fields) > 0 {
		return nil, apierror.Validation("Validation failed", fields)
	}
	if err := item.Clean(); err != nil {
		return nil, apierror.Validation(err.Error(), nil)
	}

	err = s.items.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.items.UpdateTx(tx, item); err != nil {
			return err
		}
		return s.transactions.CreateTx(tx, &model.Transaction{
			TransactionType: model.TransactionUpdate,
			ItemName:        item.ItemName,
			UserName:        actorName(actor),
			Details:         describeChanges(&before, item),
		})
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Field("sku", "An inventory item with this SKU already exists.")
		}
		return nil, apierror.Internal("Failed to update item", err)
	}

	resp := toItemResponse(*item)
	return &resp, nil
}

func (s *itemService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if actor == nil || !actor.IsSuperuser {
		return apierror.PermissionDenied("Only admins can delete inventory items")
	}
	item, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	err = s.items.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.transactions.CreateTx(tx, &model.Transaction{
			TransactionType: model.TransactionDelete,
			ItemName:        item.ItemName,
			UserName:        actorName(actor),
			Details:         "SKU: " + item.SKU,
		}); err != nil {
			return err
		}
		return s.items.DeleteTx(tx, item.ID)
	})
	if err != nil {
		return apierror.Internal("Failed to delete item", err)
	}
	log.Info().Str("sku", item.SKU).Str("by", actorName(actor)).Msg("inventory: item deleted")
	return nil
}

func (s *itemService) find(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound(msgItemNotFound)
		}
		return nil, apierror.Internal("Failed to load item", err)
	}
	return item, nil
}

// resolveSupplier returns the supplier, or a field message when the id is
// malformed or unknown.
func (s *itemService) resolveSupplier(ctx context.Context, raw string) (*model.Supplier, string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, "Invalid supplier id.", nil
	}
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "Supplier not found.", nil
		}
		return nil, "", err
	}
	return supplier, "", nil
}

func validateQuantity(q int) string {
	if q < 0 {
		return "Quantity must be greater than or equal to 0."
	}
	return ""
}

func validatePrice(p decimal.Decimal) string {
	switch {
	case p.IsNegative():
		return "Price must be greater than or equal to 0."
	case !p.Equal(p.Round(2)):
		return "Ensure that there are no more than 2 decimal places."
	case p.GreaterThanOrEqual(maxPrice):
		return "Ensure that there are no more than 10 digits in total."
	}
	return ""
}

// describeChanges lists changed fields as "field: old -> new; ...".
func describeChanges(before, after *model.InventoryItem) string {
	var changes []string
	add := func(field, from, to string) {
		if from != to {
			changes = append(changes, fmt.Sprintf("%s: %s -> %s", field, from, to))
		}
	}
	add("sku", before.SKU, after.SKU)
	add("item_name", before.ItemName, after.ItemName)
	add("quantity", fmt.Sprint(before.Quantity), fmt.Sprint(after.Quantity))
	add("price", before.Price.StringFixed(2), after.Price.StringFixed(2))
	add("category", optionalString(before.Category), optionalString(after.Category))
	add("supplier", supplierName(before.Supplier), supplierName(after.Supplier))
	if len(changes) == 0 {
		return "No changes"
	}
	return strings.Join(changes, "; ")
}

func cleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func optionalString(s *string) string {
	if s == nil {
		return "none"
	}
	return *s
}

func supplierName(s *model.Supplier) string {
	if s == nil {
		return "none"
	}
	return s.Name
}

func actorName(u *model.User) string {
	if u == nil {
		return "anonymous"
	}
	return u.Username
}

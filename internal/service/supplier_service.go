package service

import (
	"context"
	"strings"

	"stockroom/internal/apierror"
	"stockroom/internal/config"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/pagination"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const msgSupplierNotFound = "Supplier not found"

type SupplierService interface {
	Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	List(ctx context.Context, filter dto.SupplierFilter) (*pagination.Page[dto.SupplierResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
	// Delete removes the supplier and its items, returning how many items went
	// with it.
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) (int, error)
}

type supplierService struct {
	suppliers    repository.SupplierRepository
	items        repository.ItemRepository
	transactions repository.TransactionRepository
	pager        pagination.CursorPager
}

func NewSupplierService(
	suppliers repository.SupplierRepository,
	items repository.ItemRepository,
	transactions repository.TransactionRepository,
	cfg *config.Config,
) SupplierService {
	return &supplierService{
		suppliers:    suppliers,
		items:        items,
		transactions: transactions,
		pager:        pagination.New("suppliers", cfg.InventoryPageSize, false),
	}
}

func (s *supplierService) Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	supplier := &model.Supplier{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Address: cleanOptional(req.Address),
	}
	fields := map[string]string{}
	for column, value := range map[string]string{
		repository.SupplierName:  supplier.Name,
		repository.SupplierEmail: supplier.Email,
		repository.SupplierPhone: supplier.Phone,
	} {
		if value == "" {
			fields[column] = "This field may not be blank."
		}
	}
	if err := s.checkUnique(ctx, supplier, nil, fields); err != nil {
		return nil, apierror.Internal("Failed to create supplier", err)
	}
	if len(fields) > 0 {
		return nil, apierror.Validation("Validation failed", fields)
	}

	if err := s.suppliers.Create(ctx, supplier); err != nil {
		if repository.IsDuplicate(err) {
			return nil, s.duplicateError(ctx, supplier, nil)
		}
		return nil, apierror.Internal("Failed to create supplier", err)
	}
	resp := toSupplierResponse(*supplier, 0)
	return &resp, nil
}

func (s *supplierService) List(ctx context.Context, filter dto.SupplierFilter) (*pagination.Page[dto.SupplierResponse], error) {
	cur, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return nil, apierror.Field("cursor", "Invalid cursor")
	}
	rows, err := s.suppliers.List(ctx, strings.TrimSpace(filter.Search), s.pager, cur)
	if err != nil {
		return nil, apierror.Internal("Failed to list suppliers", err)
	}
	page := pagination.Cut(s.pager, rows, cur)

	ids := make([]uuid.UUID, len(page.Results))
	for i, sup := range page.Results {
		ids[i] = sup.ID
	}
	counts, err := s.suppliers.ItemCounts(ctx, ids)
	if err != nil {
		return nil, apierror.Internal("Failed to list suppliers", err)
	}
	out := pagination.Map(page, func(sup model.Supplier) dto.SupplierResponse {
		return toSupplierResponse(sup, counts[sup.ID])
	})
	return &out, nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	supplier, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withCount(ctx, supplier)
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	supplier, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	set := func(column string, value *string, dst *string) {
		if value == nil {
			return
		}
		if v := strings.TrimSpace(*value); v == "" {
			fields[column] = "This field may not be blank."
		} else {
			*dst = v
		}
	}
	set(repository.SupplierName, req.Name, &supplier.Name)
	set(repository.SupplierEmail, req.Email, &supplier.Email)
	set(repository.SupplierPhone, req.Phone, &supplier.Phone)
	if req.Address != nil {
		supplier.Address = cleanOptional(req.Address)
	}
	if err := s.checkUnique(ctx, supplier, &supplier.ID, fields); err != nil {
		return nil, apierror.Internal("Failed to update supplier", err)
	}
	if len(fields) > 0 {
		return nil, apierror.Validation("Validation failed", fields)
	}

	if err := s.suppliers.Update(ctx, supplier); err != nil {
		if repository.IsDuplicate(err) {
			return nil, s.duplicateError(ctx, supplier, &supplier.ID)
		}
		return nil, apierror.Internal("Failed to update supplier", err)
	}
	return s.withCount(ctx, supplier)
}

func (s *supplierService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) (int, error) {
	if actor == nil || !actor.IsSuperuser {
		return 0, apierror.PermissionDenied("Only admins can delete suppliers")
	}
	supplier, err := s.find(ctx, id)
	if err != nil {
		return 0, err
	}

	var removed int
	err = s.suppliers.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := s.items.FindBySupplierTx(tx, supplier.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := s.transactions.CreateTx(tx, &model.Transaction{
				TransactionType: model.TransactionDelete,
				ItemName:        item.ItemName,
				UserName:        actorName(actor),
				Details:         "SKU: " + item.SKU,
			}); err != nil {
				return err
			}
		}
		if err := s.items.DeleteBySupplierTx(tx, supplier.ID); err != nil {
			return err
		}
		removed = len(items)
		return s.suppliers.DeleteTx(tx, supplier.ID)
	})
	if err != nil {
		return 0, apierror.Internal("Failed to delete supplier", err)
	}
	log.Info().
		Str("supplier", supplier.Name).
		Int("items", removed).
		Str("by", actorName(actor)).
		Msg("inventory: supplier deleted")
	return removed, nil
}

func (s *supplierService) find(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound(msgSupplierNotFound)
		}
		return nil, apierror.Internal("Failed to load supplier", err)
	}
	return supplier, nil
}

func (s *supplierService) withCount(ctx context.Context, supplier *model.Supplier) (*dto.SupplierResponse, error) {
	counts, err := s.suppliers.ItemCounts(ctx, []uuid.UUID{supplier.ID})
	if err != nil {
		return nil, apierror.Internal("Failed to load supplier", err)
	}
	resp := toSupplierResponse(*supplier, counts[supplier.ID])
	return &resp, nil
}

// checkUnique records a field error for every unique column already taken by
// another supplier. Blank fields were reported by the caller and are skipped.
// duplicateError reports a unique violation that slipped past checkUnique
// because another writer got there first. It names the taken column when it
// can still be found.
func (s *supplierService) duplicateError(ctx context.Context, supplier *model.Supplier, exclude *uuid.UUID) error {
	fields := map[string]string{}
	if err := s.checkUnique(ctx, supplier, exclude, fields); err != nil || len(fields) == 0 {
		return apierror.Validation("A supplier with these details already exists.", nil)
	}
	return apierror.Validation("Validation failed", fields)
}

func (s *supplierService) checkUnique(ctx context.Context, supplier *model.Supplier, exclude *uuid.UUID, fields map[string]string) error {
	checks := []struct{ column, value string }{
		{repository.SupplierName, supplier.Name},
		{repository.SupplierEmail, supplier.Email},
		{repository.SupplierPhone, supplier.Phone},
	}
	for _, c := range checks {
		if c.value == "" || fields[c.column] != "" {
			continue
		}
		exists, err := s.suppliers.Exists(ctx, c.column, c.value, exclude)
		if err != nil {
			return err
		}
		if exists {
			fields[c.column] = "A supplier with this " + c.column + " already exists."
		}
	}
	return nil
}

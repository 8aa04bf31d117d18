package service

import (
	"context"
	"strings"

	"stockroom/internal/apierror"
	"stockroom/internal/config"
	"stockroom/internal/dto"
	"stockroom/internal/pagination"
	"stockroom/internal/repository"
)

// TransactionService exposes the audit log read-only; rows are written by the
// item and supplier services.
type TransactionService interface {
	List(ctx context.Context, filter dto.TransactionFilter) (*pagination.Page[dto.TransactionResponse], error)
}

type transactionService struct {
	repo  repository.TransactionRepository
	pager pagination.CursorPager
}

func NewTransactionService(repo repository.TransactionRepository, cfg *config.Config) TransactionService {
	return &transactionService{
		repo:  repo,
		pager: pagination.New("", cfg.InventoryPageSize, true),
	}
}

func (s *transactionService) List(ctx context.Context, filter dto.TransactionFilter) (*pagination.Page[dto.TransactionResponse], error) {
	cur, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return nil, apierror.Field("cursor", "Invalid cursor")
	}
	q := repository.TransactionQuery{
		Type:   strings.ToLower(strings.TrimSpace(filter.Type)),
		Search: strings.TrimSpace(filter.Search),
	}
	rows, err := s.repo.List(ctx, q, s.pager, cur)
	if err != nil {
		return nil, apierror.Internal("Failed to list transactions", err)
	}
	page := pagination.Map(pagination.Cut(s.pager, rows, cur), toTransactionResponse)
	return &page, nil
}

package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dental-clinic-backend/internal/domain/pricelist"
)

// PriceListServiceImpl implements the PriceListService interface
type PriceListServiceImpl struct {
	pricelistRepo pricelist.Repository
	logger        *slog.Logger
}

// NewPriceListService creates a new price list service
func NewPriceListService(logger *slog.Logger, pricelistRepo pricelist.Repository) PriceListService {
	return &PriceListServiceImpl{
		pricelistRepo: pricelistRepo,
		logger:        logger,
	}
}

// CreateItem validates and stores a new billable procedure
func (s *PriceListServiceImpl) CreateItem(ctx context.Context, name, category string, defaultPrice decimal.Decimal) (*pricelist.Item, error) {
	item, err := pricelist.NewItem(name, category, defaultPrice)
	if err != nil {
		return nil, err
	}

	if err := s.pricelistRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Price list item created", "item_id", item.ID.String(), "name", item.Name)
	return item, nil
}

// GetItem retrieves a price list item by ID
func (s *PriceListServiceImpl) GetItem(ctx context.Context, id uuid.UUID) (*pricelist.Item, error) {
	return s.pricelistRepo.GetByID(ctx, id)
}

// UpdateItem applies new values to an existing item. Snapshots in committed
// treatment plans are unaffected.
func (s *PriceListServiceImpl) UpdateItem(ctx context.Context, id uuid.UUID, name, category string, defaultPrice decimal.Decimal, isActive bool) (*pricelist.Item, error) {
	item, err := s.pricelistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := item.Update(name, category, defaultPrice, isActive); err != nil {
		return nil, err
	}

	if err := s.pricelistRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// DeleteItem removes a price list item
func (s *PriceListServiceImpl) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.pricelistRepo.Delete(ctx, id)
}

// ListItems returns price list items, optionally active only
func (s *PriceListServiceImpl) ListItems(ctx context.Context, activeOnly bool) ([]*pricelist.Item, error) {
	return s.pricelistRepo.GetAll(ctx, activeOnly)
}

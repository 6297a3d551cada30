package pricelist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyName    = errors.New("price list item name is required")
	ErrInvalidPrice = errors.New("default price must be greater than zero")
)

// Item is one billable procedure in the clinic's price list
type Item struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewItem creates an active price list item after validation
func NewItem(name, category string, defaultPrice decimal.Decimal) (*Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if !defaultPrice.IsPositive() {
		return nil, ErrInvalidPrice
	}

	now := time.Now()
	return &Item{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Category:     category,
		DefaultPrice: defaultPrice.Round(2),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Update applies new values after validation
func (i *Item) Update(name, category string, defaultPrice decimal.Decimal, isActive bool) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if !defaultPrice.IsPositive() {
		return ErrInvalidPrice
	}
	i.Name = strings.TrimSpace(name)
	i.Category = category
	i.DefaultPrice = defaultPrice.Round(2)
	i.IsActive = isActive
	i.UpdatedAt = time.Now()
	return nil
}

// Repository manages price list persistence
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetAll(ctx context.Context, activeOnly bool) ([]*Item, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrItemNotFound indicates a missing price list item
type ErrItemNotFound struct {
	ItemID uuid.UUID
}

func (e ErrItemNotFound) Error() string {
	return "price list item not found: " + e.ItemID.String()
}

// Is implements the errors.Is interface for ErrItemNotFound
func (e ErrItemNotFound) Is(target error) bool {
	t, ok := target.(ErrItemNotFound)
	if !ok {
		return false
	}
	if t.ItemID == uuid.Nil {
		return true
	}
	return e.ItemID == t.ItemID
}

package treatment

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidPercentage indicates a percentage outside 0-100
var ErrInvalidPercentage = errors.New("percentage must be between 0 and 100")

// Discount adjusts the price snapshot of a treatment item. Discounted prices
// never go below zero.
type Discount interface {
	Apply(item *Item)
}

// PercentageDiscount reduces each item price by a fixed percentage
type PercentageDiscount struct {
	percentage decimal.Decimal
}

// NewPercentageDiscount validates the percentage range
func NewPercentageDiscount(percentage decimal.Decimal) (*PercentageDiscount, error) {
	if percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrInvalidPercentage
	}
	return &PercentageDiscount{percentage: percentage}, nil
}

func (d *PercentageDiscount) Apply(item *Item) {
	discountAmount := item.PriceSnapshot.Mul(d.percentage.Div(decimal.NewFromInt(100)))
	item.PriceSnapshot = clampZero(item.PriceSnapshot.Sub(discountAmount).Round(2))
}

// FixedDiscount subtracts a flat amount from each item price
type FixedDiscount struct {
	amount decimal.Decimal
}

func NewFixedDiscount(amount decimal.Decimal) *FixedDiscount {
	return &FixedDiscount{amount: amount}
}

func (d *FixedDiscount) Apply(item *Item) {
	item.PriceSnapshot = clampZero(item.PriceSnapshot.Sub(d.amount))
}

// ApplyDiscount runs the discount over every item in the slice
func ApplyDiscount(items []*Item, d Discount) {
	for _, item := range items {
		d.Apply(item)
	}
}

func clampZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

package treatment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(name string, price string, qty int) *Item {
	return &Item{
		PriceListItemID: uuid.New(),
		NameSnapshot:    name,
		PriceSnapshot:   decimal.RequireFromString(price),
		Quantity:        qty,
	}
}

func TestNewPlan(t *testing.T) {
	patientID := uuid.New()

	t.Run("SuccessfulCreation", func(t *testing.T) {
		items := []*Item{
			newItem("Cleaning", "100.00", 1),
			newItem("Filling", "250.00", 2),
		}

		plan, err := NewPlan(patientID, "Initial work", items)

		require.NoError(t, err)
		require.NotNil(t, plan)
		assert.NotEqual(t, uuid.Nil, plan.ID)
		assert.Equal(t, patientID, plan.PatientID)
		require.Len(t, plan.Items, 2)
		for _, item := range plan.Items {
			assert.Equal(t, plan.ID, item.TreatmentPlanID)
			assert.NotEqual(t, uuid.Nil, item.ID)
		}
		assert.True(t, plan.TotalCost().Equal(decimal.RequireFromString("600.00")), "total should be 600, got %s", plan.TotalCost())
	})

	t.Run("MissingPatientRejected", func(t *testing.T) {
		_, err := NewPlan(uuid.Nil, "t", []*Item{newItem("Cleaning", "100", 1)})
		assert.ErrorIs(t, err, ErrMissingPatient)
	})

	t.Run("EmptyPlanRejected", func(t *testing.T) {
		_, err := NewPlan(patientID, "t", nil)
		assert.ErrorIs(t, err, ErrNoItems)
	})

	t.Run("ItemValidation", func(t *testing.T) {
		tests := []struct {
			name    string
			item    *Item
			wantErr error
		}{
			{"EmptyName", newItem("", "100", 1), ErrEmptyItemName},
			{"ZeroPrice", newItem("Cleaning", "0", 1), ErrInvalidPrice},
			{"NegativePrice", newItem("Cleaning", "-10", 1), ErrInvalidPrice},
			{"ZeroQuantity", newItem("Cleaning", "100", 0), ErrInvalidQty},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewPlan(patientID, "t", []*Item{tc.item})
				assert.ErrorIs(t, err, tc.wantErr)
			})
		}
	})
}

func TestItem_LineTotal(t *testing.T) {
	item := newItem("Filling", "250.50", 3)

	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("751.50")))
}

func TestPercentageDiscount(t *testing.T) {
	t.Run("ReducesPriceByPercentage", func(t *testing.T) {
		d, err := NewPercentageDiscount(decimal.NewFromInt(20))
		require.NoError(t, err)

		item := newItem("Cleaning", "100.00", 1)
		d.Apply(item)

		assert.True(t, item.PriceSnapshot.Equal(decimal.RequireFromString("80.00")))
	})

	t.Run("RoundsToCents", func(t *testing.T) {
		d, err := NewPercentageDiscount(decimal.RequireFromString("33.33"))
		require.NoError(t, err)

		item := newItem("Cleaning", "99.99", 1)
		d.Apply(item)

		assert.True(t, item.PriceSnapshot.Equal(decimal.RequireFromString("66.66")), "got %s", item.PriceSnapshot)
	})

	t.Run("OutOfRangeRejected", func(t *testing.T) {
		_, err := NewPercentageDiscount(decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, ErrInvalidPercentage)

		_, err = NewPercentageDiscount(decimal.NewFromInt(101))
		assert.ErrorIs(t, err, ErrInvalidPercentage)
	})

	t.Run("FullDiscountIsFree", func(t *testing.T) {
		d, err := NewPercentageDiscount(decimal.NewFromInt(100))
		require.NoError(t, err)

		item := newItem("Cleaning", "100.00", 1)
		d.Apply(item)

		assert.True(t, item.PriceSnapshot.IsZero())
	})
}

func TestFixedDiscount(t *testing.T) {
	t.Run("SubtractsFlatAmount", func(t *testing.T) {
		d := NewFixedDiscount(decimal.NewFromInt(30))

		item := newItem("Filling", "250.00", 1)
		d.Apply(item)

		assert.True(t, item.PriceSnapshot.Equal(decimal.RequireFromString("220.00")))
	})

	t.Run("NeverGoesNegative", func(t *testing.T) {
		d := NewFixedDiscount(decimal.NewFromInt(500))

		item := newItem("Cleaning", "100.00", 1)
		d.Apply(item)

		assert.True(t, item.PriceSnapshot.IsZero())
	})
}

func TestApplyDiscount(t *testing.T) {
	items := []*Item{
		newItem("Cleaning", "100.00", 1),
		newItem("Filling", "200.00", 2),
	}
	d, err := NewPercentageDiscount(decimal.NewFromInt(50))
	require.NoError(t, err)

	ApplyDiscount(items, d)

	assert.True(t, items[0].PriceSnapshot.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, items[1].PriceSnapshot.Equal(decimal.RequireFromString("100.00")))
}

package treatment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrMissingPatient = errors.New("patient is required")
	ErrNoItems        = errors.New("treatment plan must have at least one item")
	ErrEmptyItemName  = errors.New("treatment item name is required")
	ErrInvalidPrice   = errors.New("price must be greater than zero")
	ErrInvalidQty     = errors.New("quantity must be at least 1")
)

// Item is one line of a treatment plan. Name and price are snapshotted from
// the price list at planning time so later price-list edits don't rewrite
// history.
type Item struct {
	ID              uuid.UUID       `json:"id"`
	TreatmentPlanID uuid.UUID       `json:"treatment_plan_id"`
	PriceListItemID uuid.UUID       `json:"price_list_item_id"`
	NameSnapshot    string          `json:"name_snapshot"`
	PriceSnapshot   decimal.Decimal `json:"price_snapshot"`
	Quantity        int             `json:"quantity"`
}

// LineTotal is the item subtotal (snapshot price times quantity)
func (i *Item) LineTotal() decimal.Decimal {
	return i.PriceSnapshot.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Plan groups the treatment items proposed for one patient
type Plan struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	Title     string    `json:"title"`
	Items     []*Item   `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// TotalCost sums line totals across the plan
func (p *Plan) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// NewPlan creates a plan with snapshotted items after validation
func NewPlan(patientID uuid.UUID, title string, items []*Item) (*Plan, error) {
	if patientID == uuid.Nil {
		return nil, ErrMissingPatient
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	planID := uuid.New()
	for _, item := range items {
		if item.NameSnapshot == "" {
			return nil, ErrEmptyItemName
		}
		if !item.PriceSnapshot.IsPositive() {
			return nil, ErrInvalidPrice
		}
		if item.Quantity < 1 {
			return nil, ErrInvalidQty
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.TreatmentPlanID = planID
	}

	return &Plan{
		ID:        planID,
		PatientID: patientID,
		Title:     title,
		Items:     items,
		CreatedAt: time.Now(),
	}, nil
}

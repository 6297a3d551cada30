package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dental-clinic-backend/internal/domain/treatment"
	"github.com/dental-clinic-backend/internal/platform/persistence"
)

// TreatmentRepository implements the treatment.Repository interface for PostgreSQL
type TreatmentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTreatmentRepository creates a new PostgreSQL treatment plan repository
func NewTreatmentRepository(logger *slog.Logger, db *persistence.PostgresDB) treatment.Repository {
	return &TreatmentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *TreatmentRepository) WithTx(tx pgx.Tx) treatment.Repository {
	return &TreatmentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a plan and its items. Callers are expected to run this inside
// a transaction so the plan and item rows commit together.
func (r *TreatmentRepository) Create(ctx context.Context, p *treatment.Plan) error {
	planQuery := `
		INSERT INTO treatment_plans (id, patient_id, title, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.querier.Exec(ctx, planQuery, p.ID, p.PatientID, p.Title, p.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create treatment plan", "error", err)
		return fmt.Errorf("failed to create treatment plan: %w", err)
	}

	itemQuery := `
		INSERT INTO treatment_items (id, treatment_plan_id, price_list_item_id, name_snapshot, price_snapshot, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, item := range p.Items {
		_, err := r.querier.Exec(ctx, itemQuery,
			item.ID,
			item.TreatmentPlanID,
			item.PriceListItemID,
			item.NameSnapshot,
			item.PriceSnapshot,
			item.Quantity,
		)
		if err != nil {
			r.logger.Error("Failed to create treatment item", "planID", p.ID.String(), "error", err)
			return fmt.Errorf("failed to create treatment item: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a plan with its items
func (r *TreatmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*treatment.Plan, error) {
	query := `
		SELECT id, patient_id, title, created_at
		FROM treatment_plans
		WHERE id = $1
	`

	var p treatment.Plan
	err := r.querier.QueryRow(ctx, query, id).Scan(&p.ID, &p.PatientID, &p.Title, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, treatment.ErrPlanNotFound{PlanID: id}
		}
		r.logger.Error("Failed to get treatment plan", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get treatment plan: %w", err)
	}

	items, err := r.itemsForPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Items = items

	return &p, nil
}

// GetByPatientID retrieves a patient's plans with items, newest first
func (r *TreatmentRepository) GetByPatientID(ctx context.Context, patientID uuid.UUID) ([]*treatment.Plan, error) {
	query := `
		SELECT id, patient_id, title, created_at
		FROM treatment_plans
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, patientID)
	if err != nil {
		r.logger.Error("Failed to list treatment plans", "patientID", patientID.String(), "error", err)
		return nil, fmt.Errorf("failed to list treatment plans: %w", err)
	}
	defer rows.Close()

	var plans []*treatment.Plan
	for rows.Next() {
		var p treatment.Plan
		if err := rows.Scan(&p.ID, &p.PatientID, &p.Title, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan treatment plan: %w", err)
		}
		plans = append(plans, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read treatment plans: %w", err)
	}

	for _, p := range plans {
		items, err := r.itemsForPlan(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Items = items
	}

	return plans, nil
}

// Delete removes a plan and cascades to its items
func (r *TreatmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM treatment_plans WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete treatment plan", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete treatment plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return treatment.ErrPlanNotFound{PlanID: id}
	}

	return nil
}

// UpdateItemPrices rewrites snapshot prices for the given items, typically
// after a discount is applied at planning time.
func (r *TreatmentRepository) UpdateItemPrices(ctx context.Context, items []*treatment.Item) error {
	query := `
		UPDATE treatment_items
		SET price_snapshot = $1
		WHERE id = $2
	`

	for _, item := range items {
		_, err := r.querier.Exec(ctx, query, item.PriceSnapshot, item.ID)
		if err != nil {
			r.logger.Error("Failed to update treatment item price", "itemID", item.ID.String(), "error", err)
			return fmt.Errorf("failed to update treatment item price: %w", err)
		}
	}

	return nil
}

// TotalCostByPatient sums snapshot line totals across all of a patient's plans
func (r *TreatmentRepository) TotalCostByPatient(ctx context.Context, patientID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(ti.price_snapshot * ti.quantity), 0)
		FROM treatment_items ti
		JOIN treatment_plans tp ON tp.id = ti.treatment_plan_id
		WHERE tp.patient_id = $1
	`

	var total decimal.Decimal
	if err := r.querier.QueryRow(ctx, query, patientID).Scan(&total); err != nil {
		r.logger.Error("Failed to sum treatment cost", "patientID", patientID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum treatment cost: %w", err)
	}

	return total, nil
}

func (r *TreatmentRepository) itemsForPlan(ctx context.Context, planID uuid.UUID) ([]*treatment.Item, error) {
	query := `
		SELECT id, treatment_plan_id, price_list_item_id, name_snapshot, price_snapshot, quantity
		FROM treatment_items
		WHERE treatment_plan_id = $1
	`

	rows, err := r.querier.Query(ctx, query, planID)
	if err != nil {
		r.logger.Error("Failed to list treatment items", "planID", planID.String(), "error", err)
		return nil, fmt.Errorf("failed to list treatment items: %w", err)
	}
	defer rows.Close()

	var items []*treatment.Item
	for rows.Next() {
		var item treatment.Item
		err := rows.Scan(
			&item.ID,
			&item.TreatmentPlanID,
			&item.PriceListItemID,
			&item.NameSnapshot,
			&item.PriceSnapshot,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan treatment item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read treatment items: %w", err)
	}

	return items, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dental-clinic-backend/internal/domain/pricelist"
	"github.com/dental-clinic-backend/internal/platform/persistence"
)

// PriceListRepository implements the pricelist.Repository interface for PostgreSQL
type PriceListRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPriceListRepository creates a new PostgreSQL price list repository
func NewPriceListRepository(logger *slog.Logger, db *persistence.PostgresDB) pricelist.Repository {
	return &PriceListRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *PriceListRepository) WithTx(tx pgx.Tx) pricelist.Repository {
	return &PriceListRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new price list item
func (r *PriceListRepository) Create(ctx context.Context, item *pricelist.Item) error {
	query := `
		INSERT INTO price_list_items (id, name, category, default_price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		item.ID,
		item.Name,
		item.Category,
		item.DefaultPrice,
		item.IsActive,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create price list item", "error", err)
		return fmt.Errorf("failed to create price list item: %w", err)
	}

	return nil
}

// GetByID retrieves a price list item by its ID
func (r *PriceListRepository) GetByID(ctx context.Context, id uuid.UUID) (*pricelist.Item, error) {
	query := `
		SELECT id, name, category, default_price, is_active, created_at, updated_at
		FROM price_list_items
		WHERE id = $1
	`

	var item pricelist.Item
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.Name,
		&item.Category,
		&item.DefaultPrice,
		&item.IsActive,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pricelist.ErrItemNotFound{ItemID: id}
		}
		r.logger.Error("Failed to get price list item", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get price list item: %w", err)
	}

	return &item, nil
}

// Update updates an existing price list item
func (r *PriceListRepository) Update(ctx context.Context, item *pricelist.Item) error {
	query := `
		UPDATE price_list_items
		SET name = $1, category = $2, default_price = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.querier.Exec(ctx, query,
		item.Name,
		item.Category,
		item.DefaultPrice,
		item.IsActive,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update price list item", "id", item.ID.String(), "error", err)
		return fmt.Errorf("failed to update price list item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return pricelist.ErrItemNotFound{ItemID: item.ID}
	}

	return nil
}

// Delete removes a price list item. Treatment items keep their snapshots, so
// historical plans are unaffected.
func (r *PriceListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM price_list_items WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete price list item", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete price list item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return pricelist.ErrItemNotFound{ItemID: id}
	}

	return nil
}

// GetAll retrieves price list items ordered by category and name
func (r *PriceListRepository) GetAll(ctx context.Context, activeOnly bool) ([]*pricelist.Item, error) {
	query := `
		SELECT id, name, category, default_price, is_active, created_at, updated_at
		FROM price_list_items
		WHERE $1 = FALSE OR is_active = TRUE
		ORDER BY category, name
	`

	rows, err := r.querier.Query(ctx, query, activeOnly)
	if err != nil {
		r.logger.Error("Failed to list price list items", "error", err)
		return nil, fmt.Errorf("failed to list price list items: %w", err)
	}
	defer rows.Close()

	var items []*pricelist.Item
	for rows.Next() {
		var item pricelist.Item
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Category,
			&item.DefaultPrice,
			&item.IsActive,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price list item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read price list items: %w", err)
	}

	return items, nil
}

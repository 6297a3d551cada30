package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/dental-clinic-backend/internal/domain/audit"
	"github.com/dental-clinic-backend/internal/platform/persistence"
)

// AuditRepository implements the audit.Repository interface for PostgreSQL
type AuditRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAuditRepository creates a new PostgreSQL audit repository
func NewAuditRepository(logger *slog.Logger, db *persistence.PostgresDB) audit.Repository {
	return &AuditRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *AuditRepository) WithTx(tx pgx.Tx) audit.Repository {
	return &AuditRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends an audit entry
func (r *AuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	query := `
		INSERT INTO audit_logs (id, entity_name, entity_id, action, user_id, timestamp, changes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		e.ID,
		e.EntityName,
		e.EntityID,
		e.Action,
		e.UserID,
		e.Timestamp,
		e.Changes,
	)
	if err != nil {
		r.logger.Error("Failed to create audit entry", "error", err)
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	return nil
}

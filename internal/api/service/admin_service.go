package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/dental-clinic-backend/internal/domain/patient"
)

// AdminServiceImpl implements the AdminService interface. The full
// reconciliation sweep fans out over a bounded worker pool so a large patient
// base doesn't serialize behind one connection.
type AdminServiceImpl struct {
	patientRepo patient.Repository
	payments    PaymentService
	pool        *ants.Pool
	logger      *slog.Logger
}

// NewAdminService creates an admin service with a worker pool of the given size
func NewAdminService(logger *slog.Logger, patientRepo patient.Repository, payments PaymentService, poolSize int) (*AdminServiceImpl, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &AdminServiceImpl{
		patientRepo: patientRepo,
		payments:    payments,
		pool:        pool,
		logger:      logger,
	}, nil
}

// RecalculateAllPayments rebuilds cached appointment totals for every patient.
// Each patient reconciles in its own transaction; a failure on one patient is
// logged and skipped so the sweep always covers the rest. Returns the number
// of patients successfully processed.
func (s *AdminServiceImpl) RecalculateAllPayments(ctx context.Context) (int, error) {
	patients, err := s.patientRepo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	var (
		wg        sync.WaitGroup
		processed atomic.Int64
	)

	for _, p := range patients {
		p := p
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if err := s.payments.RecalculatePaymentTotals(ctx, p.ID); err != nil {
				s.logger.Error("Failed to recalculate payment totals",
					"patient_id", p.ID.String(),
					"error", err,
				)
				return
			}
			processed.Add(1)
		})
		if err != nil {
			wg.Done()
			s.logger.Error("Failed to submit reconciliation task",
				"patient_id", p.ID.String(),
				"error", err,
			)
		}
	}

	wg.Wait()

	count := int(processed.Load())
	s.logger.Info("Reconciliation sweep finished",
		"patients_total", len(patients),
		"patients_processed", count,
	)

	return count, nil
}

// Shutdown gracefully releases the worker pool
func (s *AdminServiceImpl) Shutdown() {
	s.logger.Info("Shutting down reconciliation worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

var _ AdminService = (*AdminServiceImpl)(nil)

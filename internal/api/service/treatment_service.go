package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dental-clinic-backend/internal/domain/patient"
	"github.com/dental-clinic-backend/internal/domain/pricelist"
	"github.com/dental-clinic-backend/internal/domain/treatment"
)

// TreatmentServiceImpl implements the TreatmentService interface
type TreatmentServiceImpl struct {
	db            TxRunner
	treatmentRepo treatment.Repository
	pricelistRepo pricelist.Repository
	patientRepo   patient.Repository
	logger        *slog.Logger
}

// NewTreatmentService creates a new treatment planning service
func NewTreatmentService(
	logger *slog.Logger,
	db TxRunner,
	treatmentRepo treatment.Repository,
	pricelistRepo pricelist.Repository,
	patientRepo patient.Repository,
) TreatmentService {
	return &TreatmentServiceImpl{
		db:            db,
		treatmentRepo: treatmentRepo,
		pricelistRepo: pricelistRepo,
		patientRepo:   patientRepo,
		logger:        logger,
	}
}

// CreatePlan snapshots current price list names and prices into a new plan so
// later price list edits never rewrite committed plans. An optional discount
// rewrites the snapshots before they are stored.
func (s *TreatmentServiceImpl) CreatePlan(ctx context.Context, patientID uuid.UUID, title string, items []*TreatmentItemRequest, discount treatment.Discount) (*treatment.Plan, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	planItems := make([]*treatment.Item, 0, len(items))
	for _, req := range items {
		listItem, err := s.pricelistRepo.GetByID(ctx, req.PriceListItemID)
		if err != nil {
			return nil, err
		}
		planItems = append(planItems, &treatment.Item{
			PriceListItemID: listItem.ID,
			NameSnapshot:    listItem.Name,
			PriceSnapshot:   listItem.DefaultPrice,
			Quantity:        req.Quantity,
		})
	}

	plan, err := treatment.NewPlan(patientID, title, planItems)
	if err != nil {
		return nil, err
	}

	if discount != nil {
		treatment.ApplyDiscount(plan.Items, discount)
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		return s.treatmentRepo.WithTx(tx).Create(ctx, plan)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Treatment plan created",
		"plan_id", plan.ID.String(),
		"patient_id", patientID.String(),
		"total_cost", plan.TotalCost().String(),
	)
	return plan, nil
}

// GetPlan retrieves a plan with its items
func (s *TreatmentServiceImpl) GetPlan(ctx context.Context, id uuid.UUID) (*treatment.Plan, error) {
	return s.treatmentRepo.GetByID(ctx, id)
}

// ListPlansByPatient returns a patient's plans, newest first
func (s *TreatmentServiceImpl) ListPlansByPatient(ctx context.Context, patientID uuid.UUID) ([]*treatment.Plan, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.treatmentRepo.GetByPatientID(ctx, patientID)
}

// DeletePlan removes a plan and its items
func (s *TreatmentServiceImpl) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.treatmentRepo.Delete(ctx, id)
}

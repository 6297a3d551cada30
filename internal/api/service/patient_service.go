package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dental-clinic-backend/internal/domain/patient"
)

// PatientServiceImpl implements the PatientService interface
type PatientServiceImpl struct {
	patientRepo patient.Repository
	logger      *slog.Logger
}

// NewPatientService creates a new patient service
func NewPatientService(logger *slog.Logger, patientRepo patient.Repository) PatientService {
	return &PatientServiceImpl{
		patientRepo: patientRepo,
		logger:      logger,
	}
}

// RegisterPatient validates and stores a new patient
func (s *PatientServiceImpl) RegisterPatient(ctx context.Context, fullName string, age int, gender, phone, address, medicalHistory string) (*patient.Patient, error) {
	p, err := patient.NewPatient(fullName, age, gender, phone, address, medicalHistory)
	if err != nil {
		return nil, err
	}

	if err := s.patientRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Patient registered", "patient_id", p.ID.String())
	return p, nil
}

// GetPatient retrieves a patient by ID
func (s *PatientServiceImpl) GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return s.patientRepo.GetByID(ctx, id)
}

// UpdatePatient applies new demographic values to an existing patient
func (s *PatientServiceImpl) UpdatePatient(ctx context.Context, id uuid.UUID, fullName string, age int, gender, phone, address, medicalHistory string) (*patient.Patient, error) {
	p, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := p.Update(fullName, age, gender, phone, address, medicalHistory); err != nil {
		return nil, err
	}

	if err := s.patientRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// DeactivatePatient soft-deletes a patient. Ledger and audit rows referencing
// the patient stay in place.
func (s *PatientServiceImpl) DeactivatePatient(ctx context.Context, id uuid.UUID) error {
	p, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	p.Deactivate()
	if err := s.patientRepo.Update(ctx, p); err != nil {
		return err
	}

	s.logger.Info("Patient deactivated", "patient_id", id.String())
	return nil
}

// ListPatients returns all or only active patients
func (s *PatientServiceImpl) ListPatients(ctx context.Context, activeOnly bool) ([]*patient.Patient, error) {
	if activeOnly {
		return s.patientRepo.GetActive(ctx)
	}
	return s.patientRepo.GetAll(ctx)
}

// SearchPatients finds patients by name or phone fragment
func (s *PatientServiceImpl) SearchPatients(ctx context.Context, term string) ([]*patient.Patient, error) {
	return s.patientRepo.Search(ctx, term)
}

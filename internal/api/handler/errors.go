package handler

import (
	"errors"

	"github.com/dental-clinic-backend/internal/domain/appointment"
	"github.com/dental-clinic-backend/internal/domain/patient"
	"github.com/dental-clinic-backend/internal/domain/payment"
	"github.com/dental-clinic-backend/internal/domain/pricelist"
	"github.com/dental-clinic-backend/internal/domain/treatment"
)

// validationErrors are domain rejections of caller input. They map to 400;
// anything else unrecognized maps to 500.
var validationErrors = []error{
	patient.ErrEmptyFullName,
	patient.ErrFullNameTooLong,
	patient.ErrInvalidAge,
	patient.ErrInvalidGender,
	patient.ErrEmptyPhone,
	patient.ErrInvalidPhone,
	appointment.ErrInvalidStatus,
	appointment.ErrPastDate,
	appointment.ErrInvalidTime,
	appointment.ErrEndBeforeStart,
	appointment.ErrMissingPatient,
	payment.ErrInvalidAmount,
	payment.ErrAmountTooLarge,
	payment.ErrFutureDated,
	payment.ErrNotesTooLong,
	payment.ErrEmptyActor,
	payment.ErrAppointmentMismatch,
	treatment.ErrMissingPatient,
	treatment.ErrNoItems,
	treatment.ErrEmptyItemName,
	treatment.ErrInvalidPrice,
	treatment.ErrInvalidQty,
	treatment.ErrInvalidPercentage,
	pricelist.ErrEmptyName,
	pricelist.ErrInvalidPrice,
}

func isValidationError(err error) bool {
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

package patient

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyFullName   = errors.New("full name cannot be empty")
	ErrFullNameTooLong = errors.New("full name cannot exceed 100 characters")
	ErrInvalidAge      = errors.New("age must be between 1 and 149")
	ErrInvalidGender   = errors.New("gender must be Male or Female")
	ErrEmptyPhone      = errors.New("phone number cannot be empty")
	ErrInvalidPhone    = errors.New("invalid phone number format")
)

var phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)

// Patient represents a registered clinic patient
type Patient struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Age            int       `json:"age"`
	Gender         string    `json:"gender"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	MedicalHistory string    `json:"medical_history"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewPatient creates a new active patient after validating demographic fields
func NewPatient(fullName string, age int, gender, phone, address, medicalHistory string) (*Patient, error) {
	if err := validate(fullName, age, gender, phone); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Patient{
		ID:             uuid.New(),
		FullName:       strings.TrimSpace(fullName),
		Age:            age,
		Gender:         gender,
		Phone:          strings.TrimSpace(phone),
		Address:        address,
		MedicalHistory: medicalHistory,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Update applies new demographic values after validation
func (p *Patient) Update(fullName string, age int, gender, phone, address, medicalHistory string) error {
	if err := validate(fullName, age, gender, phone); err != nil {
		return err
	}

	p.FullName = strings.TrimSpace(fullName)
	p.Age = age
	p.Gender = gender
	p.Phone = strings.TrimSpace(phone)
	p.Address = address
	p.MedicalHistory = medicalHistory
	p.UpdatedAt = time.Now()
	return nil
}

// Deactivate marks the patient as inactive. Records are never hard-deleted
// because ledger and audit rows reference them.
func (p *Patient) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

func validate(fullName string, age int, gender, phone string) error {
	trimmedName := strings.TrimSpace(fullName)
	if trimmedName == "" {
		return ErrEmptyFullName
	}
	if len(trimmedName) > 100 {
		return ErrFullNameTooLong
	}
	if age <= 0 || age >= 150 {
		return ErrInvalidAge
	}
	if gender != "Male" && gender != "Female" {
		return ErrInvalidGender
	}
	trimmedPhone := strings.TrimSpace(phone)
	if trimmedPhone == "" {
		return ErrEmptyPhone
	}
	if !phonePattern.MatchString(trimmedPhone) {
		return ErrInvalidPhone
	}
	return nil
}

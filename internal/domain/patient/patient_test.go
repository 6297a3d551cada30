package patient

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPatient(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		p, err := NewPatient("  Lina Haddad  ", 34, "Female", " +961 3 123 456 ", "Beirut", "none")

		require.NoError(t, err)
		require.NotNil(t, p)
		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, "Lina Haddad", p.FullName, "name should be trimmed")
		assert.Equal(t, "+961 3 123 456", p.Phone, "phone should be trimmed")
		assert.True(t, p.IsActive)
		assert.False(t, p.CreatedAt.IsZero())
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	})

	t.Run("ValidationFailures", func(t *testing.T) {
		tests := []struct {
			name     string
			fullName string
			age      int
			gender   string
			phone    string
			wantErr  error
		}{
			{"EmptyName", "   ", 34, "Female", "123456", ErrEmptyFullName},
			{"NameTooLong", strings.Repeat("a", 101), 34, "Female", "123456", ErrFullNameTooLong},
			{"ZeroAge", "Lina Haddad", 0, "Female", "123456", ErrInvalidAge},
			{"NegativeAge", "Lina Haddad", -5, "Female", "123456", ErrInvalidAge},
			{"AgeTooHigh", "Lina Haddad", 150, "Female", "123456", ErrInvalidAge},
			{"UnknownGender", "Lina Haddad", 34, "Other", "123456", ErrInvalidGender},
			{"EmptyPhone", "Lina Haddad", 34, "Female", "  ", ErrEmptyPhone},
			{"PhoneWithLetters", "Lina Haddad", 34, "Female", "call-me-maybe", ErrInvalidPhone},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewPatient(tc.fullName, tc.age, tc.gender, tc.phone, "", "")
				assert.ErrorIs(t, err, tc.wantErr)
			})
		}
	})
}

func TestPatient_Update(t *testing.T) {
	p, err := NewPatient("Lina Haddad", 34, "Female", "123456", "Beirut", "")
	require.NoError(t, err)
	originalUpdatedAt := p.UpdatedAt

	t.Run("SuccessfulUpdate", func(t *testing.T) {
		err := p.Update("Karim Aoun", 40, "Male", "987654", "Tripoli", "diabetic")

		require.NoError(t, err)
		assert.Equal(t, "Karim Aoun", p.FullName)
		assert.Equal(t, 40, p.Age)
		assert.Equal(t, "diabetic", p.MedicalHistory)
		assert.True(t, !p.UpdatedAt.Before(originalUpdatedAt))
	})

	t.Run("InvalidUpdateLeavesPatientUnchanged", func(t *testing.T) {
		err := p.Update("", 40, "Male", "987654", "Tripoli", "")

		assert.ErrorIs(t, err, ErrEmptyFullName)
		assert.Equal(t, "Karim Aoun", p.FullName)
	})
}

func TestPatient_Deactivate(t *testing.T) {
	p, err := NewPatient("Lina Haddad", 34, "Female", "123456", "", "")
	require.NoError(t, err)

	p.Deactivate()

	assert.False(t, p.IsActive)
}

func TestErrPatientNotFound_Is(t *testing.T) {
	patientID := uuid.New()
	err := ErrPatientNotFound{PatientID: patientID}

	assert.ErrorIs(t, err, ErrPatientNotFound{PatientID: patientID})
	assert.ErrorIs(t, err, ErrPatientNotFound{}, "zero-value target should match any patient id")
	assert.NotErrorIs(t, err, ErrPatientNotFound{PatientID: uuid.New()})
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Patient genders
const (
	GenderMale        = "Male"
	GenderFemale      = "Female"
	GenderOther       = "Other"
	GenderUndisclosed = "Prefer not to say"
)

// Patient is one subject's clinical summary, owned by exactly one user.
// UserID is immutable after creation.
type Patient struct {
	Base
	UserID             uuid.UUID      `json:"user_id" db:"user_id"`
	Name               string         `json:"name" db:"name"`
	DateOfBirth        time.Time      `json:"date_of_birth" db:"date_of_birth"`
	Gender             string         `json:"gender" db:"gender"`
	Diagnoses          pq.StringArray `json:"diagnoses" db:"diagnoses"`
	Allergies          pq.StringArray `json:"allergies" db:"allergies"`
	MedicalHistory     string         `json:"medical_history" db:"medical_history"`
	CurrentMedications pq.StringArray `json:"current_medications" db:"current_medications"`

	// Denormalized latest readings: blood pressure refreshes when a snapshot
	// is recorded, glucose when a glucose reading is created.
	LastSystolic  *int     `json:"last_systolic,omitempty" db:"last_systolic"`
	LastDiastolic *int     `json:"last_diastolic,omitempty" db:"last_diastolic"`
	LastGlucose   *float64 `json:"last_glucose,omitempty" db:"last_glucose"`
}

// CreatePatientRequest represents patient profile creation parameters.
type CreatePatientRequest struct {
	Name           string    `json:"name" validate:"required,max=100"`
	DateOfBirth    time.Time `json:"date_of_birth" validate:"required,notfuture"`
	Gender         string    `json:"gender" validate:"required,oneof=Male Female Other 'Prefer not to say'"`
	Diagnoses      []string  `json:"diagnoses" validate:"omitempty,max=50,dive,max=200"`
	Allergies      []string  `json:"allergies" validate:"omitempty,max=50,dive,max=200"`
	MedicalHistory string    `json:"medical_history" validate:"omitempty,max=5000"`
}

// UpdatePatientRequest represents patient profile update parameters.
// The owner reference cannot be changed.
type UpdatePatientRequest struct {
	Name           *string    `json:"name" validate:"omitempty,max=100"`
	DateOfBirth    *time.Time `json:"date_of_birth" validate:"omitempty,notfuture"`
	Gender         *string    `json:"gender" validate:"omitempty,oneof=Male Female Other 'Prefer not to say'"`
	Diagnoses      []string   `json:"diagnoses" validate:"omitempty,max=50,dive,max=200"`
	Allergies      []string   `json:"allergies" validate:"omitempty,max=50,dive,max=200"`
	MedicalHistory *string    `json:"medical_history" validate:"omitempty,max=5000"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Medication statuses
const (
	MedicationStatusActive       = "active"
	MedicationStatusDiscontinued = "discontinued"
	MedicationStatusCompleted    = "completed"
)

// Medication belongs to exactly one patient. The owning patient's
// current_medications list always equals the set of existing medication ids
// referencing it; both sides are written in one transaction.
type Medication struct {
	Base
	PatientID    uuid.UUID  `json:"patient_id" db:"patient_id"`
	Name         string     `json:"name" db:"name"`
	Dosage       string     `json:"dosage" db:"dosage"`
	Frequency    string     `json:"frequency" db:"frequency"`
	Instructions *string    `json:"instructions,omitempty" db:"instructions"`
	StartDate    time.Time  `json:"start_date" db:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty" db:"end_date"`
	Status       string     `json:"status" db:"status"`
}

// CreateMedicationRequest represents medication creation parameters.
// EndDate, when present, must not be before StartDate (struct-level rule).
type CreateMedicationRequest struct {
	Name         string     `json:"name" validate:"required,max=200"`
	Dosage       string     `json:"dosage" validate:"required,max=100"`
	Frequency    string     `json:"frequency" validate:"required,max=100"`
	Instructions *string    `json:"instructions" validate:"omitempty,max=1000"`
	StartDate    time.Time  `json:"start_date" validate:"required"`
	EndDate      *time.Time `json:"end_date"`
	Status       string     `json:"status" validate:"omitempty,oneof=active discontinued completed"`
}

// UpdateMedicationRequest represents medication update parameters.
type UpdateMedicationRequest struct {
	Name         *string    `json:"name" validate:"omitempty,max=200"`
	Dosage       *string    `json:"dosage" validate:"omitempty,max=100"`
	Frequency    *string    `json:"frequency" validate:"omitempty,max=100"`
	Instructions *string    `json:"instructions" validate:"omitempty,max=1000"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Status       *string    `json:"status" validate:"omitempty,oneof=active discontinued completed"`
}

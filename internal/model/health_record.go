package model

import (
	"time"

	"github.com/google/uuid"
)

// HealthRecordType enumerates the kinds of observations a record can hold.
type HealthRecordType string

const (
	RecordBloodPressure HealthRecordType = "blood_pressure"
	RecordGlucose       HealthRecordType = "glucose"
	RecordWeight        HealthRecordType = "weight"
	RecordHeartRate     HealthRecordType = "heart_rate"
	RecordSymptomLog    HealthRecordType = "symptom_log"
	RecordActivity      HealthRecordType = "activity"
	RecordFoodIntake    HealthRecordType = "food_intake"
	RecordSleep         HealthRecordType = "sleep"
	RecordOther         HealthRecordType = "other"
)

// HealthRecordTypes lists every valid record type.
var HealthRecordTypes = []HealthRecordType{
	RecordBloodPressure,
	RecordGlucose,
	RecordWeight,
	RecordHeartRate,
	RecordSymptomLog,
	RecordActivity,
	RecordFoodIntake,
	RecordSleep,
	RecordOther,
}

// IsValidRecordType reports whether t names a known record type.
func IsValidRecordType(t HealthRecordType) bool {
	for _, known := range HealthRecordTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HealthRecord is one time-series observation for a patient. RecordedAt is
// the observation time; CreatedAt is the insertion time. Which measurement
// fields must be present is conditioned on Type (see recordFieldRules).
type HealthRecord struct {
	Base
	PatientID  uuid.UUID        `json:"patient_id" db:"patient_id"`
	Type       HealthRecordType `json:"type" db:"type"`
	Systolic   *int             `json:"systolic,omitempty" db:"systolic"`
	Diastolic  *int             `json:"diastolic,omitempty" db:"diastolic"`
	Value      *float64         `json:"value,omitempty" db:"value"`
	Unit       *string          `json:"unit,omitempty" db:"unit"`
	Notes      string           `json:"notes,omitempty" db:"notes"`
	RecordedAt time.Time        `json:"recorded_at" db:"recorded_at"`
}

// HealthRecordInput represents create parameters; the same shape re-validates
// the merged record on update.
type HealthRecordInput struct {
	Type       HealthRecordType `json:"type" validate:"required"`
	Systolic   *int             `json:"systolic" validate:"omitempty,gte=0"`
	Diastolic  *int             `json:"diastolic" validate:"omitempty,gte=0"`
	Value      *float64         `json:"value"`
	Unit       *string          `json:"unit" validate:"omitempty,max=20"`
	Notes      string           `json:"notes" validate:"omitempty,max=2000"`
	RecordedAt time.Time        `json:"recorded_at" validate:"required,notfuture"`
}

// UpdateHealthRecordRequest represents a partial update; the merged result is
// re-validated as a full HealthRecordInput.
type UpdateHealthRecordRequest struct {
	Type       *HealthRecordType `json:"type"`
	Systolic   *int              `json:"systolic"`
	Diastolic  *int              `json:"diastolic"`
	Value      *float64          `json:"value"`
	Unit       *string           `json:"unit"`
	Notes      *string           `json:"notes"`
	RecordedAt *time.Time        `json:"recorded_at"`
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vitaltrack/vitaltrack-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Patient, error)
	List(ctx context.Context) ([]*model.Patient, error)
}

type MedicationRepository interface {
	// Create inserts the medication and appends its id to the patient's
	// current_medications list in one transaction.
	Create(ctx context.Context, medication *model.Medication) error
	Get(ctx context.Context, id uuid.UUID) (*model.Medication, error)
	Update(ctx context.Context, medication *model.Medication) error
	// Delete removes the medication and its id from the patient's
	// current_medications list in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Medication, error)
}

type HealthRecordRepository interface {
	Create(ctx context.Context, record *model.HealthRecord) error
	Get(ctx context.Context, id uuid.UUID) (*model.HealthRecord, error)
	Update(ctx context.Context, record *model.HealthRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByPatient returns records ordered by recorded_at descending.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.HealthRecord, error)
	ListByPatientAndType(ctx context.Context, patientID uuid.UUID, recordType model.HealthRecordType) ([]*model.HealthRecord, error)
	LatestByPatientAndType(ctx context.Context, patientID uuid.UUID, recordType model.HealthRecordType) (*model.HealthRecord, error)
}

type SnapshotRepository interface {
	// Append inserts a snapshot and refreshes the patient's denormalized
	// latest readings in one transaction.
	Append(ctx context.Context, snapshot *model.PredictionSnapshot) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PredictionSnapshot, error)
}

type TokenRepository interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

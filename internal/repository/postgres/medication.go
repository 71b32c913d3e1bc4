package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitaltrack/vitaltrack-api/internal/model"
	"github.com/vitaltrack/vitaltrack-api/internal/repository"
	"github.com/vitaltrack/vitaltrack-api/pkg/metrics"
)

type medicationRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

func NewMedicationRepository(db *sqlx.DB, m *metrics.Metrics) repository.MedicationRepository {
	return &medicationRepository{db: db, metrics: m}
}

// Create inserts the medication and appends its id to the owning patient's
// current_medications list. Both writes commit or neither does.
func (r *medicationRepository) Create(ctx context.Context, medication *model.Medication) (err error) {
	defer func(start time.Time) { observe(r.metrics, "medication_create", start, err) }(time.Now())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	medication.CreatedAt = time.Now()
	medication.UpdatedAt = medication.CreatedAt

	insert := `
		INSERT INTO medications (
			id, patient_id, name, dosage, frequency, instructions,
			start_date, end_date, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.ExecContext(ctx, insert,
		medication.ID,
		medication.PatientID,
		medication.Name,
		medication.Dosage,
		medication.Frequency,
		medication.Instructions,
		medication.StartDate,
		medication.EndDate,
		medication.Status,
		medication.CreatedAt,
		medication.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}

	appendID := `
		UPDATE patients
		SET current_medications = array_append(current_medications, $1),
			updated_at = $2
		WHERE id = $3 AND NOT ($1 = ANY(current_medications))
	`
	if _, err := tx.ExecContext(ctx, appendID, medication.ID.String(), time.Now(), medication.PatientID); err != nil {
		return fmt.Errorf("failed to append medication to patient: %w", err)
	}

	return tx.Commit()
}

func (r *medicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	query := `SELECT * FROM medications WHERE id = $1`
	var medication model.Medication
	if err := r.db.GetContext(ctx, &medication, query, id); err != nil {
		return nil, translate(err, "medication")
	}
	return &medication, nil
}

func (r *medicationRepository) Update(ctx context.Context, medication *model.Medication) error {
	query := `
		UPDATE medications
		SET name = $1, dosage = $2, frequency = $3, instructions = $4,
			start_date = $5, end_date = $6, status = $7, updated_at = $8
		WHERE id = $9
	`
	medication.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		medication.Name,
		medication.Dosage,
		medication.Frequency,
		medication.Instructions,
		medication.StartDate,
		medication.EndDate,
		medication.Status,
		medication.UpdatedAt,
		medication.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}
	return requireRowAffected(res, "medication")
}

// Delete removes the medication and its back-reference from the owning
// patient's current_medications list in one transaction.
func (r *medicationRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func(start time.Time) { observe(r.metrics, "medication_delete", start, err) }(time.Now())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var patientID uuid.UUID
	if err := tx.GetContext(ctx, &patientID, `DELETE FROM medications WHERE id = $1 RETURNING patient_id`, id); err != nil {
		return translate(err, "medication")
	}

	removeID := `
		UPDATE patients
		SET current_medications = array_remove(current_medications, $1),
			updated_at = $2
		WHERE id = $3
	`
	if _, err := tx.ExecContext(ctx, removeID, id.String(), time.Now(), patientID); err != nil {
		return fmt.Errorf("failed to remove medication from patient: %w", err)
	}

	return tx.Commit()
}

func (r *medicationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Medication, error) {
	query := `SELECT * FROM medications WHERE patient_id = $1 ORDER BY start_date DESC, created_at DESC`
	medications := []*model.Medication{}
	if err := r.db.SelectContext(ctx, &medications, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}

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

type healthRecordRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

func NewHealthRecordRepository(db *sqlx.DB, m *metrics.Metrics) repository.HealthRecordRepository {
	return &healthRecordRepository{db: db, metrics: m}
}

// Create inserts the record and, for glucose readings, refreshes the
// patient's denormalized last_glucose in the same transaction.
func (r *healthRecordRepository) Create(ctx context.Context, record *model.HealthRecord) (err error) {
	defer func(start time.Time) { observe(r.metrics, "record_create", start, err) }(time.Now())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO health_records (
			id, patient_id, type, systolic, diastolic, value, unit, notes,
			recorded_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	_, err = tx.ExecContext(ctx, insert,
		record.ID,
		record.PatientID,
		record.Type,
		record.Systolic,
		record.Diastolic,
		record.Value,
		record.Unit,
		record.Notes,
		record.RecordedAt,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create health record: %w", err)
	}

	if record.Type == model.RecordGlucose && record.Value != nil {
		refresh := `UPDATE patients SET last_glucose = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, refresh, record.Value, time.Now(), record.PatientID); err != nil {
			return fmt.Errorf("failed to refresh latest glucose: %w", err)
		}
	}

	return tx.Commit()
}

func (r *healthRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.HealthRecord, error) {
	query := `SELECT * FROM health_records WHERE id = $1`
	var record model.HealthRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, translate(err, "health record")
	}
	return &record, nil
}

func (r *healthRecordRepository) Update(ctx context.Context, record *model.HealthRecord) error {
	query := `
		UPDATE health_records
		SET type = $1, systolic = $2, diastolic = $3, value = $4, unit = $5,
			notes = $6, recorded_at = $7, updated_at = $8
		WHERE id = $9
	`
	record.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		record.Type,
		record.Systolic,
		record.Diastolic,
		record.Value,
		record.Unit,
		record.Notes,
		record.RecordedAt,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update health record: %w", err)
	}
	return requireRowAffected(res, "health record")
}

func (r *healthRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM health_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete health record: %w", err)
	}
	return requireRowAffected(res, "health record")
}

func (r *healthRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.HealthRecord, error) {
	query := `SELECT * FROM health_records WHERE patient_id = $1 ORDER BY recorded_at DESC`
	records := []*model.HealthRecord{}
	if err := r.db.SelectContext(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list health records: %w", err)
	}
	return records, nil
}

func (r *healthRecordRepository) ListByPatientAndType(ctx context.Context, patientID uuid.UUID, recordType model.HealthRecordType) ([]*model.HealthRecord, error) {
	query := `SELECT * FROM health_records WHERE patient_id = $1 AND type = $2 ORDER BY recorded_at DESC`
	records := []*model.HealthRecord{}
	if err := r.db.SelectContext(ctx, &records, query, patientID, recordType); err != nil {
		return nil, fmt.Errorf("failed to list health records: %w", err)
	}
	return records, nil
}

func (r *healthRecordRepository) LatestByPatientAndType(ctx context.Context, patientID uuid.UUID, recordType model.HealthRecordType) (*model.HealthRecord, error) {
	query := `
		SELECT * FROM health_records
		WHERE patient_id = $1 AND type = $2
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	var record model.HealthRecord
	if err := r.db.GetContext(ctx, &record, query, patientID, recordType); err != nil {
		return nil, translate(err, "health record")
	}
	return &record, nil
}

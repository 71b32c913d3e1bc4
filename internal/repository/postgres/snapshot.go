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

type snapshotRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

func NewSnapshotRepository(db *sqlx.DB, m *metrics.Metrics) repository.SnapshotRepository {
	return &snapshotRepository{db: db, metrics: m}
}

// Append inserts the snapshot and refreshes the patient's denormalized
// latest blood-pressure reading in the same transaction. Snapshots are
// append-only; there is no update path.
func (r *snapshotRepository) Append(ctx context.Context, snapshot *model.PredictionSnapshot) (err error) {
	defer func(start time.Time) { observe(r.metrics, "snapshot_append", start, err) }(time.Now())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snapshot.CreatedAt = time.Now()

	insert := `
		INSERT INTO prediction_snapshots (
			id, patient_id, age, gender, height, weight, ap_hi, ap_lo,
			cholesterol, gluc, smoke, alco, active, bmi,
			prediction_class, low_risk_proba, high_risk_proba, alert_triggered,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = tx.ExecContext(ctx, insert,
		snapshot.ID,
		snapshot.PatientID,
		snapshot.Age,
		snapshot.Gender,
		snapshot.Height,
		snapshot.Weight,
		snapshot.ApHi,
		snapshot.ApLo,
		snapshot.Cholesterol,
		snapshot.Gluc,
		snapshot.Smoke,
		snapshot.Alco,
		snapshot.Active,
		snapshot.BMI,
		snapshot.PredictionClass,
		snapshot.LowRiskProba,
		snapshot.HighRiskProba,
		snapshot.AlertTriggered,
		snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}

	refresh := `
		UPDATE patients
		SET last_systolic = $1, last_diastolic = $2, updated_at = $3
		WHERE id = $4
	`
	if _, err := tx.ExecContext(ctx, refresh, snapshot.ApHi, snapshot.ApLo, time.Now(), snapshot.PatientID); err != nil {
		return fmt.Errorf("failed to refresh latest readings: %w", err)
	}

	return tx.Commit()
}

func (r *snapshotRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PredictionSnapshot, error) {
	query := `SELECT * FROM prediction_snapshots WHERE patient_id = $1 ORDER BY created_at ASC`
	snapshots := []*model.PredictionSnapshot{}
	if err := r.db.SelectContext(ctx, &snapshots, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}

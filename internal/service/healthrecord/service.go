package healthrecord

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/vitaltrack-api/internal/email"
	"github.com/vitaltrack/vitaltrack-api/internal/model"
	"github.com/vitaltrack/vitaltrack-api/internal/prediction"
	"github.com/vitaltrack/vitaltrack-api/internal/repository"
	"github.com/vitaltrack/vitaltrack-api/internal/service/access"
	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
	"github.com/vitaltrack/vitaltrack-api/pkg/metrics"
	"github.com/vitaltrack/vitaltrack-api/pkg/validator"
)

func invalidTypeError(t model.HealthRecordType) error {
	return apperrors.NewValidation([]apperrors.FieldError{{
		Field:   "type",
		Message: fmt.Sprintf("unknown record type %q", t),
	}})
}

type Service struct {
	repo         repository.HealthRecordRepository
	snapshotRepo repository.SnapshotRepository
	patientRepo  repository.PatientRepository
	userRepo     repository.UserRepository
	predictor    prediction.Predictor
	emailSvc     email.Service
	validate     *validator.Validator
	metrics      *metrics.Metrics
}

func NewService(
	repo repository.HealthRecordRepository,
	snapshotRepo repository.SnapshotRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	predictor prediction.Predictor,
	emailSvc email.Service,
	validate *validator.Validator,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:         repo,
		snapshotRepo: snapshotRepo,
		patientRepo:  patientRepo,
		userRepo:     userRepo,
		predictor:    predictor,
		emailSvc:     emailSvc,
		validate:     validate,
		metrics:      m,
	}
}

func (s *Service) Create(ctx context.Context, principal *model.Principal, patientID uuid.UUID, input *model.HealthRecordInput) (*model.HealthRecord, error) {
	if _, err := access.Patient(ctx, s.patientRepo, principal, patientID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	record := &model.HealthRecord{
		Base: model.Base{
			ID: uuid.New(),
		},
		PatientID:  patientID,
		Type:       input.Type,
		Systolic:   input.Systolic,
		Diastolic:  input.Diastolic,
		Value:      input.Value,
		Unit:       input.Unit,
		Notes:      input.Notes,
		RecordedAt: input.RecordedAt,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListForPatient returns the patient's records, most recent observation
// first. Latest-reading logic elsewhere depends on this ordering.
func (s *Service) ListForPatient(ctx context.Context, principal *model.Principal, patientID uuid.UUID) ([]*model.HealthRecord, error) {
	if _, err := access.Patient(ctx, s.patientRepo, principal, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListForPatientByType(ctx context.Context, principal *model.Principal, patientID uuid.UUID, recordType model.HealthRecordType) ([]*model.HealthRecord, error) {
	if !model.IsValidRecordType(recordType) {
		return nil, invalidTypeError(recordType)
	}
	if _, err := access.Patient(ctx, s.patientRepo, principal, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatientAndType(ctx, patientID, recordType)
}

// Get resolves the record, then its owning patient for the ownership check;
// a record never carries the requester's identity directly.
func (s *Service) Get(ctx context.Context, principal *model.Principal, id uuid.UUID) (*model.HealthRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := access.Patient(ctx, s.patientRepo, principal, record.PatientID); err != nil {
		return nil, err
	}
	return record, nil
}

// Update merges the patch into the stored record and re-validates the full
// result, so type-conditioned field sets hold for the final state.
func (s *Service) Update(ctx context.Context, principal *model.Principal, id uuid.UUID, req *model.UpdateHealthRecordRequest) (*model.HealthRecord, error) {
	record, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		record.Type = *req.Type
	}
	if req.Systolic != nil {
		record.Systolic = req.Systolic
	}
	if req.Diastolic != nil {
		record.Diastolic = req.Diastolic
	}
	if req.Value != nil {
		record.Value = req.Value
	}
	if req.Unit != nil {
		record.Unit = req.Unit
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}
	if req.RecordedAt != nil {
		record.RecordedAt = *req.RecordedAt
	}

	merged := &model.HealthRecordInput{
		Type:       record.Type,
		Systolic:   record.Systolic,
		Diastolic:  record.Diastolic,
		Value:      record.Value,
		Unit:       record.Unit,
		Notes:      record.Notes,
		RecordedAt: record.RecordedAt,
	}
	if err := s.validate.Struct(merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete is a hard delete, irreversible.
func (s *Service) Delete(ctx context.Context, principal *model.Principal, id uuid.UUID) error {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// RecordVitals validates the feature vector, invokes the prediction service
// and appends one snapshot with the computed BMI. If the prediction fails,
// nothing is persisted.
func (s *Service) RecordVitals(ctx context.Context, principal *model.Principal, patientID uuid.UUID, req *model.RecordVitalsRequest) (*model.PredictionSnapshot, *model.Prediction, error) {
	patient, err := access.Patient(ctx, s.patientRepo, principal, patientID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.validate.Struct(&req.FeatureVector); err != nil {
		return nil, nil, err
	}

	result, err := s.predictor.Predict(ctx, &req.FeatureVector)
	if err != nil {
		return nil, nil, err
	}

	snapshot := &model.PredictionSnapshot{
		ID:              uuid.New(),
		PatientID:       patientID,
		Age:             req.Age,
		Gender:          req.Gender,
		Height:          req.Height,
		Weight:          req.Weight,
		ApHi:            req.ApHi,
		ApLo:            req.ApLo,
		Cholesterol:     req.Cholesterol,
		Gluc:            req.Gluc,
		Smoke:           req.Smoke,
		Alco:            req.Alco,
		Active:          req.Active,
		BMI:             req.BMI(),
		PredictionClass: result.Class,
		LowRiskProba:    result.Probabilities.LowRisk,
		HighRiskProba:   result.Probabilities.HighRisk,
		AlertTriggered:  result.AlertTriggered,
	}

	if err := s.snapshotRepo.Append(ctx, snapshot); err != nil {
		return nil, nil, err
	}

	if result.AlertTriggered {
		s.notifyAlert(ctx, patient, result)
	}

	return snapshot, result, nil
}

// PredictRisk invokes the prediction service using the patient's latest
// stored blood-pressure reading plus body-supplied features. Nothing is
// persisted.
func (s *Service) PredictRisk(ctx context.Context, principal *model.Principal, patientID uuid.UUID, req *model.PredictRiskRequest) (*model.Prediction, error) {
	if _, err := access.Patient(ctx, s.patientRepo, principal, patientID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	latest, err := s.repo.LatestByPatientAndType(ctx, patientID, model.RecordBloodPressure)
	if err != nil {
		return nil, err
	}

	features := &model.FeatureVector{
		Age:         req.Age,
		Gender:      req.Gender,
		Height:      req.Height,
		Weight:      req.Weight,
		ApHi:        *latest.Systolic,
		ApLo:        *latest.Diastolic,
		Cholesterol: req.Cholesterol,
		Gluc:        req.Gluc,
		Smoke:       req.Smoke,
		Alco:        req.Alco,
		Active:      req.Active,
	}

	return s.predictor.Predict(ctx, features)
}

// ListSnapshots returns the patient's prediction history in insertion order.
func (s *Service) ListSnapshots(ctx context.Context, principal *model.Principal, patientID uuid.UUID) ([]*model.PredictionSnapshot, error) {
	if _, err := access.Patient(ctx, s.patientRepo, principal, patientID); err != nil {
		return nil, err
	}
	return s.snapshotRepo.ListByPatient(ctx, patientID)
}

// notifyAlert emails the owning user; best effort, never fails the request.
func (s *Service) notifyAlert(ctx context.Context, patient *model.Patient, result *model.Prediction) {
	if s.metrics != nil {
		s.metrics.AlertsTriggered.Inc()
	}

	owner, err := s.userRepo.Get(ctx, patient.UserID)
	if err != nil {
		log.Warn().Err(err).Str("patient_id", patient.ID.String()).Msg("failed to resolve owner for alert email")
		return
	}
	if err := s.emailSvc.SendRiskAlert(owner.Email, patient.Name, result.Probabilities.HighRisk); err != nil {
		log.Warn().Err(err).Str("email", owner.Email).Msg("failed to send risk alert email")
	}
}

package medication

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitaltrack/vitaltrack-api/internal/model"
	"github.com/vitaltrack/vitaltrack-api/internal/repository"
	"github.com/vitaltrack/vitaltrack-api/internal/service/access"
	"github.com/vitaltrack/vitaltrack-api/pkg/validator"
)

type Service struct {
	repo        repository.MedicationRepository
	patientRepo repository.PatientRepository
	validate    *validator.Validator
}

func NewService(repo repository.MedicationRepository, patientRepo repository.PatientRepository,
	validate *validator.Validator) *Service {
	return &Service{repo: repo, patientRepo: patientRepo, validate: validate}
}

func (s *Service) Create(ctx context.Context, principal *model.Principal, patientID uuid.UUID, req *model.CreateMedicationRequest) (*model.Medication, error) {
	// Ownership first; a caller without access learns nothing about the
	// payload's validity.
	if _, err := access.Patient(ctx, s.patientRepo, principal, patientID); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.MedicationStatusActive
	}

	medication := &model.Medication{
		Base: model.Base{
			ID: uuid.New(),
		},
		PatientID:    patientID,
		Name:         req.Name,
		Dosage:       req.Dosage,
		Frequency:    req.Frequency,
		Instructions: req.Instructions,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       status,
	}

	if err := s.repo.Create(ctx, medication); err != nil {
		return nil, err
	}
	return medication, nil
}

func (s *Service) Get(ctx context.Context, principal *model.Principal, id uuid.UUID) (*model.Medication, error) {
	medication, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Authorization is transitive via the owning patient.
	if _, err := access.Patient(ctx, s.patientRepo, principal, medication.PatientID); err != nil {
		return nil, err
	}
	return medication, nil
}

func (s *Service) ListForPatient(ctx context.Context, principal *model.Principal, patientID uuid.UUID) ([]*model.Medication, error) {
	if _, err := access.Patient(ctx, s.patientRepo, principal, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) Update(ctx context.Context, principal *model.Principal, id uuid.UUID, req *model.UpdateMedicationRequest) (*model.Medication, error) {
	medication, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	if req.Name != nil {
		medication.Name = *req.Name
	}
	if req.Dosage != nil {
		medication.Dosage = *req.Dosage
	}
	if req.Frequency != nil {
		medication.Frequency = *req.Frequency
	}
	if req.Instructions != nil {
		medication.Instructions = req.Instructions
	}
	if req.StartDate != nil {
		medication.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		medication.EndDate = req.EndDate
	}
	if req.Status != nil {
		medication.Status = *req.Status
	}

	// Re-validate the merged record; the date ordering rule must hold for
	// the final state, not just the patch.
	merged := &model.CreateMedicationRequest{
		Name:         medication.Name,
		Dosage:       medication.Dosage,
		Frequency:    medication.Frequency,
		Instructions: medication.Instructions,
		StartDate:    medication.StartDate,
		EndDate:      medication.EndDate,
		Status:       medication.Status,
	}
	if err := s.validate.Struct(merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, medication); err != nil {
		return nil, err
	}
	return medication, nil
}

func (s *Service) Delete(ctx context.Context, principal *model.Principal, id uuid.UUID) error {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

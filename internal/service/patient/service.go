package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitaltrack/vitaltrack-api/internal/model"
	"github.com/vitaltrack/vitaltrack-api/internal/repository"
	"github.com/vitaltrack/vitaltrack-api/internal/service/access"
	"github.com/vitaltrack/vitaltrack-api/pkg/validator"
)

type Service struct {
	repo     repository.PatientRepository
	validate *validator.Validator
}

func NewService(repo repository.PatientRepository, validate *validator.Validator) *Service {
	return &Service{repo: repo, validate: validate}
}

func (s *Service) Create(ctx context.Context, principal *model.Principal, req *model.CreatePatientRequest) (*model.Patient, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	patient := &model.Patient{
		Base: model.Base{
			ID: uuid.New(),
		},
		UserID:             principal.ID,
		Name:               req.Name,
		DateOfBirth:        req.DateOfBirth,
		Gender:             req.Gender,
		Diagnoses:          req.Diagnoses,
		Allergies:          req.Allergies,
		MedicalHistory:     req.MedicalHistory,
		CurrentMedications: []string{},
	}
	if patient.Diagnoses == nil {
		patient.Diagnoses = []string{}
	}
	if patient.Allergies == nil {
		patient.Allergies = []string{}
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, principal *model.Principal, id uuid.UUID) (*model.Patient, error) {
	return access.Patient(ctx, s.repo, principal, id)
}

// List returns the caller's patients; admins see every profile.
func (s *Service) List(ctx context.Context, principal *model.Principal) ([]*model.Patient, error) {
	if principal.IsAdmin() {
		return s.repo.List(ctx)
	}
	return s.repo.ListByUser(ctx, principal.ID)
}

func (s *Service) Update(ctx context.Context, principal *model.Principal, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := access.Patient(ctx, s.repo, principal, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Diagnoses != nil {
		patient.Diagnoses = req.Diagnoses
	}
	if req.Allergies != nil {
		patient.Allergies = req.Allergies
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = *req.MedicalHistory
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, principal *model.Principal, id uuid.UUID) error {
	if _, err := access.Patient(ctx, s.repo, principal, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Package access holds the ownership check shared by every patient-scoped
// service: a principal may only act on patients it owns, unless it holds the
// admin role.
package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitaltrack/vitaltrack-api/internal/model"
	"github.com/vitaltrack/vitaltrack-api/internal/repository"
	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
)

// Patient resolves the patient and enforces ownership. Returns NotFound when
// the patient does not exist and Forbidden on an ownership mismatch.
func Patient(ctx context.Context, repo repository.PatientRepository, principal *model.Principal, patientID uuid.UUID) (*model.Patient, error) {
	patient, err := repo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.UserID != principal.ID && !principal.IsAdmin() {
		return nil, apperrors.NewForbidden("you do not have access to this patient")
	}
	return patient, nil
}

package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.TenantID == uuid.Nil {
		return fmt.Errorf("tenant_id is required")
	}
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.Status != StatusScheduled {
		return fmt.Errorf("new appointments must start as %s", StatusScheduled)
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// UpdateAppointment updates fields and validates any status change against
// the transition table.
func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) error {
	existing, err := s.repo.GetByID(ctx, a.TenantID, a.ID)
	if err != nil {
		return fmt.Errorf("appointment not found: %w", err)
	}
	if a.Status == "" {
		a.Status = existing.Status
	}
	if a.Status != existing.Status && !CanTransition(existing.Status, a.Status) {
		return fmt.Errorf("invalid status transition: %s -> %s", existing.Status, a.Status)
	}
	if a.PatientID == uuid.Nil {
		a.PatientID = existing.PatientID
	}
	if a.Date.IsZero() {
		a.Date = existing.Date
	}
	return s.repo.Update(ctx, a)
}

// UpdateStatus applies a bare status transition.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, to Status) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("appointment not found: %w", err)
	}
	if !CanTransition(a.Status, to) {
		return nil, fmt.Errorf("invalid status transition: %s -> %s", a.Status, to)
	}
	a.Status = to
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, id)
}

func (s *Service) ListAppointments(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, tenantID, limit, offset)
}

func (s *Service) ListAppointmentsByPatient(ctx context.Context, tenantID, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, tenantID, patientID, limit, offset)
}

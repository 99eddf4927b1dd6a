package acte

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/pkg/money"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) validate(ctx context.Context, a *Acte) error {
	if a.TenantID == uuid.Nil {
		return fmt.Errorf("tenant_id is required")
	}
	if a.Code == "" {
		return fmt.Errorf("code is required")
	}
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if a.Amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	if a.Currency == "" {
		a.Currency = money.Default
	}
	if !money.Valid(a.Currency) {
		return fmt.Errorf("unsupported currency: %s", a.Currency)
	}
	taken, err := s.repo.CodeExists(ctx, a.TenantID, a.Code, a.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("code already in use: %s", a.Code)
	}
	if a.ParentID != nil {
		if _, err := s.repo.GetByID(ctx, a.TenantID, *a.ParentID); err != nil {
			return fmt.Errorf("parent acte not found: %w", err)
		}
	}
	return nil
}

func (s *Service) CreateActe(ctx context.Context, a *Acte) error {
	if err := s.validate(ctx, a); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	s.rollup(ctx, a)
	return nil
}

func (s *Service) UpdateActe(ctx context.Context, a *Acte) error {
	existing, err := s.repo.GetByID(ctx, a.TenantID, a.ID)
	if err != nil {
		return fmt.Errorf("acte not found: %w", err)
	}
	if err := s.validate(ctx, a); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}
	s.rollup(ctx, a)
	// A reparented acte also refreshes its former parent.
	if existing.ParentID != nil && (a.ParentID == nil || *existing.ParentID != *a.ParentID) {
		s.rollupParent(ctx, a.TenantID, *existing.ParentID)
	}
	return nil
}

// rollup propagates amounts one level after a save: the acte's own amount is
// refreshed from its children when it has any, and its immediate parent is
// refreshed the same way. Deeper ancestors are not touched. Failures are
// logged and never surface to the caller.
func (s *Service) rollup(ctx context.Context, a *Acte) {
	sum, count, err := s.repo.SumChildren(ctx, a.TenantID, a.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("acte_id", a.ID.String()).Msg("pricing rollup: child sum failed")
	} else if count > 0 && sum != a.Amount {
		if err := s.repo.UpdateAmount(ctx, a.TenantID, a.ID, sum); err != nil {
			s.log.Warn().Err(err).Str("acte_id", a.ID.String()).Msg("pricing rollup: amount update failed")
		} else {
			a.Amount = sum
		}
	}

	if a.ParentID != nil {
		s.rollupParent(ctx, a.TenantID, *a.ParentID)
	}
}

func (s *Service) rollupParent(ctx context.Context, tenantID, parentID uuid.UUID) {
	sum, count, err := s.repo.SumChildren(ctx, tenantID, parentID)
	if err != nil {
		s.log.Warn().Err(err).Str("acte_id", parentID.String()).Msg("pricing rollup: parent sum failed")
		return
	}
	if count == 0 {
		return
	}
	if err := s.repo.UpdateAmount(ctx, tenantID, parentID, sum); err != nil {
		s.log.Warn().Err(err).Str("acte_id", parentID.String()).Msg("pricing rollup: parent update failed")
	}
}

func (s *Service) GetActe(ctx context.Context, tenantID, id uuid.UUID) (*Acte, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// DeleteActe removes an acte and refreshes its former parent. Children and
// billing items referencing it keep existing with a nulled reference.
func (s *Service) DeleteActe(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("acte not found: %w", err)
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	if existing.ParentID != nil {
		s.rollupParent(ctx, tenantID, *existing.ParentID)
	}
	return nil
}

func (s *Service) ListActes(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Acte, int, error) {
	return s.repo.List(ctx, tenantID, limit, offset)
}

func (s *Service) ListChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]*Acte, error) {
	return s.repo.ListChildren(ctx, tenantID, parentID)
}

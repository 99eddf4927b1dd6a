package staff

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/account"
	"github.com/hms/hms/internal/domain/tenant"
	"github.com/hms/hms/internal/platform/auth"
)

// maxUsernameProbes bounds the numeric-suffix search for a free username.
const maxUsernameProbes = 100

type Service struct {
	repo     Repository
	accounts *account.Service
	tenants  tenant.Repository
}

func NewService(repo Repository, accounts *account.Service, tenants tenant.Repository) *Service {
	return &Service{repo: repo, accounts: accounts, tenants: tenants}
}

func (s *Service) CreateStaff(ctx context.Context, st *Staff) error {
	if st.TenantID == uuid.Nil {
		return fmt.Errorf("tenant_id is required")
	}
	if st.FirstName == "" || st.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	role, ok := auth.ParseRole(string(st.Role))
	if !ok {
		return fmt.Errorf("invalid role: %s", st.Role)
	}
	st.Role = role
	return s.repo.Create(ctx, st)
}

func (s *Service) GetStaff(ctx context.Context, tenantID, id uuid.UUID) (*Staff, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) UpdateStaff(ctx context.Context, st *Staff) error {
	if st.FirstName == "" || st.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	role, ok := auth.ParseRole(string(st.Role))
	if !ok {
		return fmt.Errorf("invalid role: %s", st.Role)
	}
	st.Role = role

	existing, err := s.repo.GetByID(ctx, st.TenantID, st.ID)
	if err != nil {
		return fmt.Errorf("staff not found: %w", err)
	}
	if st.AccountID == nil {
		st.AccountID = existing.AccountID
	}
	return s.repo.Update(ctx, st)
}

func (s *Service) DeleteStaff(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, id)
}

func (s *Service) ListStaff(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Staff, int, error) {
	return s.repo.List(ctx, tenantID, limit, offset)
}

// CreateUser links a new login identity to an existing staff record. When no
// username is supplied one is derived from the staff email's local part, or
// `staff_<id8>` without an email, then uniquified with a numeric suffix.
func (s *Service) CreateUser(ctx context.Context, tenantID, staffID uuid.UUID, username, password string) (*Staff, error) {
	st, err := s.repo.GetByID(ctx, tenantID, staffID)
	if err != nil {
		return nil, fmt.Errorf("staff not found: %w", err)
	}
	if st.AccountID != nil {
		return nil, fmt.Errorf("staff already has a linked account")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username, err = s.deriveUsername(ctx, st)
		if err != nil {
			return nil, err
		}
	}

	email := ""
	if st.Email != nil {
		email = *st.Email
	}
	a, err := s.accounts.CreateAccount(ctx, username, email, password, false)
	if err != nil {
		return nil, err
	}

	st.AccountID = &a.ID
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) deriveUsername(ctx context.Context, st *Staff) (string, error) {
	base := ""
	if st.Email != nil {
		if at := strings.Index(*st.Email, "@"); at > 0 {
			base = strings.ToLower((*st.Email)[:at])
		}
	}
	if base == "" {
		base = "staff_" + strings.ReplaceAll(st.ID.String(), "-", "")[:8]
	}

	candidate := base
	for i := 1; i <= maxUsernameProbes; i++ {
		free, err := s.accounts.UsernameAvailable(ctx, candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", fmt.Errorf("could not derive a free username from %q", base)
}

// RoleByAccount backs the authorizer's role resolution.
func (s *Service) RoleByAccount(ctx context.Context, accountID uuid.UUID) (auth.Role, bool) {
	st, err := s.repo.GetByAccount(ctx, accountID)
	if err != nil || st == nil || !st.Active {
		return "", false
	}
	return st.Role, true
}

// TenantByAccount backs the tenant resolver's staff layer.
func (s *Service) TenantByAccount(ctx context.Context, accountID uuid.UUID) (*tenant.Tenant, error) {
	st, err := s.repo.GetByAccount(ctx, accountID)
	if err != nil || st == nil {
		return nil, err
	}
	return s.tenants.GetByID(ctx, st.TenantID)
}

// SummaryByAccount fills the staff slice of the /me profile.
func (s *Service) SummaryByAccount(ctx context.Context, accountID uuid.UUID) (*account.StaffSummary, error) {
	st, err := s.repo.GetByAccount(ctx, accountID)
	if err != nil || st == nil {
		return nil, err
	}
	summary := &account.StaffSummary{
		ID:       st.ID,
		Role:     string(st.Role),
		TenantID: &st.TenantID,
	}
	if t, err := s.tenants.GetByID(ctx, st.TenantID); err == nil && t != nil {
		summary.TenantName = t.Name
		summary.TenantSlug = t.Slug
	}
	return summary, nil
}

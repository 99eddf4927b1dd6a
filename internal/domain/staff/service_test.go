package staff

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/account"
	"github.com/hms/hms/internal/domain/tenant"
	"github.com/hms/hms/internal/platform/auth"
)

// -- Mock Repositories --

type mockRepo struct {
	staff map[uuid.UUID]*Staff
}

func newMockRepo() *mockRepo {
	return &mockRepo{staff: make(map[uuid.UUID]*Staff)}
}

func (m *mockRepo) Create(_ context.Context, s *Staff) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	m.staff[s.ID] = s
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*Staff, error) {
	s, ok := m.staff[id]
	if !ok || s.TenantID != tenantID {
		return nil, fmt.Errorf("not found")
	}
	return s, nil
}

func (m *mockRepo) GetByAccount(_ context.Context, accountID uuid.UUID) (*Staff, error) {
	for _, s := range m.staff {
		if s.AccountID != nil && *s.AccountID == accountID {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) Update(_ context.Context, s *Staff) error {
	m.staff[s.ID] = s
	return nil
}

func (m *mockRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	if s, ok := m.staff[id]; ok && s.TenantID == tenantID {
		delete(m.staff, id)
	}
	return nil
}

func (m *mockRepo) List(_ context.Context, tenantID uuid.UUID, limit, offset int) ([]*Staff, int, error) {
	var result []*Staff
	for _, s := range m.staff {
		if s.TenantID == tenantID {
			result = append(result, s)
		}
	}
	return result, len(result), nil
}

type mockAccountRepo struct {
	accounts map[uuid.UUID]*account.Account
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[uuid.UUID]*account.Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, a *account.Account) error {
	a.ID = uuid.New()
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockAccountRepo) GetByUsername(_ context.Context, username string) (*account.Account, error) {
	for _, a := range m.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (*account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAccountRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	a, _ := m.GetByUsername(context.Background(), username)
	return a != nil, nil
}

func (m *mockAccountRepo) Update(_ context.Context, a *account.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.accounts, id)
	return nil
}

type mockTenantRepo struct {
	tenants map[uuid.UUID]*tenant.Tenant
}

func newMockTenantRepo() *mockTenantRepo {
	return &mockTenantRepo{tenants: make(map[uuid.UUID]*tenant.Tenant)}
}

func (m *mockTenantRepo) Create(_ context.Context, t *tenant.Tenant) error {
	t.ID = uuid.New()
	m.tenants[t.ID] = t
	return nil
}

func (m *mockTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return t, nil
}

func (m *mockTenantRepo) GetBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	for _, t := range m.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockTenantRepo) Update(_ context.Context, t *tenant.Tenant) error {
	m.tenants[t.ID] = t
	return nil
}

func (m *mockTenantRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.tenants, id)
	return nil
}

func (m *mockTenantRepo) List(_ context.Context, limit, offset int) ([]*tenant.Tenant, int, error) {
	var result []*tenant.Tenant
	for _, t := range m.tenants {
		result = append(result, t)
	}
	return result, len(result), nil
}

func newTestService() (*Service, *mockRepo, *mockAccountRepo, *mockTenantRepo) {
	repo := newMockRepo()
	accountRepo := newMockAccountRepo()
	tenantRepo := newMockTenantRepo()
	accounts := account.NewService(accountRepo, auth.NewTokenService("test-secret", time.Hour))
	return NewService(repo, accounts, tenantRepo), repo, accountRepo, tenantRepo
}

// -- Tests --

func TestCreateStaff_NormalizesRole(t *testing.T) {
	svc, _, _, _ := newTestService()

	st := &Staff{TenantID: uuid.New(), FirstName: "Grace", LastName: "Ilunga", Role: "DOCTOR"}
	if err := svc.CreateStaff(context.Background(), st); err != nil {
		t.Fatalf("create: %v", err)
	}
	if st.Role != auth.RoleDoctor {
		t.Errorf("expected normalized role doctor, got %q", st.Role)
	}
}

func TestCreateStaff_RejectsUnknownRole(t *testing.T) {
	svc, _, _, _ := newTestService()
	st := &Staff{TenantID: uuid.New(), FirstName: "A", LastName: "B", Role: "janitor"}
	if err := svc.CreateStaff(context.Background(), st); err == nil {
		t.Error("expected unknown role to be rejected")
	}
}

func TestCreateUser_DerivesUsernameFromEmail(t *testing.T) {
	svc, _, accountRepo, _ := newTestService()
	tenantID := uuid.New()
	email := "Grace.Ilunga@clinic.cd"

	st := &Staff{TenantID: tenantID, FirstName: "Grace", LastName: "Ilunga", Role: auth.RoleNurse, Email: &email}
	if err := svc.CreateStaff(context.Background(), st); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	updated, err := svc.CreateUser(context.Background(), tenantID, st.ID, "", "s3cret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if updated.AccountID == nil {
		t.Fatal("expected account to be linked")
	}
	a, err := accountRepo.GetByID(context.Background(), *updated.AccountID)
	if err != nil {
		t.Fatalf("lookup account: %v", err)
	}
	if a.Username != "grace.ilunga" {
		t.Errorf("expected username derived from email local part, got %q", a.Username)
	}
}

func TestCreateUser_UniquifiesDerivedUsername(t *testing.T) {
	svc, _, accountRepo, _ := newTestService()
	tenantID := uuid.New()
	email := "grace@clinic.cd"

	// Occupy the base candidate.
	accountRepo.accounts[uuid.New()] = &account.Account{ID: uuid.New(), Username: "grace"}

	st := &Staff{TenantID: tenantID, FirstName: "Grace", LastName: "Ilunga", Role: auth.RoleNurse, Email: &email}
	if err := svc.CreateStaff(context.Background(), st); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	updated, err := svc.CreateUser(context.Background(), tenantID, st.ID, "", "s3cret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	a, _ := accountRepo.GetByID(context.Background(), *updated.AccountID)
	if a.Username != "grace1" {
		t.Errorf("expected numeric-suffix username grace1, got %q", a.Username)
	}
}

func TestCreateUser_FallbackUsernameWithoutEmail(t *testing.T) {
	svc, _, accountRepo, _ := newTestService()
	tenantID := uuid.New()

	st := &Staff{TenantID: tenantID, FirstName: "A", LastName: "B", Role: auth.RoleReception}
	if err := svc.CreateStaff(context.Background(), st); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	updated, err := svc.CreateUser(context.Background(), tenantID, st.ID, "", "s3cret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	a, _ := accountRepo.GetByID(context.Background(), *updated.AccountID)
	if len(a.Username) != len("staff_")+8 || a.Username[:6] != "staff_" {
		t.Errorf("expected staff_<id8> fallback username, got %q", a.Username)
	}
}

func TestCreateUser_RejectsAlreadyLinked(t *testing.T) {
	svc, _, _, _ := newTestService()
	tenantID := uuid.New()

	st := &Staff{TenantID: tenantID, FirstName: "A", LastName: "B", Role: auth.RoleAdmin}
	if err := svc.CreateStaff(context.Background(), st); err != nil {
		t.Fatalf("create staff: %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), tenantID, st.ID, "", "pw1"); err != nil {
		t.Fatalf("first create user: %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), tenantID, st.ID, "", "pw2"); err == nil {
		t.Error("expected second link to be rejected")
	}
}

func TestRoleByAccount(t *testing.T) {
	svc, repo, _, _ := newTestService()
	accountID := uuid.New()
	staffID := uuid.New()
	repo.staff[staffID] = &Staff{
		ID: staffID, TenantID: uuid.New(), AccountID: &accountID,
		FirstName: "A", LastName: "B", Role: auth.RoleBilling, Active: true,
	}

	role, ok := svc.RoleByAccount(context.Background(), accountID)
	if !ok || role != auth.RoleBilling {
		t.Errorf("expected billing role, got (%q, %v)", role, ok)
	}

	if _, ok := svc.RoleByAccount(context.Background(), uuid.New()); ok {
		t.Error("expected unlinked account to have no role")
	}

	repo.staff[staffID].Active = false
	if _, ok := svc.RoleByAccount(context.Background(), accountID); ok {
		t.Error("expected inactive staff to have no role")
	}
}

func TestTenantByAccount(t *testing.T) {
	svc, repo, _, tenantRepo := newTestService()

	tn := &tenant.Tenant{Name: "Clinique du Centre", Slug: "centre"}
	if err := tenantRepo.Create(context.Background(), tn); err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	accountID := uuid.New()
	staffID := uuid.New()
	repo.staff[staffID] = &Staff{
		ID: staffID, TenantID: tn.ID, AccountID: &accountID,
		FirstName: "A", LastName: "B", Role: auth.RoleDoctor, Active: true,
	}

	got, err := svc.TenantByAccount(context.Background(), accountID)
	if err != nil {
		t.Fatalf("tenant by account: %v", err)
	}
	if got == nil || got.ID != tn.ID {
		t.Errorf("expected tenant %v, got %v", tn, got)
	}

	none, err := svc.TenantByAccount(context.Background(), uuid.New())
	if err != nil || none != nil {
		t.Errorf("expected no tenant for unlinked account, got (%v, %v)", none, err)
	}
}

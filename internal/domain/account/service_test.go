package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	accounts map[uuid.UUID]*Account
}

func newMockRepo() *mockRepo {
	return &mockRepo{accounts: make(map[uuid.UUID]*Account)}
}

func (m *mockRepo) Create(_ context.Context, a *Account) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.accounts[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*Account, error) {
	for _, a := range m.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	a, _ := m.GetByUsername(context.Background(), username)
	return a != nil, nil
}

func (m *mockRepo) Update(_ context.Context, a *Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.accounts, id)
	return nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, auth.NewTokenService("test-secret", time.Hour))
}

// -- Tests --

func TestCreateAccount_HashesPassword(t *testing.T) {
	svc := newTestService(newMockRepo())

	a, err := svc.CreateAccount(context.Background(), "alice", "alice@clinic.cd", "s3cret", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.PasswordHash == "s3cret" || a.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}
	if !a.Active {
		t.Error("expected new account to be active")
	}
}

func TestCreateAccount_RejectsDuplicateUsername(t *testing.T) {
	svc := newTestService(newMockRepo())

	if _, err := svc.CreateAccount(context.Background(), "alice", "", "pw", false); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateAccount(context.Background(), "alice", "", "pw", false); err == nil {
		t.Error("expected duplicate username to be rejected")
	}
}

func TestAuthenticate_ByUsername(t *testing.T) {
	svc := newTestService(newMockRepo())
	created, err := svc.CreateAccount(context.Background(), "alice", "alice@clinic.cd", "s3cret", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	token, a, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if a.ID != created.ID {
		t.Errorf("expected account %s, got %s", created.ID, a.ID)
	}
}

func TestAuthenticate_ByEmailCaseInsensitive(t *testing.T) {
	svc := newTestService(newMockRepo())
	if _, err := svc.CreateAccount(context.Background(), "alice", "Alice@Clinic.cd", "s3cret", false); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := svc.Authenticate(context.Background(), "alice@clinic.cd", "s3cret"); err != nil {
		t.Errorf("expected email login to succeed, got %v", err)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	svc := newTestService(newMockRepo())
	a, err := svc.CreateAccount(context.Background(), "alice", "alice@clinic.cd", "s3cret", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name       string
		identifier string
		password   string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "bob", "s3cret"},
		{"empty identifier", "", "s3cret"},
		{"empty password", "alice", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Authenticate(context.Background(), tt.identifier, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	t.Run("inactive account", func(t *testing.T) {
		a.Active = false
		_, _, err := svc.Authenticate(context.Background(), "alice", "s3cret")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for inactive account, got %v", err)
		}
	})
}

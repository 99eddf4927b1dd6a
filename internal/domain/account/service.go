package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

// ErrInvalidCredentials covers unknown identifier, wrong password, and
// disabled accounts so login responses never reveal which check failed.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

type Service struct {
	repo   Repository
	tokens *auth.TokenService
}

func NewService(repo Repository, tokens *auth.TokenService) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate verifies an identifier/password pair and issues an access
// token. The identifier may be a username or an email address; email is
// matched case-insensitively.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (string, *Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	a, err := s.repo.GetByUsername(ctx, identifier)
	if err != nil {
		return "", nil, err
	}
	if a == nil && strings.Contains(identifier, "@") {
		a, err = s.repo.GetByEmail(ctx, identifier)
		if err != nil {
			return "", nil, err
		}
	}
	if a == nil || !a.Active {
		return "", nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(a.ID, a.Username, a.Superuser)
	if err != nil {
		return "", nil, err
	}
	return token, a, nil
}

// CreateAccount registers a new login identity with a hashed password.
func (s *Service) CreateAccount(ctx context.Context, username, email, password string, superuser bool) (*Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("username already in use: %s", username)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	a := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Superuser:    superuser,
		Active:       true,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// UsernameAvailable reports whether a username is free.
func (s *Service) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.repo.UsernameExists(ctx, username)
	return !taken, err
}

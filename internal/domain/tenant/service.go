package tenant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateTenant(ctx context.Context, t *Tenant) error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	if !slugPattern.MatchString(t.Slug) {
		return fmt.Errorf("invalid slug: %s", t.Slug)
	}
	existing, err := s.repo.GetBySlug(ctx, t.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("slug already in use: %s", t.Slug)
	}
	return s.repo.Create(ctx, t)
}

func (s *Service) GetTenant(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) UpdateTenant(ctx context.Context, t *Tenant) error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !slugPattern.MatchString(t.Slug) {
		return fmt.Errorf("invalid slug: %s", t.Slug)
	}
	existing, err := s.repo.GetBySlug(ctx, t.Slug)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != t.ID {
		return fmt.Errorf("slug already in use: %s", t.Slug)
	}
	return s.repo.Update(ctx, t)
}

func (s *Service) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Slugify derives a URL-safe slug from a display name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

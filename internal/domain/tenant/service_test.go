package tenant

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	tenants map[uuid.UUID]*Tenant
}

func newMockRepo() *mockRepo {
	return &mockRepo{tenants: make(map[uuid.UUID]*Tenant)}
}

func (m *mockRepo) Create(_ context.Context, t *Tenant) error {
	t.ID = uuid.New()
	m.tenants[t.ID] = t
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return t, nil
}

func (m *mockRepo) GetBySlug(_ context.Context, slug string) (*Tenant, error) {
	for _, t := range m.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) Update(_ context.Context, t *Tenant) error {
	m.tenants[t.ID] = t
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.tenants, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Tenant, int, error) {
	var result []*Tenant
	for _, t := range m.tenants {
		result = append(result, t)
	}
	return result, len(result), nil
}

// -- Tests --

func TestCreateTenant_SlugDerivedFromName(t *testing.T) {
	svc := NewService(newMockRepo())

	tn := &Tenant{Name: "Clinique du Centre"}
	if err := svc.CreateTenant(context.Background(), tn); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tn.Slug != "clinique-du-centre" {
		t.Errorf("expected derived slug, got %q", tn.Slug)
	}
}

func TestCreateTenant_RejectsDuplicateSlug(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.CreateTenant(context.Background(), &Tenant{Name: "A", Slug: "clinic"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.CreateTenant(context.Background(), &Tenant{Name: "B", Slug: "clinic"}); err == nil {
		t.Error("expected duplicate slug to be rejected")
	}
}

func TestCreateTenant_RequiresName(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.CreateTenant(context.Background(), &Tenant{}); err == nil {
		t.Error("expected missing name to be rejected")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Clinique du Centre", "clinique-du-centre"},
		{"  St. Mary's  ", "st-mary-s"},
		{"HGR Kinshasa 01", "hgr-kinshasa-01"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

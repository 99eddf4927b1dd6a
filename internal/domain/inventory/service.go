package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateItem validates and persists a stock item. The SKU is uppercased and
// must be unique within the tenant.
func (s *Service) CreateItem(ctx context.Context, i *Item) error {
	if err := s.normalize(ctx, i); err != nil {
		return err
	}
	return s.repo.Create(ctx, i)
}

func (s *Service) UpdateItem(ctx context.Context, i *Item) error {
	existing, err := s.repo.GetByID(ctx, i.TenantID, i.ID)
	if err != nil {
		return fmt.Errorf("item not found: %w", err)
	}
	if i.SKU == "" {
		i.SKU = existing.SKU
	}
	if err := s.normalize(ctx, i); err != nil {
		return err
	}
	return s.repo.Update(ctx, i)
}

func (s *Service) normalize(ctx context.Context, i *Item) error {
	if i.TenantID == uuid.Nil {
		return fmt.Errorf("tenant_id is required")
	}
	i.SKU = strings.ToUpper(strings.TrimSpace(i.SKU))
	if i.SKU == "" {
		return fmt.Errorf("sku is required")
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if i.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if i.ReorderLevel < 0 {
		return fmt.Errorf("reorder_level must not be negative")
	}
	if i.Unit == "" {
		i.Unit = DefaultUnit
	}

	exists, err := s.repo.SKUExists(ctx, i.TenantID, i.SKU, i.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("sku already in use: %s", i.SKU)
	}
	return nil
}

// AdjustQuantity applies a signed stock delta and logs when the item drops
// to or below its reorder level.
func (s *Service) AdjustQuantity(ctx context.Context, tenantID, id uuid.UUID, delta int) (*Item, error) {
	if delta == 0 {
		return nil, fmt.Errorf("delta must not be zero")
	}
	if _, err := s.repo.AdjustQuantity(ctx, tenantID, id, delta); err != nil {
		return nil, err
	}
	i, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if i.LowStock() {
		s.log.Info().
			Str("item_id", i.ID.String()).
			Str("sku", i.SKU).
			Int("quantity", i.Quantity).
			Int("reorder_level", i.ReorderLevel).
			Msg("inventory item at or below reorder level")
	}
	return i, nil
}

func (s *Service) GetItem(ctx context.Context, tenantID, id uuid.UUID) (*Item, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) DeleteItem(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, id)
}

func (s *Service) ListItems(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Item, int, error) {
	return s.repo.List(ctx, tenantID, limit, offset)
}

func (s *Service) SearchItems(ctx context.Context, tenantID uuid.UUID, query string, limit, offset int) ([]*Item, int, error) {
	return s.repo.Search(ctx, tenantID, query, limit, offset)
}

func (s *Service) ListLowStock(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Item, int, error) {
	return s.repo.ListLowStock(ctx, tenantID, limit, offset)
}

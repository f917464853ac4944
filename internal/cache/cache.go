package cache

import (
	"context"
	"time"

	"bentapos/backend/internal/domain"
)

// SalesCache holds recently loaded daily aggregates so re-selecting the
// same date does not hit the database again.
type SalesCache interface {
	Get(ctx context.Context, key string) (*domain.SalesAggregate, bool, error)
	Set(ctx context.Context, key string, value *domain.SalesAggregate, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type NoopSalesCache struct{}

func (NoopSalesCache) Get(_ context.Context, _ string) (*domain.SalesAggregate, bool, error) {
	return nil, false, nil
}

func (NoopSalesCache) Set(_ context.Context, _ string, _ *domain.SalesAggregate, _ time.Duration) error {
	return nil
}

func (NoopSalesCache) Delete(_ context.Context, _ string) error {
	return nil
}

// backend-go/internal/repository/asset_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/reactive-resume/backend-go/internal/domain"
)

type AssetRepository interface {
	Record(ctx context.Context, asset *domain.Asset) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Asset, error)
	DeleteByKey(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

type noopAssetRepository struct{}

// NewNoopAssetRepository is used when no database is configured.
func NewNoopAssetRepository() AssetRepository {
	return noopAssetRepository{}
}

func (noopAssetRepository) Record(ctx context.Context, asset *domain.Asset) error {
	return nil
}

func (noopAssetRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Asset, error) {
	return []*domain.Asset{}, nil
}

func (noopAssetRepository) DeleteByKey(ctx context.Context, key string) error {
	return nil
}

func (noopAssetRepository) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	return 0, nil
}

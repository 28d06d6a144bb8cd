// Package storage persists uploaded document blobs and the asset catalog.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/rwascore/internal/models"
)

// ErrAssetNotFound is returned when no asset has the requested ID.
var ErrAssetNotFound = errors.New("asset not found")

// AssetStore is the asset catalog.
type AssetStore interface {
	// SaveAsset inserts the asset or replaces the record with the same ID.
	SaveAsset(ctx context.Context, asset *models.Asset) error
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	ListAssets(ctx context.Context, offset, limit int) ([]*models.Asset, error)
	CountAssets(ctx context.Context) (int64, error)
	Close() error
}

package repository

import (
	"context"

	"TazeAI/internal/domain/models"
)

// FeatureStore persists raw provider bundles (bronze) and feature tables (silver).
type FeatureStore interface {
	// SaveRawSnapshot stores one bundle under a fresh UTC timestamp and returns its locator.
	SaveRawSnapshot(ctx context.Context, symbol string, bundle *models.ProviderBundle) (string, error)
	// LatestRawSnapshot returns the newest bundle for symbol, or models.ErrDataUnavailable.
	LatestRawSnapshot(ctx context.Context, symbol string) (*models.ProviderBundle, error)
	// SaveFeatureTable stores a new immutable feature-table snapshot.
	SaveFeatureTable(ctx context.Context, rows []models.FeatureRow) (string, error)
	// LoadConsolidatedDataset returns the most recent feature-table snapshot grouped by symbol.
	LoadConsolidatedDataset(ctx context.Context) (models.FeatureDataset, error)
}

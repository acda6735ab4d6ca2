package repository

import (
	"context"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
)

// SnapshotRepository defines the interface for the durable FX snapshot tier
type SnapshotRepository interface {
	// Load retrieves the latest persisted snapshot for the base currency.
	// A miss returns (nil, nil); only storage failures produce an error.
	Load(ctx context.Context) (*entity.RateSnapshot, error)

	// Save atomically replaces the persisted snapshot. Partial updates are
	// not possible; the whole snapshot is written in one transaction.
	Save(ctx context.Context, snapshot *entity.RateSnapshot) error
}

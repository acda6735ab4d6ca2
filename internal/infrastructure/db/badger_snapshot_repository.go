package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/lineasupply/storefront-api/internal/domain/entity"
)

// BadgerSnapshotRepository implements the durable FX snapshot tier using
// BadgerDB. One key per base currency; Save replaces the full snapshot in
// a single transaction, so readers never observe a mixed-currency snapshot.
type BadgerSnapshotRepository struct {
	db *badger.DB
}

// NewBadgerSnapshotRepository creates a new BadgerDB snapshot repository
func NewBadgerSnapshotRepository(db *badger.DB) *BadgerSnapshotRepository {
	return &BadgerSnapshotRepository{db: db}
}

func snapshotKey(base string) []byte {
	return []byte("fx:" + base)
}

// Load retrieves the latest persisted snapshot for the base currency.
// A missing key is a cache miss, not an error.
func (r *BadgerSnapshotRepository) Load(ctx context.Context) (*entity.RateSnapshot, error) {
	var snapshot entity.RateSnapshot

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(entity.BaseCurrency))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snapshot)
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load rate snapshot: %w", err)
	}

	return &snapshot, nil
}

// Save atomically replaces the persisted snapshot
func (r *BadgerSnapshotRepository) Save(ctx context.Context, snapshot *entity.RateSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal rate snapshot: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(snapshot.Base), data)
	})

	if err != nil {
		return fmt.Errorf("failed to store rate snapshot: %w", err)
	}

	return nil
}

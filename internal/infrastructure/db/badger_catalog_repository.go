package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v3"
	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/lineasupply/storefront-api/internal/domain/repository"
)

const (
	categoryPrefix     = "category:"
	categoryNamePrefix = "category_name:"
	productPrefix      = "product:"
	deliveryPrefix     = "delivery:"

	// sequenceBandwidth is how many IDs a sequence leases at once
	sequenceBandwidth = 100
)

func entityKey(prefix string, id uint64) []byte {
	return []byte(prefix + strconv.FormatUint(id, 10))
}

// getJSON reads and unmarshals a single key inside a view transaction.
func getJSON(db *badger.DB, key []byte, out interface{}) error {
	return db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

// scanPrefix unmarshals every value under a key prefix, invoking collect
// for each decoded JSON payload.
func scanPrefix(db *badger.DB, prefix string, collect func(val []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				return collect(val)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// BadgerCategoryRepository implements the category repository using BadgerDB.
// A secondary name-index key enforces unique category names.
type BadgerCategoryRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerCategoryRepository creates a new BadgerDB category repository
func NewBadgerCategoryRepository(db *badger.DB) (*BadgerCategoryRepository, error) {
	seq, err := db.GetSequence([]byte("seq:category"), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("failed to open category sequence: %w", err)
	}
	return &BadgerCategoryRepository{db: db, seq: seq}, nil
}

// Close releases the leased ID sequence
func (r *BadgerCategoryRepository) Close() error {
	return r.seq.Release()
}

// Store saves a category and returns its assigned ID
func (r *BadgerCategoryRepository) Store(ctx context.Context, category *entity.Category) (uint64, error) {
	if category.ID == 0 {
		id, err := r.seq.Next()
		if err != nil {
			return 0, fmt.Errorf("failed to allocate category ID: %w", err)
		}
		// Sequences start at 0; IDs start at 1
		category.ID = id + 1
	}

	data, err := json.Marshal(category)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal category: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(entityKey(categoryPrefix, category.ID), data); err != nil {
			return err
		}
		idBytes := []byte(strconv.FormatUint(category.ID, 10))
		return txn.Set([]byte(categoryNamePrefix+category.Name), idBytes)
	})

	if err != nil {
		return 0, fmt.Errorf("failed to store category: %w", err)
	}

	return category.ID, nil
}

// FindByID retrieves a category by its identifier
func (r *BadgerCategoryRepository) FindByID(ctx context.Context, id uint64) (*entity.Category, error) {
	var category entity.Category

	err := getJSON(r.db, entityKey(categoryPrefix, id), &category)
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w: category %d", repository.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve category: %w", err)
	}

	return &category, nil
}

// FindByName retrieves a category by its unique name, (nil, nil) on miss
func (r *BadgerCategoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	var id uint64

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(categoryNamePrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			parsed, parseErr := strconv.ParseUint(string(val), 10, 64)
			if parseErr != nil {
				return parseErr
			}
			id = parsed
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up category name: %w", err)
	}

	return r.FindByID(ctx, id)
}

// FindAll retrieves every category
func (r *BadgerCategoryRepository) FindAll(ctx context.Context) ([]*entity.Category, error) {
	var categories []*entity.Category

	err := scanPrefix(r.db, categoryPrefix, func(val []byte) error {
		var category entity.Category
		if err := json.Unmarshal(val, &category); err != nil {
			return err
		}
		categories = append(categories, &category)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// BadgerProductRepository implements the product repository using BadgerDB
type BadgerProductRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerProductRepository creates a new BadgerDB product repository
func NewBadgerProductRepository(db *badger.DB) (*BadgerProductRepository, error) {
	seq, err := db.GetSequence([]byte("seq:product"), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("failed to open product sequence: %w", err)
	}
	return &BadgerProductRepository{db: db, seq: seq}, nil
}

// Close releases the leased ID sequence
func (r *BadgerProductRepository) Close() error {
	return r.seq.Release()
}

// Store saves a product and returns its assigned ID
func (r *BadgerProductRepository) Store(ctx context.Context, product *entity.Product) (uint64, error) {
	if product.ID == 0 {
		id, err := r.seq.Next()
		if err != nil {
			return 0, fmt.Errorf("failed to allocate product ID: %w", err)
		}
		product.ID = id + 1
	}

	if err := r.put(product); err != nil {
		return 0, err
	}

	return product.ID, nil
}

// Update replaces an existing product
func (r *BadgerProductRepository) Update(ctx context.Context, product *entity.Product) error {
	if _, err := r.FindByID(ctx, product.ID); err != nil {
		return err
	}
	return r.put(product)
}

func (r *BadgerProductRepository) put(product *entity.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entityKey(productPrefix, product.ID), data)
	})

	if err != nil {
		return fmt.Errorf("failed to store product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by its identifier
func (r *BadgerProductRepository) FindByID(ctx context.Context, id uint64) (*entity.Product, error) {
	var product entity.Product

	err := getJSON(r.db, entityKey(productPrefix, id), &product)
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w: product %d", repository.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	return &product, nil
}

// FindAll retrieves every product
func (r *BadgerProductRepository) FindAll(ctx context.Context) ([]*entity.Product, error) {
	var products []*entity.Product

	err := scanPrefix(r.db, productPrefix, func(val []byte) error {
		var product entity.Product
		if err := json.Unmarshal(val, &product); err != nil {
			return err
		}
		products = append(products, &product)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// Delete removes a product by its identifier
func (r *BadgerProductRepository) Delete(ctx context.Context, id uint64) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(entityKey(productPrefix, id))
	})

	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// BadgerDeliveryOptionRepository implements the delivery option repository
// using BadgerDB
type BadgerDeliveryOptionRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerDeliveryOptionRepository creates a new BadgerDB delivery option repository
func NewBadgerDeliveryOptionRepository(db *badger.DB) (*BadgerDeliveryOptionRepository, error) {
	seq, err := db.GetSequence([]byte("seq:delivery"), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("failed to open delivery option sequence: %w", err)
	}
	return &BadgerDeliveryOptionRepository{db: db, seq: seq}, nil
}

// Close releases the leased ID sequence
func (r *BadgerDeliveryOptionRepository) Close() error {
	return r.seq.Release()
}

// Store saves a delivery option and returns its assigned ID
func (r *BadgerDeliveryOptionRepository) Store(ctx context.Context, option *entity.DeliveryOption) (uint64, error) {
	if option.ID == 0 {
		id, err := r.seq.Next()
		if err != nil {
			return 0, fmt.Errorf("failed to allocate delivery option ID: %w", err)
		}
		option.ID = id + 1
	}

	data, err := json.Marshal(option)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal delivery option: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entityKey(deliveryPrefix, option.ID), data)
	})

	if err != nil {
		return 0, fmt.Errorf("failed to store delivery option: %w", err)
	}

	return option.ID, nil
}

// FindByID retrieves a delivery option by its identifier
func (r *BadgerDeliveryOptionRepository) FindByID(ctx context.Context, id uint64) (*entity.DeliveryOption, error) {
	var option entity.DeliveryOption

	err := getJSON(r.db, entityKey(deliveryPrefix, id), &option)
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w: delivery option %d", repository.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve delivery option: %w", err)
	}

	return &option, nil
}

// FindAll retrieves every delivery option
func (r *BadgerDeliveryOptionRepository) FindAll(ctx context.Context) ([]*entity.DeliveryOption, error) {
	var options []*entity.DeliveryOption

	err := scanPrefix(r.db, deliveryPrefix, func(val []byte) error {
		var option entity.DeliveryOption
		if err := json.Unmarshal(val, &option); err != nil {
			return err
		}
		options = append(options, &option)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list delivery options: %w", err)
	}

	return options, nil
}

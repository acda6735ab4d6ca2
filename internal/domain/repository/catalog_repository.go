package repository

import (
	"context"
	"errors"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
)

// ErrNotFound indicates the requested entity does not exist in storage
var ErrNotFound = errors.New("not found")

// CategoryRepository defines the interface for category storage
type CategoryRepository interface {
	// Store saves a category and returns its assigned ID
	Store(ctx context.Context, category *entity.Category) (uint64, error)

	// FindByID retrieves a category by its identifier
	FindByID(ctx context.Context, id uint64) (*entity.Category, error)

	// FindByName retrieves a category by its unique name, (nil, nil) on miss
	FindByName(ctx context.Context, name string) (*entity.Category, error)

	// FindAll retrieves every category
	FindAll(ctx context.Context) ([]*entity.Category, error)
}

// ProductRepository defines the interface for product storage
type ProductRepository interface {
	// Store saves a product and returns its assigned ID
	Store(ctx context.Context, product *entity.Product) (uint64, error)

	// FindByID retrieves a product by its identifier
	FindByID(ctx context.Context, id uint64) (*entity.Product, error)

	// FindAll retrieves every product
	FindAll(ctx context.Context) ([]*entity.Product, error)

	// Update replaces an existing product
	Update(ctx context.Context, product *entity.Product) error

	// Delete removes a product by its identifier
	Delete(ctx context.Context, id uint64) error
}

// DeliveryOptionRepository defines the interface for delivery option storage
type DeliveryOptionRepository interface {
	// Store saves a delivery option and returns its assigned ID
	Store(ctx context.Context, option *entity.DeliveryOption) (uint64, error)

	// FindByID retrieves a delivery option by its identifier
	FindByID(ctx context.Context, id uint64) (*entity.DeliveryOption, error)

	// FindAll retrieves every delivery option
	FindAll(ctx context.Context) ([]*entity.DeliveryOption, error)
}

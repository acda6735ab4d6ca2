package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/lineasupply/storefront-api/internal/domain/repository"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
)

// ErrDuplicateCategory indicates a category with the same name already exists
var ErrDuplicateCategory = errors.New("category already exists")

// ErrUnknownCategory indicates a product references a category that does
// not exist
var ErrUnknownCategory = errors.New("unknown category")

// Product list sort orders
const (
	SortCreatedDesc = "created_desc"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
)

// ProductFilter narrows and orders a product listing
type ProductFilter struct {
	CategoryID       uint64
	DeliveryOptionID uint64
	Sort             string
	WithSummary      bool
}

// ProductView is a product enriched with its category and delivery summary
type ProductView struct {
	Product         *entity.Product
	Category        *entity.Category
	DeliverySummary *entity.DeliverySummary
}

// ProductDetail is a product with its active delivery options resolved
type ProductDetail struct {
	Product         *entity.Product
	Category        *entity.Category
	DeliveryOptions []*entity.DeliveryOption
}

// CategoryWithProducts is a category with its product listing
type CategoryWithProducts struct {
	Category *entity.Category
	Products []*entity.Product
}

// CatalogService handles business logic for categories, products and
// delivery options
type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	options    repository.DeliveryOptionRepository
	logger     logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(categories repository.CategoryRepository, products repository.ProductRepository,
	options repository.DeliveryOptionRepository, log logger.Logger) *CatalogService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CatalogService{
		categories: categories,
		products:   products,
		options:    options,
		logger:     log,
	}
}

// CreateCategory creates a category with a unique name
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*entity.Category, error) {
	existing, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
	}

	now := time.Now().UTC()
	category := &entity.Category{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.categories.Store(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to store category: %w", err)
	}

	s.logger.Info("Category created", map[string]interface{}{
		"id":   category.ID,
		"name": category.Name,
	})

	return category, nil
}

// GetCategories returns all categories sorted by name
func (s *CatalogService) GetCategories(ctx context.Context) ([]*entity.Category, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})

	return categories, nil
}

// GetCategoriesWithProducts returns categories that have at least one
// product, sorted by name. Used for storefront filter dropdowns.
func (s *CatalogService) GetCategoriesWithProducts(ctx context.Context) ([]*entity.Category, error) {
	categories, err := s.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	populated := make(map[uint64]bool, len(categories))
	for _, product := range products {
		populated[product.CategoryID] = true
	}

	filtered := categories[:0]
	for _, category := range categories {
		if populated[category.ID] {
			filtered = append(filtered, category)
		}
	}

	return filtered, nil
}

// GetCategory returns a category with its products
func (s *CatalogService) GetCategory(ctx context.Context, id uint64) (*CategoryWithProducts, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var owned []*entity.Product
	for _, product := range products {
		if product.CategoryID == id {
			owned = append(owned, product)
		}
	}

	return &CategoryWithProducts{Category: category, Products: owned}, nil
}

// CreateProduct validates the category and stores a new product
func (s *CatalogService) CreateProduct(ctx context.Context, product *entity.Product) (uint64, error) {
	if _, err := s.categories.FindByID(ctx, product.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%w: %d", ErrUnknownCategory, product.CategoryID)
		}
		return 0, err
	}

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := product.Validate(); err != nil {
		return 0, err
	}

	id, err := s.products.Store(ctx, product)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Product created", map[string]interface{}{
		"id":    id,
		"title": product.Title,
	})

	return id, nil
}

// ListProducts returns filtered, sorted products enriched with category
// and delivery summary data
func (s *CatalogService) ListProducts(ctx context.Context, filter ProductFilter) ([]*ProductView, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*entity.Product, 0, len(products))
	for _, product := range products {
		if filter.CategoryID != 0 && product.CategoryID != filter.CategoryID {
			continue
		}
		if filter.DeliveryOptionID != 0 && !containsID(product.DeliveryOptionIDs, filter.DeliveryOptionID) {
			continue
		}
		filtered = append(filtered, product)
	}

	switch filter.Sort {
	case SortPriceAsc:
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case SortPriceDesc:
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	default:
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	}

	categories, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	var optionIndex map[uint64]*entity.DeliveryOption
	if filter.WithSummary {
		optionIndex, err = s.optionIndex(ctx)
		if err != nil {
			return nil, err
		}
	}

	views := make([]*ProductView, 0, len(filtered))
	for _, product := range filtered {
		view := &ProductView{
			Product:  product,
			Category: categories[product.CategoryID],
		}
		if filter.WithSummary {
			view.DeliverySummary = summarizeDelivery(resolveOptions(product.DeliveryOptionIDs, optionIndex))
		}
		views = append(views, view)
	}

	return views, nil
}

// GetProduct returns a product with its category and active delivery
// options, sorted by price then speed
func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*ProductDetail, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.FindByID(ctx, product.CategoryID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	optionIndex, err := s.optionIndex(ctx)
	if err != nil {
		return nil, err
	}

	var active []*entity.DeliveryOption
	for _, option := range resolveOptions(product.DeliveryOptionIDs, optionIndex) {
		if option.IsActive {
			active = append(active, option)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].Price != active[j].Price {
			return active[i].Price < active[j].Price
		}
		return active[i].Speed.Rank() < active[j].Speed.Rank()
	})

	return &ProductDetail{
		Product:         product,
		Category:        category,
		DeliveryOptions: active,
	}, nil
}

// ProductUpdate carries the fields of a product update; nil fields are
// left unchanged
type ProductUpdate struct {
	Title             *string
	Description       *string
	Price             *float64
	CategoryID        *uint64
	DeliveryOptionIDs []uint64
	ImageURL          *string
	IsSaved           *bool
}

// UpdateProduct loads the stored product and applies only the set fields,
// so omitted fields and CreatedAt survive the update
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint64, update ProductUpdate) (*entity.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		product.Title = *update.Title
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *update.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, *update.CategoryID)
			}
			return nil, err
		}
		product.CategoryID = *update.CategoryID
	}
	if update.DeliveryOptionIDs != nil {
		product.DeliveryOptionIDs = update.DeliveryOptionIDs
	}
	if update.ImageURL != nil {
		product.ImageURL = *update.ImageURL
	}
	if update.IsSaved != nil {
		product.IsSaved = *update.IsSaved
	}

	product.UpdatedAt = time.Now().UTC()

	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct removes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Product deleted", map[string]interface{}{"id": id})
	return nil
}

// ActiveDeliveryOptions returns active options sorted by estimated days
// then price
func (s *CatalogService) ActiveDeliveryOptions(ctx context.Context) ([]*entity.DeliveryOption, error) {
	options, err := s.options.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*entity.DeliveryOption, 0, len(options))
	for _, option := range options {
		if option.IsActive {
			active = append(active, option)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].EstimatedDaysMin != active[j].EstimatedDaysMin {
			return active[i].EstimatedDaysMin < active[j].EstimatedDaysMin
		}
		return active[i].Price < active[j].Price
	})

	return active, nil
}

func (s *CatalogService) categoryIndex(ctx context.Context) (map[uint64]*entity.Category, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[uint64]*entity.Category, len(categories))
	for _, category := range categories {
		index[category.ID] = category
	}
	return index, nil
}

func (s *CatalogService) optionIndex(ctx context.Context) (map[uint64]*entity.DeliveryOption, error) {
	options, err := s.options.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[uint64]*entity.DeliveryOption, len(options))
	for _, option := range options {
		index[option.ID] = option
	}
	return index, nil
}

func resolveOptions(ids []uint64, index map[uint64]*entity.DeliveryOption) []*entity.DeliveryOption {
	options := make([]*entity.DeliveryOption, 0, len(ids))
	for _, id := range ids {
		if option, ok := index[id]; ok {
			options = append(options, option)
		}
	}
	return options
}

func containsID(ids []uint64, id uint64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// summarizeDelivery aggregates the active options for a product; nil when
// no option is active
func summarizeDelivery(options []*entity.DeliveryOption) *entity.DeliverySummary {
	var active []*entity.DeliveryOption
	for _, option := range options {
		if option.IsActive {
			active = append(active, option)
		}
	}
	if len(active) == 0 {
		return nil
	}

	summary := &entity.DeliverySummary{
		CheapestPrice:  active[0].Price,
		FastestDaysMin: active[0].EstimatedDaysMin,
		OptionsCount:   len(active),
	}

	for _, option := range active {
		if option.Price == 0 {
			summary.HasFree = true
		}
		if option.Price < summary.CheapestPrice {
			summary.CheapestPrice = option.Price
		}
		if option.EstimatedDaysMin < summary.FastestDaysMin {
			summary.FastestDaysMin = option.EstimatedDaysMin
		}
	}

	// Among the fastest options, report the tightest upper bound
	first := true
	for _, option := range active {
		if option.EstimatedDaysMin != summary.FastestDaysMin {
			continue
		}
		if first || option.EstimatedDaysMax < summary.FastestDaysMax {
			summary.FastestDaysMax = option.EstimatedDaysMax
			first = false
		}
	}

	return summary
}

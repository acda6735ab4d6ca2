// internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockSnapshotRepository mocks the SnapshotRepository interface
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Load(ctx context.Context) (*entity.RateSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RateSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snapshot *entity.RateSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

// MockRateProvider mocks the RateProvider interface
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) FetchRates(ctx context.Context, base string, targets []string) (map[string]float64, error) {
	args := m.Called(ctx, base, targets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

// MockCategoryRepository mocks the CategoryRepository interface
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Store(ctx context.Context, category *entity.Category) (uint64, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uint64) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]*entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Category), args.Error(1)
}

// MockProductRepository mocks the ProductRepository interface
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Store(ctx context.Context, product *entity.Product) (uint64, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uint64) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]*entity.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDeliveryOptionRepository mocks the DeliveryOptionRepository interface
type MockDeliveryOptionRepository struct {
	mock.Mock
}

func (m *MockDeliveryOptionRepository) Store(ctx context.Context, option *entity.DeliveryOption) (uint64, error) {
	args := m.Called(ctx, option)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockDeliveryOptionRepository) FindByID(ctx context.Context, id uint64) (*entity.DeliveryOption, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DeliveryOption), args.Error(1)
}

func (m *MockDeliveryOptionRepository) FindAll(ctx context.Context) ([]*entity.DeliveryOption, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.DeliveryOption), args.Error(1)
}

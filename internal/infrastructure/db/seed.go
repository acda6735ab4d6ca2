package db

import (
	"context"
	"fmt"
	"time"

	"github.com/lineasupply/storefront-api/internal/domain/entity"
	"github.com/lineasupply/storefront-api/internal/domain/repository"
	"github.com/lineasupply/storefront-api/internal/infrastructure/logger"
)

// SeedCatalog populates an empty store with a small demo catalog.
// A store that already has categories is left untouched.
func SeedCatalog(ctx context.Context, categories repository.CategoryRepository,
	products repository.ProductRepository, options repository.DeliveryOptionRepository,
	log logger.Logger) error {

	existing, err := categories.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing catalog: %w", err)
	}
	if len(existing) > 0 {
		log.Debug("Catalog already seeded", map[string]interface{}{
			"categories": len(existing),
		})
		return nil
	}

	now := time.Now().UTC()

	optionIDs := make([]uint64, 0, 3)
	for _, option := range []*entity.DeliveryOption{
		{
			Name:             "Standard Shipping",
			Description:      "3-5 business days",
			Speed:            entity.SpeedStandard,
			Price:            0,
			EstimatedDaysMin: 3,
			EstimatedDaysMax: 5,
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		{
			Name:             "Express Delivery",
			Description:      "1-2 business days",
			Speed:            entity.SpeedExpress,
			Price:            5.99,
			EstimatedDaysMin: 1,
			EstimatedDaysMax: 2,
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		{
			Name:             "Next Day",
			Description:      "Delivered tomorrow",
			Speed:            entity.SpeedNextDay,
			Price:            12.50,
			MinOrderAmount:   25,
			EstimatedDaysMin: 1,
			EstimatedDaysMax: 1,
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
	} {
		id, err := options.Store(ctx, option)
		if err != nil {
			return fmt.Errorf("failed to seed delivery option: %w", err)
		}
		optionIDs = append(optionIDs, id)
	}

	type seedProduct struct {
		title       string
		description string
		price       float64
	}

	catalog := []struct {
		category string
		products []seedProduct
	}{
		{
			category: "Apparel",
			products: []seedProduct{
				{"Classic Tee", "Heavyweight cotton t-shirt", 19.99},
				{"Zip Hoodie", "Fleece-lined hoodie with front pockets", 44.50},
			},
		},
		{
			category: "Home",
			products: []seedProduct{
				{"Ceramic Mug", "350ml stoneware mug", 12.00},
				{"Linen Throw", "Woven linen throw blanket", 59.00},
			},
		},
		{
			category: "Accessories",
			products: []seedProduct{
				{"Canvas Tote", "Reinforced everyday tote bag", 16.75},
				{"Enamel Pin Set", "Set of four enamel pins", 9.99},
			},
		},
	}

	for _, group := range catalog {
		categoryID, err := categories.Store(ctx, &entity.Category{
			Name:      group.category,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", group.category, err)
		}

		for _, p := range group.products {
			if _, err := products.Store(ctx, &entity.Product{
				Title:             p.title,
				Description:       p.description,
				Price:             p.price,
				CategoryID:        categoryID,
				DeliveryOptionIDs: optionIDs,
				CreatedAt:         now,
				UpdatedAt:         now,
			}); err != nil {
				return fmt.Errorf("failed to seed product %q: %w", p.title, err)
			}
		}
	}

	log.Info("Seeded demo catalog", map[string]interface{}{
		"categories":       len(catalog),
		"delivery_options": len(optionIDs),
	})

	return nil
}

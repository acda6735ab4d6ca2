package entity

import (
	"errors"
	"time"
)

// Product represents a store item priced in the base currency
type Product struct {
	ID                uint64    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Price             float64   `json:"price"`
	CategoryID        uint64    `json:"category_id"`
	DeliveryOptionIDs []uint64  `json:"delivery_option_ids,omitempty"`
	IsSaved           bool      `json:"is_saved"`
	ImageURL          string    `json:"image_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Validate ensures the product meets all requirements
func (p *Product) Validate() error {
	if p.Title == "" {
		return errors.New("title must not be empty")
	}

	if p.Price < 0 {
		return errors.New("price must not be negative")
	}

	if p.CategoryID == 0 {
		return errors.New("product must belong to a category")
	}

	return nil
}

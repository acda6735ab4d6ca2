package entity

import (
	"errors"
	"time"
)

// Category groups products for browsing and filtering
type Category struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate ensures the category meets all requirements
func (c *Category) Validate() error {
	if c.Name == "" {
		return errors.New("category name must not be empty")
	}

	if len(c.Name) > 100 {
		return errors.New("category name must not exceed 100 characters")
	}

	return nil
}

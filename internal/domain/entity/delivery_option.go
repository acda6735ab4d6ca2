package entity

import (
	"errors"
	"time"
)

// DeliverySpeed is how quickly a delivery option ships
type DeliverySpeed string

const (
	SpeedStandard DeliverySpeed = "standard"
	SpeedExpress  DeliverySpeed = "express"
	SpeedNextDay  DeliverySpeed = "next_day"
	SpeedSameDay  DeliverySpeed = "same_day"
)

// speedOrder ranks speeds for sorting; unknown speeds sort last.
var speedOrder = map[DeliverySpeed]int{
	SpeedStandard: 0,
	SpeedExpress:  1,
	SpeedNextDay:  2,
	SpeedSameDay:  3,
}

// Rank returns the sort position of the speed.
func (s DeliverySpeed) Rank() int {
	if rank, ok := speedOrder[s]; ok {
		return rank
	}
	return len(speedOrder)
}

// DeliveryOption represents a shipping method offered for products
type DeliveryOption struct {
	ID                uint64        `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Speed             DeliverySpeed `json:"speed"`
	Price             float64       `json:"price"`
	MinOrderAmount    float64       `json:"min_order_amount,omitempty"`
	EstimatedDaysMin  int           `json:"estimated_days_min"`
	EstimatedDaysMax  int           `json:"estimated_days_max"`
	IsActive          bool          `json:"is_active"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Validate ensures the delivery option meets all requirements
func (d *DeliveryOption) Validate() error {
	if d.Name == "" {
		return errors.New("delivery option name must not be empty")
	}

	if d.Price < 0 {
		return errors.New("delivery price must not be negative")
	}

	if d.EstimatedDaysMin < 0 || d.EstimatedDaysMax < d.EstimatedDaysMin {
		return errors.New("estimated delivery days range is invalid")
	}

	return nil
}

// DeliverySummary aggregates the active delivery options for a product
type DeliverySummary struct {
	HasFree        bool    `json:"has_free"`
	CheapestPrice  float64 `json:"cheapest_price"`
	FastestDaysMin int     `json:"fastest_days_min"`
	FastestDaysMax int     `json:"fastest_days_max"`
	OptionsCount   int     `json:"options_count"`
}

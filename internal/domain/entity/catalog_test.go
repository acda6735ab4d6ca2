package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryValidate(t *testing.T) {
	assert.NoError(t, (&Category{Name: "Apparel"}).Validate())
	assert.Error(t, (&Category{Name: ""}).Validate())
	assert.Error(t, (&Category{Name: strings.Repeat("x", 101)}).Validate())
}

func TestProductValidate(t *testing.T) {
	valid := &Product{Title: "Shirt", Price: 29.99, CategoryID: 1}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&Product{Title: "", Price: 1, CategoryID: 1}).Validate())
	assert.Error(t, (&Product{Title: "Shirt", Price: -1, CategoryID: 1}).Validate())
	assert.Error(t, (&Product{Title: "Shirt", Price: 1, CategoryID: 0}).Validate())
}

func TestDeliveryOptionValidate(t *testing.T) {
	valid := &DeliveryOption{Name: "Standard", Price: 0, EstimatedDaysMin: 3, EstimatedDaysMax: 5}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&DeliveryOption{Name: "", EstimatedDaysMin: 1, EstimatedDaysMax: 2}).Validate())
	assert.Error(t, (&DeliveryOption{Name: "X", Price: -1}).Validate())
	assert.Error(t, (&DeliveryOption{Name: "X", EstimatedDaysMin: 5, EstimatedDaysMax: 3}).Validate())
}

func TestDeliverySpeedRank(t *testing.T) {
	assert.Less(t, SpeedStandard.Rank(), SpeedExpress.Rank())
	assert.Less(t, SpeedExpress.Rank(), SpeedNextDay.Rank())
	assert.Less(t, SpeedNextDay.Rank(), SpeedSameDay.Rank())
	assert.Equal(t, len([]DeliverySpeed{SpeedStandard, SpeedExpress, SpeedNextDay, SpeedSameDay}),
		DeliverySpeed("carrier_pigeon").Rank())
}

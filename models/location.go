package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationType enumerates the kinds of stock-holding places a merchant
// can have.
type LocationType string

const (
	LocationTypeStore     LocationType = "store"
	LocationTypeWarehouse LocationType = "warehouse"
	LocationTypeThirdPL   LocationType = "3pl"
)

// ValidLocationType reports whether t is one of the enumerated types.
func ValidLocationType(t LocationType) bool {
	switch t {
	case LocationTypeStore, LocationTypeWarehouse, LocationTypeThirdPL:
		return true
	}
	return false
}

// DefaultLocationName returns the display name used when a location of
// the given type is created automatically during an import.
func DefaultLocationName(t LocationType) string {
	switch t {
	case LocationTypeStore:
		return "Main store"
	case LocationTypeThirdPL:
		return "Fulfilment partner"
	default:
		return "Main warehouse"
	}
}

// Location is a physical or logical place where a merchant holds stock.
// The partial unique index guarantees at most one auto-created default
// per merchant per type; additional non-default locations of the same
// type may coexist.
type Location struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MerchantID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uniq_merchant_type_default,where:is_default;index" json:"merchant_id"`
	Type       LocationType `gorm:"type:varchar(16);not null;uniqueIndex:uniq_merchant_type_default,where:is_default" json:"type"`
	Name       string       `gorm:"type:varchar(256);not null" json:"name"`
	Address    string       `gorm:"type:varchar(512)" json:"address"`
	Timezone   string       `gorm:"type:varchar(64);default:'UTC'" json:"timezone"`
	Active     bool         `gorm:"not null;default:true" json:"active"`
	IsDefault  bool         `gorm:"not null;default:false" json:"is_default"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

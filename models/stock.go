package models

import (
	"time"

	"github.com/google/uuid"
)

// PosSystem enumerates the point-of-sale systems whose sync metadata can
// be recorded alongside a stock level.
type PosSystem string

const (
	PosSystemNone       PosSystem = "none"
	PosSystemLightspeed PosSystem = "lightspeed"
	PosSystemSquare     PosSystem = "square"
	PosSystemShopify    PosSystem = "shopify"
)

// ValidPosSystem reports whether p is one of the enumerated systems.
func ValidPosSystem(p PosSystem) bool {
	switch p {
	case PosSystemNone, PosSystemLightspeed, PosSystemSquare, PosSystemShopify:
		return true
	}
	return false
}

// Stock is the quantity on hand for one offer at one location. Exactly
// one record exists per (offer, location) pair; imports overwrite it.
type Stock struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OfferID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_offer_location" json:"offer_id"`
	LocationID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_offer_location" json:"location_id"`
	Quantity      int       `gorm:"not null;check:quantity >= 0" json:"quantity"`
	PosSystem     PosSystem `gorm:"type:varchar(32);not null;default:'none'" json:"pos_system"`
	PosExternalID string    `gorm:"type:varchar(256)" json:"pos_external_id"`
	LastSyncedAt  time.Time `json:"last_synced_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

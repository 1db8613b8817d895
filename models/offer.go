package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer status constants.
const (
	OfferStatusActive = "active"
	OfferStatusPaused = "paused"
)

// Offer binds a merchant's own SKU to a canonical variant. There is
// exactly one offer per (merchant, variant) pair; the SKU may be
// corrected in place on later imports.
type Offer struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MerchantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_merchant_variant;index:idx_merchant_sku" json:"merchant_id"`
	VariantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_merchant_variant" json:"variant_id"`
	SKU        string    `gorm:"type:varchar(128);not null;index:idx_merchant_sku" json:"sku"`
	Status     string    `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Merchant is a seller account that owns offers, locations and stock.
type Merchant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(256);not null" json:"name"`
	Email     string    `gorm:"type:varchar(256)" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Product is a catalog product, identified by a short alphanumeric code
// (letters followed by digits, e.g. "AB1234").
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Name      string    `gorm:"type:varchar(256);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Variant is the canonical sellable unit of a product: one size/color
// combination. Variants are managed by the catalog; the import pipeline
// only reads them.
type Variant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_product_size_color;index" json:"product_id"`
	Size      string    `gorm:"type:varchar(64);not null;uniqueIndex:uniq_product_size_color" json:"size"`
	ColorCode string    `gorm:"type:varchar(128);not null;uniqueIndex:uniq_product_size_color" json:"color_code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

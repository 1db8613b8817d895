package repository

import (
	"context"

	"stock-import-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OfferRepository defines data access for merchant offers.
type OfferRepository interface {
	FindByMerchantSKU(ctx context.Context, merchantID uuid.UUID, sku string) (*models.Offer, error)
	FindByMerchantVariant(ctx context.Context, merchantID, variantID uuid.UUID) (*models.Offer, error)
	UpdateSKU(ctx context.Context, offerID uuid.UUID, sku string) error
	Upsert(ctx context.Context, offer *models.Offer) error
	FindByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Offer, error)
}

// GormOfferRepository implements OfferRepository using GORM.
type GormOfferRepository struct {
	db *gorm.DB
}

// NewGormOfferRepository creates a new GormOfferRepository.
func NewGormOfferRepository(db *gorm.DB) OfferRepository {
	return &GormOfferRepository{db: db}
}

// FindByMerchantSKU retrieves the offer a merchant lists under the given
// SKU. This is the fast path for re-imports of known SKUs.
func (r *GormOfferRepository) FindByMerchantSKU(ctx context.Context, merchantID uuid.UUID, sku string) (*models.Offer, error) {
	var o models.Offer
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND sku = ?", merchantID, sku).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByMerchantVariant retrieves the single offer for a (merchant,
// variant) pair.
func (r *GormOfferRepository) FindByMerchantVariant(ctx context.Context, merchantID, variantID uuid.UUID) (*models.Offer, error) {
	var o models.Offer
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND variant_id = ?", merchantID, variantID).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateSKU corrects the merchant SKU of an existing offer in place.
func (r *GormOfferRepository) UpdateSKU(ctx context.Context, offerID uuid.UUID, sku string) error {
	return r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ?", offerID).
		Update("sku", sku).
		Error
}

// Upsert atomically creates the offer or, when another import created it
// first, updates the SKU of the existing row. INSERT ... ON CONFLICT
// keyed on (merchant_id, variant_id) keeps the one-offer-per-pair
// invariant under concurrent imports.
func (r *GormOfferRepository) Upsert(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "merchant_id"}, {Name: "variant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sku", "updated_at"}),
		}).
		Create(offer).Error
}

// FindByMerchant lists a merchant's offers ordered by SKU. Used by the
// export path.
func (r *GormOfferRepository) FindByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("sku ASC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

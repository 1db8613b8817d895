package repository

import (
	"context"

	"stock-import-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository defines data access for stock levels.
type StockRepository interface {
	Upsert(ctx context.Context, stock *models.Stock) error
	FindByOfferLocation(ctx context.Context, offerID, locationID uuid.UUID) (*models.Stock, error)
	FindByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Stock, error)
}

// GormStockRepository implements StockRepository using GORM.
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository.
func NewGormStockRepository(db *gorm.DB) StockRepository {
	return &GormStockRepository{db: db}
}

// Upsert overwrites the stock record for the (offer, location) pair.
// The imported file is the authoritative snapshot, so quantity is set,
// not incremented. Safe to repeat with identical input.
func (r *GormStockRepository) Upsert(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "offer_id"}, {Name: "location_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity", "pos_system", "pos_external_id", "last_synced_at", "updated_at",
			}),
		}).
		Create(stock).Error
}

// FindByOfferLocation retrieves the stock record for one offer at one
// location.
func (r *GormStockRepository) FindByOfferLocation(ctx context.Context, offerID, locationID uuid.UUID) (*models.Stock, error) {
	var s models.Stock
	err := r.db.WithContext(ctx).
		Where("offer_id = ? AND location_id = ?", offerID, locationID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByMerchant lists all stock records belonging to a merchant's
// offers. Used by the export path.
func (r *GormStockRepository) FindByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Stock, error) {
	var stocks []models.Stock
	err := r.db.WithContext(ctx).
		Joins("JOIN offers ON offers.id = stocks.offer_id").
		Where("offers.merchant_id = ?", merchantID).
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

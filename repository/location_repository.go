package repository

import (
	"context"

	"stock-import-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationRepository defines data access for merchant stock locations.
type LocationRepository interface {
	FindDefault(ctx context.Context, merchantID uuid.UUID, locType models.LocationType) (*models.Location, error)
	FindActiveByType(ctx context.Context, merchantID uuid.UUID, locType models.LocationType) (*models.Location, error)
	Create(ctx context.Context, location *models.Location) error
	FindByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Location, error)
}

// GormLocationRepository implements LocationRepository using GORM.
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository.
func NewGormLocationRepository(db *gorm.DB) LocationRepository {
	return &GormLocationRepository{db: db}
}

// FindDefault retrieves the merchant's default location of the given
// type.
func (r *GormLocationRepository) FindDefault(ctx context.Context, merchantID uuid.UUID, locType models.LocationType) (*models.Location, error) {
	var l models.Location
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND type = ? AND is_default = ?", merchantID, locType, true).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindActiveByType retrieves the oldest active location of the given
// type, preferring the default when one exists.
func (r *GormLocationRepository) FindActiveByType(ctx context.Context, merchantID uuid.UUID, locType models.LocationType) (*models.Location, error) {
	var l models.Location
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND type = ? AND active = ?", merchantID, locType, true).
		Order("is_default DESC, created_at ASC").
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a new location. Default locations are guarded by a
// partial unique index on (merchant_id, type) WHERE is_default, so a
// concurrent auto-create surfaces as a unique violation the caller
// resolves by refetching.
func (r *GormLocationRepository) Create(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

// FindByMerchant lists all locations of a merchant, oldest first.
func (r *GormLocationRepository) FindByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at ASC").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

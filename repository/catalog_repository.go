package repository

import (
	"context"
	"strings"

	"stock-import-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository exposes read-only access to products and variants.
// The import pipeline never creates or mutates catalog records.
type CatalogRepository interface {
	FindProductByCode(ctx context.Context, code string) (*models.Product, error)
	FindVariant(ctx context.Context, size, color string) (*models.Variant, error)
	FindVariantLike(ctx context.Context, size, colorPattern string) (*models.Variant, error)
	FindProductVariant(ctx context.Context, productID uuid.UUID, size, color string) (*models.Variant, error)
	FindVariantsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Variant, error)
}

// GormCatalogRepository implements CatalogRepository using GORM.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository.
func NewGormCatalogRepository(db *gorm.DB) CatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindProductByCode retrieves a product by its catalog code
// (case-insensitive).
func (r *GormCatalogRepository) FindProductByCode(ctx context.Context, code string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(code) = ?", strings.ToLower(code)).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindVariant retrieves a variant by exact size and color.
func (r *GormCatalogRepository) FindVariant(ctx context.Context, size, color string) (*models.Variant, error) {
	var v models.Variant
	err := r.db.WithContext(ctx).
		Where("size = ? AND color_code = ?", size, color).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindVariantLike retrieves a variant by case-insensitive size and a
// LIKE pattern on the color code ("%" wildcards already in place).
func (r *GormCatalogRepository) FindVariantLike(ctx context.Context, size, colorPattern string) (*models.Variant, error) {
	var v models.Variant
	err := r.db.WithContext(ctx).
		Where("LOWER(size) = ? AND LOWER(color_code) LIKE ?", strings.ToLower(size), strings.ToLower(colorPattern)).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindVariantsByIDs retrieves the variants for a set of ids.
func (r *GormCatalogRepository) FindVariantsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Variant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var variants []models.Variant
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

// FindProductVariant retrieves a variant of a specific product by
// case-insensitive size and color.
func (r *GormCatalogRepository) FindProductVariant(ctx context.Context, productID uuid.UUID, size, color string) (*models.Variant, error) {
	var v models.Variant
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND LOWER(size) = ? AND LOWER(color_code) = ?",
			productID, strings.ToLower(size), strings.ToLower(color)).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

package services_test

import (
	"context"
	"strings"
	"testing"

	"stock-import-service/models"
	"stock-import-service/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// fakeCatalogRepository is an in-memory CatalogRepository for testing.
type fakeCatalogRepository struct {
	products []models.Product
	variants []models.Variant
}

func (f *fakeCatalogRepository) FindProductByCode(_ context.Context, code string) (*models.Product, error) {
	for i := range f.products {
		if strings.EqualFold(f.products[i].Code, code) {
			return &f.products[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepository) FindVariant(_ context.Context, size, color string) (*models.Variant, error) {
	for i := range f.variants {
		if f.variants[i].Size == size && f.variants[i].ColorCode == color {
			return &f.variants[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepository) FindVariantLike(_ context.Context, size, colorPattern string) (*models.Variant, error) {
	for i := range f.variants {
		if !strings.EqualFold(f.variants[i].Size, size) {
			continue
		}
		if likeMatch(strings.ToLower(f.variants[i].ColorCode), strings.ToLower(colorPattern)) {
			return &f.variants[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepository) FindProductVariant(_ context.Context, productID uuid.UUID, size, color string) (*models.Variant, error) {
	for i := range f.variants {
		v := &f.variants[i]
		if v.ProductID == productID && strings.EqualFold(v.Size, size) && strings.EqualFold(v.ColorCode, color) {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepository) FindVariantsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Variant, error) {
	var out []models.Variant
	for _, id := range ids {
		for i := range f.variants {
			if f.variants[i].ID == id {
				out = append(out, f.variants[i])
			}
		}
	}
	return out, nil
}

// likeMatch evaluates a SQL LIKE pattern whose only wildcard is "%".
func likeMatch(value, pattern string) bool {
	parts := strings.Split(pattern, "%")
	if !strings.HasPrefix(value, parts[0]) {
		return false
	}
	value = value[len(parts[0]):]
	for _, part := range parts[1:] {
		idx := strings.Index(value, part)
		if idx < 0 {
			return false
		}
		value = value[idx+len(part):]
	}
	return strings.HasSuffix(pattern, "%") || strings.HasSuffix(pattern, parts[len(parts)-1]) && value == ""
}

func validatedRow(sku, size, color string) *services.ValidatedRow {
	return &services.ValidatedRow{Line: 2, SKU: sku, Size: size, Color: color, Quantity: 1}
}

func TestVariantResolver_ExactMatch(t *testing.T) {
	want := models.Variant{ID: uuid.New(), ProductID: uuid.New(), Size: "42", ColorCode: "blue"}
	catalog := &fakeCatalogRepository{variants: []models.Variant{want}}
	resolver := services.NewVariantResolver(catalog)

	got, rowErr := resolver.Resolve(context.Background(), validatedRow("SKU-001", "42", "blue"))
	assert.Nil(t, rowErr)
	assert.Equal(t, want.ID, got.ID)
}

func TestVariantResolver_WildcardColorMatch(t *testing.T) {
	// Stored with spaces around the slash; the row carries the compact
	// form. The wildcard tier bridges the difference.
	want := models.Variant{ID: uuid.New(), ProductID: uuid.New(), Size: "M", ColorCode: "White / Black"}
	catalog := &fakeCatalogRepository{variants: []models.Variant{want}}
	resolver := services.NewVariantResolver(catalog)

	got, rowErr := resolver.Resolve(context.Background(), validatedRow("SKU-001", "m", "White/Black"))
	assert.Nil(t, rowErr)
	assert.Equal(t, want.ID, got.ID)
}

func TestVariantResolver_ProductCodeMatch(t *testing.T) {
	product := models.Product{ID: uuid.New(), Code: "AB1234", Name: "Jacket"}
	want := models.Variant{ID: uuid.New(), ProductID: product.ID, Size: "L", ColorCode: "Olive"}
	decoy := models.Variant{ID: uuid.New(), ProductID: uuid.New(), Size: "L", ColorCode: "Olive"}
	catalog := &fakeCatalogRepository{
		products: []models.Product{product},
		variants: []models.Variant{decoy, want},
	}
	resolver := services.NewVariantResolver(catalog)

	// "Olive/Green" matches nothing verbatim or by wildcard; the code
	// prefix in the SKU narrows the search to AB1234's variants, where
	// the part before the "/" matches. The decoy with the same size and
	// color belongs to another product and must not win.
	got, rowErr := resolver.Resolve(context.Background(), validatedRow("AB1234-L", "L", "Olive/Green"))
	assert.Nil(t, rowErr)
	assert.Equal(t, want.ID, got.ID)
}

func TestVariantResolver_NoMatch(t *testing.T) {
	catalog := &fakeCatalogRepository{}
	resolver := services.NewVariantResolver(catalog)

	got, rowErr := resolver.Resolve(context.Background(), validatedRow("SKU-404", "42", "blue"))
	assert.Nil(t, got)
	assert.NotNil(t, rowErr)
	assert.Equal(t, 2, rowErr.Row)
	assert.Contains(t, rowErr.Error, `No variant found for size "42" and color "blue"`)
	assert.Contains(t, rowErr.Error, "Create the variant in the catalog first")
}

func TestVariantResolver_SKUWithoutCodePrefixSkipsProductTier(t *testing.T) {
	product := models.Product{ID: uuid.New(), Code: "AB1234", Name: "Sneaker"}
	variant := models.Variant{ID: uuid.New(), ProductID: product.ID, Size: "42", ColorCode: "navy blue"}
	catalog := &fakeCatalogRepository{
		products: []models.Product{product},
		variants: []models.Variant{variant},
	}
	resolver := services.NewVariantResolver(catalog)

	// SKU starts with digits, so no product code can be extracted and
	// the row does not resolve through the product tier.
	got, rowErr := resolver.Resolve(context.Background(), validatedRow("1234-AB", "42", "navy/blue"))
	assert.Nil(t, got)
	assert.NotNil(t, rowErr)
}

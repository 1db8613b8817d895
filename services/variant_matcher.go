package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"stock-import-service/models"
	"stock-import-service/repository"

	"gorm.io/gorm"
)

// VariantMatcher is one matching strategy. Match returns the variant,
// or (nil, nil) when the strategy finds nothing; only storage failures
// are returned as errors.
type VariantMatcher interface {
	Match(ctx context.Context, row *ValidatedRow) (*models.Variant, error)
}

// VariantResolver tries an ordered list of matchers and stops at the
// first hit. The pipeline never creates variants: an unmatched row is
// the operator's problem to fix in the catalog.
type VariantResolver struct {
	matchers []VariantMatcher
}

// NewVariantResolver builds the production matcher chain: exact match,
// case-insensitive wildcard match, product-code match.
func NewVariantResolver(catalog repository.CatalogRepository) *VariantResolver {
	return &VariantResolver{
		matchers: []VariantMatcher{
			&exactMatcher{catalog: catalog},
			&wildcardColorMatcher{catalog: catalog},
			&productCodeMatcher{catalog: catalog},
		},
	}
}

// Resolve maps a validated row to exactly one canonical variant.
func (r *VariantResolver) Resolve(ctx context.Context, row *ValidatedRow) (*models.Variant, *models.RowError) {
	for _, m := range r.matchers {
		v, err := m.Match(ctx, row)
		if err != nil {
			return nil, &models.RowError{Row: row.Line, Error: fmt.Sprintf("Variant lookup failed: %v", err)}
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, &models.RowError{
		Row: row.Line,
		Error: fmt.Sprintf("No variant found for size %q and color %q. Create the variant in the catalog first.",
			row.Size, row.Color),
	}
}

// exactMatcher matches on the exact (size, color) pair.
type exactMatcher struct {
	catalog repository.CatalogRepository
}

func (m *exactMatcher) Match(ctx context.Context, row *ValidatedRow) (*models.Variant, error) {
	v, err := m.catalog.FindVariant(ctx, row.Size, row.Color)
	return ignoreNotFound(v, err)
}

// wildcardColorMatcher matches size case-insensitively and treats "/"
// in the color as a wildcard separator, so "White/Black" also matches a
// variant stored as "White / Black".
type wildcardColorMatcher struct {
	catalog repository.CatalogRepository
}

func (m *wildcardColorMatcher) Match(ctx context.Context, row *ValidatedRow) (*models.Variant, error) {
	v, err := m.catalog.FindVariantLike(ctx, row.Size, colorWildcardPattern(row.Color))
	return ignoreNotFound(v, err)
}

// colorWildcardPattern turns "White/Black" into the LIKE pattern
// "white%black".
func colorWildcardPattern(color string) string {
	parts := strings.Split(color, "/")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, "%")
}

// productCodePattern extracts an embedded product code (a letter
// sequence followed by digits) from the start of a merchant SKU.
var productCodePattern = regexp.MustCompile(`^([A-Za-z]+[0-9]+)`)

// productCodeMatcher narrows the search to the product named by a code
// prefix in the merchant SKU (e.g. "AB1234-XL"), then retries the color
// with "/" rewritten as a space, as a hyphen, and as only the part
// before the first "/".
type productCodeMatcher struct {
	catalog repository.CatalogRepository
}

func (m *productCodeMatcher) Match(ctx context.Context, row *ValidatedRow) (*models.Variant, error) {
	code := productCodePattern.FindString(row.SKU)
	if code == "" {
		return nil, nil
	}

	product, err := m.catalog.FindProductByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	for _, color := range colorCandidates(row.Color) {
		v, err := m.catalog.FindProductVariant(ctx, product.ID, row.Size, color)
		v, err = ignoreNotFound(v, err)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

// colorCandidates generates the color rewrites tried within a product:
// "/" as a space, "/" as a hyphen, and the substring before the first
// "/". The original string is tried first.
func colorCandidates(color string) []string {
	candidates := []string{color}
	if strings.Contains(color, "/") {
		candidates = append(candidates,
			strings.ReplaceAll(color, "/", " "),
			strings.ReplaceAll(color, "/", "-"),
			strings.TrimSpace(strings.SplitN(color, "/", 2)[0]),
		)
	}
	return candidates
}

func ignoreNotFound(v *models.Variant, err error) (*models.Variant, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

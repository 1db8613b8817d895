package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"stock-import-service/models"
)

// thousandsPattern flags quantities like "1,000": a trailing comma
// group of exactly three digits reads as a thousands separator to some
// merchants and as a decimal to others, so it is rejected rather than
// guessed at.
var thousandsPattern = regexp.MustCompile(`,\d{3}$`)

// ValidatedRow is one import row after type coercion and validation.
type ValidatedRow struct {
	Line          int
	SKU           string
	Size          string
	Color         string
	Quantity      int
	LocationType  models.LocationType
	PosSystem     models.PosSystem
	PosExternalID string
}

// RowValidator coerces normalized records into validated rows and
// tracks duplicates across the whole batch. One instance per batch.
type RowValidator struct {
	seen map[string]bool
}

// NewRowValidator creates a validator with an empty duplicate tracker.
func NewRowValidator() *RowValidator {
	return &RowValidator{seen: make(map[string]bool)}
}

// Validate returns either a validated row or a row error carrying the
// record's source line. It never fails the batch: a bad row is a
// result, not an abort.
func (v *RowValidator) Validate(rec Record) (*ValidatedRow, *models.RowError) {
	fail := func(format string, args ...interface{}) (*ValidatedRow, *models.RowError) {
		return nil, &models.RowError{Row: rec.Line, Error: fmt.Sprintf(format, args...)}
	}

	sku := strings.TrimSpace(rec.Fields[ColSKU])
	if sku == "" {
		return fail("Missing required field: sku")
	}
	size := strings.TrimSpace(rec.Fields[ColSize])
	if size == "" {
		return fail("Missing required field: size")
	}
	color := strings.TrimSpace(rec.Fields[ColColor])
	if color == "" {
		return fail("Missing required field: color")
	}

	// Track the row identity as soon as it is known. An invalid first
	// occurrence must still claim the key, so a later duplicate is
	// rejected rather than silently imported.
	key := duplicateKey(sku, size, color)
	if v.seen[key] {
		return fail("Duplicate row for sku %s, size %s, color %s", sku, size, color)
	}
	v.seen[key] = true

	rawQty := strings.TrimSpace(rec.Fields[ColQuantity])
	if rawQty == "" {
		return fail("Missing required field: quantity")
	}
	if thousandsPattern.MatchString(rawQty) {
		return fail("Ambiguous stock value: %s (thousands separators are not supported)", rawQty)
	}
	qty, ok := parseQuantity(rawQty)
	if !ok {
		return fail("Invalid stock value: %s (must be >= 0)", rawQty)
	}

	locType := models.LocationTypeWarehouse
	if raw := strings.TrimSpace(rec.Fields[ColLocationType]); raw != "" {
		locType = models.LocationType(strings.ToLower(raw))
		if !models.ValidLocationType(locType) {
			return fail("Invalid location type: %s (must be one of store, warehouse, 3pl)", raw)
		}
	}

	posSystem := models.PosSystemNone
	if raw := strings.TrimSpace(rec.Fields[ColPosSystem]); raw != "" {
		posSystem = models.PosSystem(strings.ToLower(raw))
		if !models.ValidPosSystem(posSystem) {
			return fail("Invalid POS system: %s (must be one of none, lightspeed, square, shopify)", raw)
		}
	}

	return &ValidatedRow{
		Line:          rec.Line,
		SKU:           sku,
		Size:          size,
		Color:         color,
		Quantity:      qty,
		LocationType:  locType,
		PosSystem:     posSystem,
		PosExternalID: strings.TrimSpace(rec.Fields[ColPosExternalID]),
	}, nil
}

// parseQuantity parses a stock quantity. A decimal comma is normalized
// to a dot before parsing; the value must be a non-negative whole
// number ("10", "10,0" and "10.0" all yield 10).
func parseQuantity(raw string) (int, bool) {
	normalized := strings.ReplaceAll(raw, ",", ".")
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil || f < 0 || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func duplicateKey(sku, size, color string) string {
	return strings.ToLower(sku) + "\x00" + strings.ToLower(size) + "\x00" + strings.ToLower(color)
}

package services

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Canonical column keys produced by the normalizer. Everything
// downstream of header normalization works with these keys only.
const (
	ColSKU           = "sku"
	ColSize          = "size"
	ColColor         = "color"
	ColQuantity      = "quantity"
	ColLocationType  = "location_type"
	ColPosSystem     = "pos_system"
	ColPosExternalID = "pos_external_id"

	// colIgnored marks headers that belong to the legacy product-import
	// format. Their cells are stripped before validation so they cannot
	// be misread as stock data.
	colIgnored = "_ignored"
)

// AliasTable maps normalized header names to canonical column keys. It
// is immutable configuration: build one with DefaultAliasTable (or a
// custom table in tests) and pass it to the normalizer.
type AliasTable map[string]string

// DefaultAliasTable returns the production header alias configuration.
func DefaultAliasTable() AliasTable {
	return AliasTable{
		"sku":            ColSKU,
		"creatorsku":     ColSKU,
		"merchantsku":    ColSKU,
		"sellersku":      ColSKU,
		"article":        ColSKU,
		"size":           ColSize,
		"variantsize":    ColSize,
		"maat":           ColSize,
		"color":          ColColor,
		"colour":         ColColor,
		"variantcolor":   ColColor,
		"kleur":          ColColor,
		"quantity":       ColQuantity,
		"stock":          ColQuantity,
		"stockquantity":  ColQuantity,
		"qty":            ColQuantity,
		"amount":         ColQuantity,
		"locationtype":   ColLocationType,
		"location":       ColLocationType,
		"possystem":      ColPosSystem,
		"pos":            ColPosSystem,
		"posexternalid":  ColPosExternalID,
		"posid":          ColPosExternalID,
		"externalid":     ColPosExternalID,

		// Legacy product-import columns. Recognized so they can be
		// dropped, not interpreted.
		"price":       colIgnored,
		"saleprice":   colIgnored,
		"cost":        colIgnored,
		"costprice":   colIgnored,
		"ean":         colIgnored,
		"barcode":     colIgnored,
		"description": colIgnored,
		"name":        colIgnored,
		"title":       colIgnored,
		"brand":       colIgnored,
		"category":    colIgnored,
		"categories":  colIgnored,
		"imageurl":    colIgnored,
		"image":       colIgnored,
	}
}

// Record is one normalized data row: canonical key -> raw cell value,
// plus the 1-based line number in the source file (header is line 1).
type Record struct {
	Line   int
	Fields map[string]string
}

// BatchError is a batch-fatal condition: the file could not be parsed
// at all and no rows were processed.
type BatchError struct {
	Reason string
}

func (e *BatchError) Error() string { return e.Reason }

// Normalizer turns raw tabular text into canonical records.
type Normalizer struct {
	aliases AliasTable
}

// NewNormalizer creates a Normalizer with the given alias table.
func NewNormalizer(aliases AliasTable) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// Normalize parses the file and returns one record per non-empty data
// row plus batch warnings (ignored legacy columns). A parse failure is
// returned as *BatchError and yields no records.
func (n *Normalizer) Normalize(r io.Reader) ([]Record, []string, error) {
	br := bufio.NewReader(r)
	headerLine, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, nil, &BatchError{Reason: fmt.Sprintf("failed to read header row: %v", err)}
	}
	if strings.TrimSpace(headerLine) == "" {
		return nil, nil, &BatchError{Reason: "file has no header row"}
	}

	delimiter := sniffDelimiter(headerLine)
	if delimiter == 0 {
		return nil, nil, &BatchError{Reason: "could not detect a column delimiter in the header row"}
	}

	reader := csv.NewReader(io.MultiReader(strings.NewReader(headerLine), br))
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, &BatchError{Reason: fmt.Sprintf("failed to parse header row: %v", err)}
	}

	// Map each column index to its canonical key; unknown and legacy
	// columns map to "", meaning the cell is dropped.
	keys := make([]string, len(headers))
	var ignored []string
	for i, h := range headers {
		normalized := normalizeHeader(h)
		canonical, ok := n.aliases[normalized]
		if !ok {
			continue
		}
		if canonical == colIgnored {
			ignored = append(ignored, strings.TrimSpace(h))
			continue
		}
		keys[i] = canonical
	}

	var warnings []string
	if len(ignored) > 0 {
		sort.Strings(ignored)
		warnings = append(warnings, fmt.Sprintf(
			"ignored columns from an unrelated import format: %s", strings.Join(ignored, ", ")))
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &BatchError{Reason: fmt.Sprintf("malformed row at line %d: %v", parseErrorLine(err), err)}
		}

		// The csv reader silently swallows blank lines, so the source
		// line must come from the reader, not from a record counter.
		line, _ := reader.FieldPos(0)

		fields := make(map[string]string)
		for i, cell := range row {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			fields[keys[i]] = cell
		}
		if rowEmpty(fields) {
			continue
		}
		records = append(records, Record{Line: line, Fields: fields})
	}

	return records, warnings, nil
}

// parseErrorLine extracts the source line from a csv parse error.
func parseErrorLine(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}

// sniffDelimiter picks the delimiter that occurs most often in the
// header line. Returns 0 when none occurs at all.
func sniffDelimiter(header string) rune {
	best, bestCount := rune(0), 0
	for _, c := range []rune{',', ';', '\t'} {
		if n := strings.Count(header, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// normalizeHeader lowercases a header and strips spaces, underscores
// and hyphens so "Creator_SKU", "creator sku" and "creatorsku" all
// match the same alias.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func rowEmpty(fields map[string]string) bool {
	for _, v := range fields {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

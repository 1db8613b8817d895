package services_test

import (
	"strings"
	"testing"

	"stock-import-service/services"

	"github.com/stretchr/testify/assert"
)

func newNormalizer() *services.Normalizer {
	return services.NewNormalizer(services.DefaultAliasTable())
}

func TestNormalizer_CanonicalHeaders(t *testing.T) {
	n := newNormalizer()

	input := "sku,size,color,quantity,location_type,pos_system,pos_external_id\n" +
		"SKU-001,42,blue,10,warehouse,none,ext-1\n"

	records, warnings, err := n.Normalize(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 2, rec.Line)
	assert.Equal(t, "SKU-001", rec.Fields[services.ColSKU])
	assert.Equal(t, "42", rec.Fields[services.ColSize])
	assert.Equal(t, "blue", rec.Fields[services.ColColor])
	assert.Equal(t, "10", rec.Fields[services.ColQuantity])
	assert.Equal(t, "warehouse", rec.Fields[services.ColLocationType])
	assert.Equal(t, "none", rec.Fields[services.ColPosSystem])
	assert.Equal(t, "ext-1", rec.Fields[services.ColPosExternalID])
}

func TestNormalizer_HeaderAliases(t *testing.T) {
	n := newNormalizer()

	// Aliased, mixed-case and underscore/space variants all map to the
	// same canonical keys.
	input := "Creator_SKU,Maat,Kleur,Stock Quantity\n" +
		"AB1234-M,M,Groen,5\n"

	records, _, err := n.Normalize(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "AB1234-M", records[0].Fields[services.ColSKU])
	assert.Equal(t, "M", records[0].Fields[services.ColSize])
	assert.Equal(t, "Groen", records[0].Fields[services.ColColor])
	assert.Equal(t, "5", records[0].Fields[services.ColQuantity])
}

func TestNormalizer_LegacyColumnsIgnoredWithWarning(t *testing.T) {
	n := newNormalizer()

	input := "sku,size,color,quantity,price,ean\n" +
		"SKU-001,42,blue,10,19.99,8712345678901\n"

	records, warnings, err := n.Normalize(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, records, 1)

	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "ignored columns")
	assert.Contains(t, warnings[0], "ean")
	assert.Contains(t, warnings[0], "price")

	_, hasPrice := records[0].Fields["price"]
	assert.False(t, hasPrice, "legacy cells must not survive normalization")
}

func TestNormalizer_SemicolonDelimiter(t *testing.T) {
	n := newNormalizer()

	input := "sku;size;color;quantity\nSKU-001;42;blue;10\n"

	records, _, err := n.Normalize(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "blue", records[0].Fields[services.ColColor])
}

func TestNormalizer_TabDelimiter(t *testing.T) {
	n := newNormalizer()

	input := "sku\tsize\tcolor\tquantity\nSKU-001\t42\tblue\t10\n"

	records, _, err := n.Normalize(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "SKU-001", records[0].Fields[services.ColSKU])
}

func TestNormalizer_EmptyRowsDropped(t *testing.T) {
	n := newNormalizer()

	input := "sku,size,color,quantity\n" +
		"SKU-001,42,blue,10\n" +
		",,,\n" +
		"SKU-002,43,red,3\n"

	records, _, err := n.Normalize(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, 4, records[1].Line, "line numbers track the source file, not the record index")
}

func TestNormalizer_BlankLinesDoNotShiftLineNumbers(t *testing.T) {
	n := newNormalizer()

	// A truly blank line (not an empty-celled row) is swallowed by the
	// csv reader; the rows after it must still carry their real source
	// line numbers.
	input := "sku,size,color,quantity\n" +
		"\n" +
		"SKU-001,42,blue,10\n" +
		"\n" +
		"SKU-002,43,red,3\n"

	records, _, err := n.Normalize(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 3, records[0].Line)
	assert.Equal(t, 5, records[1].Line)
}

func TestNormalizer_MalformedRowIsBatchFatal(t *testing.T) {
	n := newNormalizer()

	input := "sku,size,color,quantity\n" +
		"SKU-001,42,\"unterminated,10\n"

	records, _, err := n.Normalize(strings.NewReader(input))
	assert.Error(t, err)
	assert.Nil(t, records)

	var batchErr *services.BatchError
	assert.ErrorAs(t, err, &batchErr)
}

func TestNormalizer_NoDelimiterIsBatchFatal(t *testing.T) {
	n := newNormalizer()

	_, _, err := n.Normalize(strings.NewReader("this is not a csv file\n"))
	assert.Error(t, err)

	var batchErr *services.BatchError
	assert.ErrorAs(t, err, &batchErr)
	assert.Contains(t, batchErr.Reason, "delimiter")
}

func TestNormalizer_EmptyFileIsBatchFatal(t *testing.T) {
	n := newNormalizer()

	_, _, err := n.Normalize(strings.NewReader(""))
	assert.Error(t, err)

	var batchErr *services.BatchError
	assert.ErrorAs(t, err, &batchErr)
}

package models

// RowError describes why a single CSV row was rejected. Row is the
// 1-based line number in the uploaded file (the header is line 1).
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// RowSuccess describes one reconciled row.
type RowSuccess struct {
	SKU          string `json:"sku"`
	VariantLabel string `json:"variant"`
}

// ImportSummary is the full accounting returned for one import call.
// Errors is capped; ErrorsTruncated is set when rows failed beyond the
// cap.
type ImportSummary struct {
	RowsTotal       int          `json:"rows_total"`
	RowsSucceeded   int          `json:"rows_succeeded"`
	RowsFailed      int          `json:"rows_failed"`
	Errors          []RowError   `json:"errors"`
	ErrorsTruncated bool         `json:"errors_truncated,omitempty"`
	Successes       []RowSuccess `json:"successes,omitempty"`
	Warnings        []string     `json:"warnings,omitempty"`
}

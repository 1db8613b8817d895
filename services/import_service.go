package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"stock-import-service/models"
	"stock-import-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// MaxBatchRows bounds worst-case resource usage per import. Checked
	// before any row is processed.
	MaxBatchRows = 10000

	// maxReportedErrors caps the itemized error list in the summary so
	// very large batches keep the response bounded.
	maxReportedErrors = 100
)

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

// ImportService reconciles uploaded stock snapshots into offers,
// locations and stock records.
type ImportService interface {
	ImportStock(ctx context.Context, merchantID uuid.UUID, file io.Reader) (*models.ImportSummary, *ServiceError)
}

type importServiceImpl struct {
	normalizer *Normalizer
	resolver   *VariantResolver
	offers     repository.OfferRepository
	locations  repository.LocationRepository
	stocks     repository.StockRepository
	logger     *zap.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(
	normalizer *Normalizer,
	resolver *VariantResolver,
	offers repository.OfferRepository,
	locations repository.LocationRepository,
	stocks repository.StockRepository,
	logger *zap.Logger,
) ImportService {
	return &importServiceImpl{
		normalizer: normalizer,
		resolver:   resolver,
		offers:     offers,
		locations:  locations,
		stocks:     stocks,
		logger:     logger,
	}
}

// ImportStock runs the full pipeline over one uploaded file. Rows are
// processed sequentially and independently: a bad row is recorded and
// the batch continues. Only an unparseable file or an oversized batch
// rejects the whole import.
func (s *importServiceImpl) ImportStock(ctx context.Context, merchantID uuid.UUID, file io.Reader) (*models.ImportSummary, *ServiceError) {
	start := time.Now()

	records, warnings, err := s.normalizer.Normalize(file)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Failed to parse file: " + err.Error()}
	}
	if len(records) > MaxBatchRows {
		return nil, &ServiceError{
			StatusCode: 413,
			Message:    fmt.Sprintf("Too many rows: %d (max %d per import)", len(records), MaxBatchRows),
		}
	}

	summary := &models.ImportSummary{
		RowsTotal: len(records),
		Warnings:  warnings,
		Errors:    []models.RowError{},
	}
	validator := NewRowValidator()

	for _, rec := range records {
		row, rowErr := validator.Validate(rec)
		if rowErr == nil {
			rowErr = s.reconcileRow(ctx, merchantID, row)
		}
		if rowErr != nil {
			summary.RowsFailed++
			if len(summary.Errors) < maxReportedErrors {
				summary.Errors = append(summary.Errors, *rowErr)
			} else {
				summary.ErrorsTruncated = true
			}
			continue
		}
		summary.RowsSucceeded++
		if len(summary.Successes) < maxReportedErrors {
			summary.Successes = append(summary.Successes, models.RowSuccess{
				SKU:          row.SKU,
				VariantLabel: row.Size + "/" + row.Color,
			})
		}
	}

	s.logger.Info("stock import finished",
		zap.String("merchant_id", merchantID.String()),
		zap.Int("rows_total", summary.RowsTotal),
		zap.Int("rows_succeeded", summary.RowsSucceeded),
		zap.Int("rows_failed", summary.RowsFailed),
		zap.Duration("duration", time.Since(start)),
	)

	if summary.RowsTotal > 0 && summary.RowsSucceeded == 0 {
		return summary, &ServiceError{StatusCode: 422, Message: "No rows could be imported"}
	}
	return summary, nil
}

// reconcileRow runs stages 3-6 for one validated row.
func (s *importServiceImpl) reconcileRow(ctx context.Context, merchantID uuid.UUID, row *ValidatedRow) *models.RowError {
	offer, rowErr := s.resolveOffer(ctx, merchantID, row)
	if rowErr != nil {
		return rowErr
	}

	location, rowErr := s.resolveLocation(ctx, merchantID, row)
	if rowErr != nil {
		return rowErr
	}

	stock := &models.Stock{
		OfferID:       offer.ID,
		LocationID:    location.ID,
		Quantity:      row.Quantity,
		PosSystem:     row.PosSystem,
		PosExternalID: row.PosExternalID,
		LastSyncedAt:  time.Now().UTC(),
	}
	if err := s.stocks.Upsert(ctx, stock); err != nil {
		return &models.RowError{Row: row.Line, Error: "Failed to write stock: " + err.Error()}
	}
	return nil
}

// resolveOffer maps (merchant, row) to exactly one offer, creating it
// when absent. The fast path is a direct SKU hit; otherwise the variant
// is resolved and the (merchant, variant) binding wins over whatever
// SKU string the row carries.
func (s *importServiceImpl) resolveOffer(ctx context.Context, merchantID uuid.UUID, row *ValidatedRow) (*models.Offer, *models.RowError) {
	offer, err := s.offers.FindByMerchantSKU(ctx, merchantID, row.SKU)
	if err == nil {
		return offer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.RowError{Row: row.Line, Error: "Offer lookup failed: " + err.Error()}
	}

	variant, rowErr := s.resolver.Resolve(ctx, row)
	if rowErr != nil {
		return nil, rowErr
	}

	offer, err = s.offers.FindByMerchantVariant(ctx, merchantID, variant.ID)
	if err == nil {
		// The merchant renamed their SKU for this variant; correct it in
		// place. SKU strings are not a stable identity once a variant
		// binding exists.
		if offer.SKU != row.SKU {
			if err := s.offers.UpdateSKU(ctx, offer.ID, row.SKU); err != nil {
				return nil, &models.RowError{Row: row.Line, Error: "Failed to update offer SKU: " + err.Error()}
			}
			offer.SKU = row.SKU
		}
		return offer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.RowError{Row: row.Line, Error: "Offer lookup failed: " + err.Error()}
	}

	created := &models.Offer{
		MerchantID: merchantID,
		VariantID:  variant.ID,
		SKU:        row.SKU,
		Status:     models.OfferStatusActive,
	}
	err = s.offers.Upsert(ctx, created)
	if err == nil {
		return created, nil
	}
	if !repository.IsUniqueViolation(err) {
		return nil, &models.RowError{Row: row.Line, Error: "Failed to create offer: " + err.Error()}
	}

	// Lost the creation race: another import just made this offer.
	// Refetch and proceed as if it had been found.
	s.logger.Debug("offer creation race resolved by refetch",
		zap.String("merchant_id", merchantID.String()),
		zap.String("variant_id", variant.ID.String()),
	)
	offer, err = s.offers.FindByMerchantVariant(ctx, merchantID, variant.ID)
	if err != nil {
		return nil, &models.RowError{Row: row.Line, Error: "Offer lookup failed: " + err.Error()}
	}
	if offer.SKU != row.SKU {
		if err := s.offers.UpdateSKU(ctx, offer.ID, row.SKU); err != nil {
			return nil, &models.RowError{Row: row.Line, Error: "Failed to update offer SKU: " + err.Error()}
		}
		offer.SKU = row.SKU
	}
	return offer, nil
}

// resolveLocation finds the stock location the row targets, creating
// the per-type default lazily. Creation failures fail only this row.
func (s *importServiceImpl) resolveLocation(ctx context.Context, merchantID uuid.UUID, row *ValidatedRow) (*models.Location, *models.RowError) {
	find := s.locations.FindActiveByType
	if row.LocationType == models.LocationTypeWarehouse {
		find = s.locations.FindDefault
	}

	location, err := find(ctx, merchantID, row.LocationType)
	if err == nil {
		return location, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.RowError{Row: row.Line, Error: "Location lookup failed: " + err.Error()}
	}

	created := &models.Location{
		MerchantID: merchantID,
		Type:       row.LocationType,
		Name:       models.DefaultLocationName(row.LocationType),
		Active:     true,
		IsDefault:  true,
	}
	err = s.locations.Create(ctx, created)
	if err == nil {
		return created, nil
	}
	if !repository.IsUniqueViolation(err) {
		return nil, &models.RowError{Row: row.Line, Error: "Failed to create location: " + err.Error()}
	}

	// A concurrent import created the default first; use theirs.
	location, err = find(ctx, merchantID, row.LocationType)
	if err != nil {
		return nil, &models.RowError{Row: row.Line, Error: "Location lookup failed: " + err.Error()}
	}
	return location, nil
}

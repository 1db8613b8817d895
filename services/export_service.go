package services

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"stock-import-service/models"
	"stock-import-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportService produces the inverse of an import: the merchant's
// current stock as a CSV snapshot, one row per offer x location.
type ExportService interface {
	ExportStock(ctx context.Context, merchantID uuid.UUID, w io.Writer) *ServiceError
}

type exportServiceImpl struct {
	catalog   repository.CatalogRepository
	offers    repository.OfferRepository
	locations repository.LocationRepository
	stocks    repository.StockRepository
	logger    *zap.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(
	catalog repository.CatalogRepository,
	offers repository.OfferRepository,
	locations repository.LocationRepository,
	stocks repository.StockRepository,
	logger *zap.Logger,
) ExportService {
	return &exportServiceImpl{
		catalog:   catalog,
		offers:    offers,
		locations: locations,
		stocks:    stocks,
		logger:    logger,
	}
}

// ExportStock writes one CSV row per (offer, location) pair. Offers
// with no stock record at a location export as quantity 0.
func (s *exportServiceImpl) ExportStock(ctx context.Context, merchantID uuid.UUID, w io.Writer) *ServiceError {
	offers, err := s.offers.FindByMerchant(ctx, merchantID)
	if err != nil {
		return &ServiceError{StatusCode: 500, Message: "Failed to load offers: " + err.Error()}
	}
	locations, err := s.locations.FindByMerchant(ctx, merchantID)
	if err != nil {
		return &ServiceError{StatusCode: 500, Message: "Failed to load locations: " + err.Error()}
	}
	stocks, err := s.stocks.FindByMerchant(ctx, merchantID)
	if err != nil {
		return &ServiceError{StatusCode: 500, Message: "Failed to load stock: " + err.Error()}
	}

	variantIDs := make([]uuid.UUID, 0, len(offers))
	for _, o := range offers {
		variantIDs = append(variantIDs, o.VariantID)
	}
	variants, err := s.catalog.FindVariantsByIDs(ctx, variantIDs)
	if err != nil {
		return &ServiceError{StatusCode: 500, Message: "Failed to load variants: " + err.Error()}
	}
	variantByID := make(map[uuid.UUID]models.Variant, len(variants))
	for _, v := range variants {
		variantByID[v.ID] = v
	}

	type stockKey struct{ offer, location uuid.UUID }
	stockByKey := make(map[stockKey]models.Stock, len(stocks))
	for _, st := range stocks {
		stockByKey[stockKey{st.OfferID, st.LocationID}] = st
	}

	cw := csv.NewWriter(w)
	header := []string{ColSKU, ColSize, ColColor, ColQuantity, ColLocationType, ColPosSystem, ColPosExternalID}
	if err := cw.Write(header); err != nil {
		return &ServiceError{StatusCode: 500, Message: "Failed to write export: " + err.Error()}
	}

	rows := 0
	for _, o := range offers {
		variant := variantByID[o.VariantID]
		for _, loc := range locations {
			st := stockByKey[stockKey{o.ID, loc.ID}]
			record := []string{
				o.SKU,
				variant.Size,
				variant.ColorCode,
				strconv.Itoa(st.Quantity),
				string(loc.Type),
				string(posSystemOrNone(st.PosSystem)),
				st.PosExternalID,
			}
			if err := cw.Write(record); err != nil {
				return &ServiceError{StatusCode: 500, Message: "Failed to write export: " + err.Error()}
			}
			rows++
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &ServiceError{StatusCode: 500, Message: "Failed to write export: " + err.Error()}
	}

	s.logger.Info("stock export finished",
		zap.String("merchant_id", merchantID.String()),
		zap.Int("rows", rows),
	)
	return nil
}

// posSystemOrNone fills the zero value of a missing stock record.
func posSystemOrNone(p models.PosSystem) models.PosSystem {
	if p == "" {
		return models.PosSystemNone
	}
	return p
}

package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"stock-import-service/models"
	"stock-import-service/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func TestOfferFindByMerchantSKU_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOfferRepository(gormDB)

	merchantID := uuid.New()
	variantID := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "merchant_id", "variant_id", "sku", "status", "created_at", "updated_at"}).
		AddRow(uuid.New(), merchantID, variantID, "SKU-001", models.OfferStatusActive, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "offers"`)).
		WillReturnRows(rows)

	o, err := repo.FindByMerchantSKU(context.Background(), merchantID, "SKU-001")
	assert.NoError(t, err)
	assert.Equal(t, variantID, o.VariantID)
}

func TestOfferFindByMerchantSKU_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOfferRepository(gormDB)

	merchantID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "offers"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	o, err := repo.FindByMerchantSKU(context.Background(), merchantID, "NOPE")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, o)
}

func TestOfferUpsert_OnConflictClause(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOfferRepository(gormDB)

	offer := &models.Offer{
		MerchantID: uuid.New(),
		VariantID:  uuid.New(),
		SKU:        "SKU-001",
		Status:     models.OfferStatusActive,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT ("merchant_id","variant_id") DO UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := repo.Upsert(context.Background(), offer)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferUpdateSKU_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOfferRepository(gormDB)

	offerID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "offers"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateSKU(context.Background(), offerID, "NEW-SKU")
	assert.NoError(t, err)
}

func TestOfferFindByMerchant_OrderedBySKU(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOfferRepository(gormDB)

	merchantID := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "merchant_id", "variant_id", "sku", "status", "created_at", "updated_at"}).
		AddRow(uuid.New(), merchantID, uuid.New(), "SKU-001", models.OfferStatusActive, now, now).
		AddRow(uuid.New(), merchantID, uuid.New(), "SKU-002", models.OfferStatusActive, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "offers" WHERE merchant_id = $1 ORDER BY sku ASC`)).
		WithArgs(merchantID).
		WillReturnRows(rows)

	offers, err := repo.FindByMerchant(context.Background(), merchantID)
	assert.NoError(t, err)
	assert.Len(t, offers, 2)
}

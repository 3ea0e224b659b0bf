package services_test

import (
	"testing"
	"time"

	"booth/constants"
	"booth/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Tenant{},
		&models.Booth{},
		&models.Rental{},
		&models.Transaction{},
		&models.User{},
	)
	require.NoError(t, err)
	return db
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func seedTenant(t *testing.T, db *gorm.DB, name string) *models.Tenant {
	tenant := &models.Tenant{Name: name, Code: name}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func seedBooth(t *testing.T, db *gorm.DB, tenantID uint, code string, status int) *models.Booth {
	booth := &models.Booth{
		TenantID:     tenantID,
		Code:         code,
		MonthlyPrice: 100,
		Status:       status,
	}
	require.NoError(t, db.Create(booth).Error)
	return booth
}

func seedRental(t *testing.T, db *gorm.DB, tenantID, boothID uint, status int, startDate, endDate time.Time) *models.Rental {
	rental := &models.Rental{
		TenantID:      tenantID,
		BoothID:       boothID,
		UserID:        7,
		StartDate:     startDate,
		EndDate:       endDate,
		Status:        status,
		TotalAmount:   100,
		PaymentStatus: constants.PaymentStatusPending,
	}
	require.NoError(t, db.Create(rental).Error)
	return rental
}

func seedTransaction(t *testing.T, db *gorm.DB, tenantID uint, provider, externalRef string, rentals []models.Rental) *models.Transaction {
	transaction := &models.Transaction{
		TenantID:    tenantID,
		Provider:    provider,
		ExternalRef: externalRef,
		Amount:      100,
		Currency:    "PLN",
		Status:      constants.PaymentStatusPending,
		Rentals:     rentals,
		// CreatedAt cố định trong quá khứ để không vướng gate min-age
		// khi test chạy với đồng hồ giả
		CreatedAt: date(2024, time.December, 1),
	}
	require.NoError(t, db.Create(transaction).Error)
	return transaction
}

func reloadBooth(t *testing.T, db *gorm.DB, id uint) *models.Booth {
	var booth models.Booth
	require.NoError(t, db.First(&booth, id).Error)
	return &booth
}

func reloadRental(t *testing.T, db *gorm.DB, id uint) *models.Rental {
	var rental models.Rental
	require.NoError(t, db.First(&rental, id).Error)
	return &rental
}

func reloadTransaction(t *testing.T, db *gorm.DB, id uint) *models.Transaction {
	var transaction models.Transaction
	require.NoError(t, db.Preload("Rentals").First(&transaction, id).Error)
	return &transaction
}

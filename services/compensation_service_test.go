package services_test

import (
	"testing"
	"time"

	"booth/constants"
	"booth/models"
	"booth/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompensate_CancelsRentalAndReleasesBooth(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusReserved)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusDraft,
		date(2025, time.January, 1), date(2025, time.March, 31))
	transaction := seedTransaction(t, db, tenant.ID, constants.ProviderStripe, "pi_timeout", []models.Rental{*rental})

	svc := services.NewCompensationService(services.CompensationServiceOptions{DB: db})
	scope := services.TenantScope{TenantID: tenant.ID}

	require.NoError(t, svc.Compensate(scope, transaction, "thanh toán không hoàn tất sau 3 lần kiểm tra"))

	got := reloadRental(t, db, rental.ID)
	assert.Equal(t, constants.RentalStatusCancelled, got.Status)
	assert.Equal(t, "thanh toán không hoàn tất sau 3 lần kiểm tra", got.CancelReason)
	assert.Equal(t, constants.BoothStatusAvailable, reloadBooth(t, db, booth.ID).Status)
}

func TestCompensate_MaintenanceBoothStaysMaintenance(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusMaintenance)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusDraft,
		date(2025, time.January, 1), date(2025, time.March, 31))
	transaction := seedTransaction(t, db, tenant.ID, constants.ProviderStripe, "pi_maint", []models.Rental{*rental})

	svc := services.NewCompensationService(services.CompensationServiceOptions{DB: db})
	require.NoError(t, svc.Compensate(services.TenantScope{TenantID: tenant.ID}, transaction, "timeout"))

	assert.Equal(t, constants.RentalStatusCancelled, reloadRental(t, db, rental.ID).Status)
	assert.Equal(t, constants.BoothStatusMaintenance, reloadBooth(t, db, booth.ID).Status)
}

func TestCompensate_PaidRentalIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusRented)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusActive,
		date(2025, time.January, 1), date(2025, time.March, 31))
	require.NoError(t, db.Model(rental).Updates(map[string]interface{}{
		"is_paid": true, "payment_status": constants.PaymentStatusCompleted,
	}).Error)
	transaction := seedTransaction(t, db, tenant.ID, constants.ProviderStripe, "pi_paid",
		[]models.Rental{*reloadRental(t, db, rental.ID)})

	svc := services.NewCompensationService(services.CompensationServiceOptions{DB: db})
	require.NoError(t, svc.Compensate(services.TenantScope{TenantID: tenant.ID}, transaction, "timeout"))

	// Rental đã thanh toán không được hủy, booth giữ nguyên
	got := reloadRental(t, db, rental.ID)
	assert.Equal(t, constants.RentalStatusActive, got.Status)
	assert.True(t, got.IsPaid)
	assert.Equal(t, constants.BoothStatusRented, reloadBooth(t, db, booth.ID).Status)
}

func TestCompensate_AlreadyCancelledIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusAvailable)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusCancelled,
		date(2025, time.January, 1), date(2025, time.March, 31))
	transaction := seedTransaction(t, db, tenant.ID, constants.ProviderStripe, "pi_cancelled", []models.Rental{*rental})

	svc := services.NewCompensationService(services.CompensationServiceOptions{DB: db})

	// Gọi hai lần liên tiếp đều không được ném lỗi
	require.NoError(t, svc.Compensate(services.TenantScope{TenantID: tenant.ID}, transaction, "timeout"))
	require.NoError(t, svc.Compensate(services.TenantScope{TenantID: tenant.ID}, transaction, "timeout"))

	got := reloadRental(t, db, rental.ID)
	assert.Equal(t, constants.RentalStatusCancelled, got.Status)
	assert.Empty(t, got.CancelReason)
}

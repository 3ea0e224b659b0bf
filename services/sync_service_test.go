package services_test

import (
	"context"
	"testing"
	"time"

	"booth/constants"
	"booth/models"
	"booth/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSyncService(db *gorm.DB, now func() time.Time) *services.SyncService {
	return services.NewSyncService(services.SyncServiceOptions{DB: db, Now: now})
}

// markPaid đánh dấu rental đã thanh toán xong, như sau khi settle
func markPaid(t *testing.T, db *gorm.DB, rentalID uint) {
	t.Helper()
	require.NoError(t, db.Model(&models.Rental{}).Where("id = ?", rentalID).Updates(map[string]interface{}{
		"is_paid":        true,
		"payment_status": constants.PaymentStatusCompleted,
	}).Error)
}

func TestExpireRentals_MovesPastRentalsToExpired(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusRented)

	today := date(2025, time.January, 2)
	past := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusActive,
		date(2024, time.December, 1), date(2025, time.January, 1))
	endsToday := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusActive,
		date(2024, time.December, 1), today)

	svc := newSyncService(db, func() time.Time { return today.Add(30 * time.Minute) })

	expired, err := svc.ExpireRentals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	assert.Equal(t, constants.RentalStatusExpired, reloadRental(t, db, past.ID).Status)
	// Rental kết thúc hôm nay vẫn còn hiệu lực hết ngày
	assert.Equal(t, constants.RentalStatusActive, reloadRental(t, db, endsToday.ID).Status)
}

func TestDailySync_ExpiredRentalFreesBooth(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusRented)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusActive,
		date(2024, time.December, 1), date(2025, time.January, 1))
	markPaid(t, db, rental.ID)

	svc := newSyncService(db, func() time.Time { return date(2025, time.January, 2) })

	expired, err := svc.ExpireRentals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	changed, err := svc.SyncBoothStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, constants.BoothStatusAvailable, reloadBooth(t, db, booth.ID).Status)

	// Điểm bất động: chạy lại không sinh thêm thay đổi nào
	expired, err = svc.ExpireRentals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, expired)

	changed, err = svc.SyncBoothStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestSyncBoothStatuses_RentsBoothWithCurrentPaidRental(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusAvailable)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusActive,
		date(2025, time.January, 1), date(2025, time.March, 31))
	markPaid(t, db, rental.ID)

	svc := newSyncService(db, func() time.Time { return date(2025, time.February, 10) })

	changed, err := svc.SyncBoothStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, constants.BoothStatusRented, reloadBooth(t, db, booth.ID).Status)
}

func TestSyncBoothStatuses_ReservesBoothWithFuturePaidRental(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusAvailable)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusActive,
		date(2025, time.March, 1), date(2025, time.May, 31))
	markPaid(t, db, rental.ID)

	svc := newSyncService(db, func() time.Time { return date(2025, time.February, 10) })

	changed, err := svc.SyncBoothStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, constants.BoothStatusReserved, reloadBooth(t, db, booth.ID).Status)
}

func TestSyncBoothStatuses_UnpaidRentalDoesNotHoldBooth(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusReserved)

	// Draft chưa thanh toán không được giữ booth
	seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusDraft,
		date(2025, time.January, 1), date(2025, time.March, 31))

	svc := newSyncService(db, func() time.Time { return date(2025, time.February, 10) })

	changed, err := svc.SyncBoothStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, constants.BoothStatusAvailable, reloadBooth(t, db, booth.ID).Status)
}

func TestSyncBoothStatuses_MaintenanceBoothUntouched(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusMaintenance)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusActive,
		date(2025, time.January, 1), date(2025, time.March, 31))
	markPaid(t, db, rental.ID)

	svc := newSyncService(db, func() time.Time { return date(2025, time.February, 10) })

	changed, err := svc.SyncBoothStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
	assert.Equal(t, constants.BoothStatusMaintenance, reloadBooth(t, db, booth.ID).Status)
}

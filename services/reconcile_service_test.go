package services_test

import (
	"context"
	"testing"
	"time"

	"booth/constants"
	"booth/gateways"
	"booth/models"
	"booth/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeGateway trả về trạng thái theo kịch bản dựng sẵn
type fakeGateway struct {
	provider string
	statuses map[string]string
	errors   map[string]error
	calls    int
}

func (g *fakeGateway) Provider() string { return g.provider }

func (g *fakeGateway) CreatePayment(ctx context.Context, req *gateways.CreatePaymentRequest) (*gateways.CreatePaymentResult, error) {
	return &gateways.CreatePaymentResult{Success: true, ExternalRef: "fake_ref", PaymentURL: "https://pay.example/fake"}, nil
}

func (g *fakeGateway) GetStatus(ctx context.Context, externalRef string) (*gateways.StatusResult, error) {
	g.calls++
	if err, ok := g.errors[externalRef]; ok {
		return nil, err
	}
	return &gateways.StatusResult{NativeStatus: g.statuses[externalRef]}, nil
}

func (g *fakeGateway) VerifyPayment(ctx context.Context, externalRef string, expectedAmount float64) (bool, error) {
	return true, nil
}

func newReconcileService(db *gorm.DB, gw *fakeGateway, now func() time.Time) *services.ReconcileService {
	policy := services.ReconcilePolicy{
		MaxCheckCount: 3,
		CheckInterval: 15 * time.Minute,
		MinAge:        0,
	}
	transactions := services.NewTransactionService(services.TransactionServiceOptions{DB: db, Policy: policy, Now: now})
	settlement := services.NewSettlementService(services.SettlementServiceOptions{DB: db, Now: now})
	compensation := services.NewCompensationService(services.CompensationServiceOptions{DB: db, Now: now})
	return services.NewReconcileService(services.ReconcileServiceOptions{
		Transactions: transactions,
		Settlement:   settlement,
		Compensation: compensation,
		NewGateway: func(provider string) (gateways.Gateway, error) {
			return gw, nil
		},
		Now: now,
	})
}

func TestRunOnce_CompletedTransactionSettles(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusReserved)

	today := date(2025, time.January, 1)
	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusDraft, today, date(2025, time.March, 31))
	transaction := seedTransaction(t, db, tenant.ID, constants.ProviderStripe,
		"rental_ab12cd34_20250101120000", []models.Rental{*rental})

	gw := &fakeGateway{
		provider: constants.ProviderStripe,
		statuses: map[string]string{"rental_ab12cd34_20250101120000": "succeeded"},
	}
	svc := newReconcileService(db, gw, func() time.Time { return today.Add(12 * time.Hour) })

	report, err := svc.RunOnce(context.Background(), constants.ProviderStripe)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 0, report.Compensated)
	assert.Empty(t, report.Errors)

	gotTx := reloadTransaction(t, db, transaction.ID)
	assert.Equal(t, constants.PaymentStatusCompleted, gotTx.Status)
	assert.Equal(t, 1, gotTx.CheckCount)
	assert.NotNil(t, gotTx.LastCheckedAt)

	gotRental := reloadRental(t, db, rental.ID)
	assert.Equal(t, constants.RentalStatusActive, gotRental.Status)
	assert.True(t, gotRental.IsPaid)
	assert.Equal(t, constants.BoothStatusRented, reloadBooth(t, db, booth.ID).Status)
}

func TestRunOnce_BoundedRetriesThenCompensation(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusReserved)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusDraft,
		date(2025, time.January, 1), date(2025, time.March, 31))
	transaction := seedTransaction(t, db, tenant.ID, constants.ProviderStripe, "pi_pending", []models.Rental{*rental})

	gw := &fakeGateway{
		provider: constants.ProviderStripe,
		statuses: map[string]string{"pi_pending": "pending"},
	}

	current := date(2025, time.January, 1)
	svc := newReconcileService(db, gw, func() time.Time { return current })

	// 3 lượt chạy, gateway luôn trả pending
	totalCompensated := 0
	for run := 1; run <= 3; run++ {
		report, err := svc.RunOnce(context.Background(), constants.ProviderStripe)
		require.NoError(t, err)
		totalCompensated += report.Compensated
		current = current.Add(20 * time.Minute)
	}

	gotTx := reloadTransaction(t, db, transaction.ID)
	assert.Equal(t, 3, gotTx.CheckCount)
	assert.True(t, gotTx.Compensated)
	assert.Equal(t, 1, totalCompensated)
	assert.Equal(t, constants.RentalStatusCancelled, reloadRental(t, db, rental.ID).Status)
	assert.Equal(t, constants.BoothStatusAvailable, reloadBooth(t, db, booth.ID).Status)

	// Lượt thứ 4 không chọn lại transaction đã hết ngân sách, không bù trừ lần hai
	report, err := svc.RunOnce(context.Background(), constants.ProviderStripe)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Checked)
	assert.Equal(t, 0, report.Compensated)
}

func TestRunOnce_GatewayErrorConsumesBudget(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusReserved)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusDraft,
		date(2025, time.January, 1), date(2025, time.March, 31))
	transaction := seedTransaction(t, db, tenant.ID, constants.ProviderStripe, "pi_broken", []models.Rental{*rental})

	gw := &fakeGateway{
		provider: constants.ProviderStripe,
		errors:   map[string]error{"pi_broken": assert.AnError},
	}
	svc := newReconcileService(db, gw, func() time.Time { return date(2025, time.January, 1) })

	report, err := svc.RunOnce(context.Background(), constants.ProviderStripe)
	require.NoError(t, err)

	// Lỗi gateway được coi như còn pending nhưng vẫn tiêu ngân sách kiểm tra
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 0, report.Completed)
	gotTx := reloadTransaction(t, db, transaction.ID)
	assert.Equal(t, 1, gotTx.CheckCount)
	assert.Equal(t, constants.PaymentStatusPending, gotTx.Status)
}

func TestRunOnce_MissingRefSkipsGatewayCall(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusReserved)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusDraft,
		date(2025, time.January, 1), date(2025, time.March, 31))
	transaction := seedTransaction(t, db, tenant.ID, constants.ProviderStripe, "", []models.Rental{*rental})

	gw := &fakeGateway{provider: constants.ProviderStripe}
	svc := newReconcileService(db, gw, func() time.Time { return date(2025, time.January, 1) })

	report, err := svc.RunOnce(context.Background(), constants.ProviderStripe)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 0, gw.calls)
	assert.Equal(t, 1, reloadTransaction(t, db, transaction.ID).CheckCount)
}

func TestRunOnce_FailedStatusIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusReserved)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusDraft,
		date(2025, time.January, 1), date(2025, time.March, 31))
	transaction := seedTransaction(t, db, tenant.ID, constants.ProviderPayU, "payu_rejected", []models.Rental{*rental})

	gw := &fakeGateway{
		provider: constants.ProviderPayU,
		statuses: map[string]string{"payu_rejected": "REJECTED"},
	}
	svc := newReconcileService(db, gw, func() time.Time { return date(2025, time.January, 1) })

	report, err := svc.RunOnce(context.Background(), constants.ProviderPayU)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	gotTx := reloadTransaction(t, db, transaction.ID)
	assert.Equal(t, constants.PaymentStatusFailed, gotTx.Status)

	// Trạng thái terminal không được chọn lại ở lượt sau
	report, err = svc.RunOnce(context.Background(), constants.ProviderPayU)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Checked)
}

func TestRunOnce_OneBadTransactionDoesNotBlockOthers(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	boothA := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusReserved)
	boothB := seedBooth(t, db, tenant.ID, "B2", constants.BoothStatusReserved)

	today := date(2025, time.January, 1)
	r1 := seedRental(t, db, tenant.ID, boothA.ID, constants.RentalStatusDraft, today, date(2025, time.March, 31))
	r2 := seedRental(t, db, tenant.ID, boothB.ID, constants.RentalStatusDraft, today, date(2025, time.March, 31))
	seedTransaction(t, db, tenant.ID, constants.ProviderStripe, "pi_bad", []models.Rental{*r1})
	good := seedTransaction(t, db, tenant.ID, constants.ProviderStripe, "pi_good", []models.Rental{*r2})

	gw := &fakeGateway{
		provider: constants.ProviderStripe,
		statuses: map[string]string{"pi_good": "succeeded"},
		errors:   map[string]error{"pi_bad": assert.AnError},
	}
	svc := newReconcileService(db, gw, func() time.Time { return today })

	report, err := svc.RunOnce(context.Background(), constants.ProviderStripe)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, constants.PaymentStatusCompleted, reloadTransaction(t, db, good.ID).Status)
}

func TestRunOnce_GroupsByTenant(t *testing.T) {
	db := setupTestDB(t)
	tenantA := seedTenant(t, db, "tenant-a")
	tenantB := seedTenant(t, db, "tenant-b")
	boothA := seedBooth(t, db, tenantA.ID, "A1", constants.BoothStatusReserved)
	boothB := seedBooth(t, db, tenantB.ID, "B1", constants.BoothStatusReserved)

	today := date(2025, time.January, 1)
	rA := seedRental(t, db, tenantA.ID, boothA.ID, constants.RentalStatusDraft, today, date(2025, time.March, 31))
	rB := seedRental(t, db, tenantB.ID, boothB.ID, constants.RentalStatusDraft, today, date(2025, time.March, 31))
	seedTransaction(t, db, tenantA.ID, constants.ProviderStripe, "pi_a", []models.Rental{*rA})
	seedTransaction(t, db, tenantB.ID, constants.ProviderStripe, "pi_b", []models.Rental{*rB})

	gw := &fakeGateway{
		provider: constants.ProviderStripe,
		statuses: map[string]string{"pi_a": "succeeded", "pi_b": "succeeded"},
	}
	svc := newReconcileService(db, gw, func() time.Time { return today })

	report, err := svc.RunOnce(context.Background(), constants.ProviderStripe)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 2, report.Completed)
	assert.True(t, reloadRental(t, db, rA.ID).IsPaid)
	assert.True(t, reloadRental(t, db, rB.ID).IsPaid)
}

func TestRunOnce_CancelledContextAbortsBetweenTransactions(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "tenant-a")
	booth := seedBooth(t, db, tenant.ID, "B1", constants.BoothStatusReserved)

	rental := seedRental(t, db, tenant.ID, booth.ID, constants.RentalStatusDraft,
		date(2025, time.January, 1), date(2025, time.March, 31))
	seedTransaction(t, db, tenant.ID, constants.ProviderStripe, "pi_ctx", []models.Rental{*rental})

	gw := &fakeGateway{provider: constants.ProviderStripe, statuses: map[string]string{"pi_ctx": "succeeded"}}
	svc := newReconcileService(db, gw, func() time.Time { return date(2025, time.January, 1) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunOnce(ctx, constants.ProviderStripe)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, gw.calls)
}

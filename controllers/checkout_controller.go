package controllers

import (
	"fmt"
	"strconv"
	"time"

	"booth/config"
	"booth/constants"
	"booth/dto"
	"booth/gateways"
	"booth/models"
	"booth/response"
	"booth/services"
	"booth/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CheckoutController luồng tạo rental nháp + khởi tạo thanh toán.
// Việc đối soát kết quả thanh toán do cron đảm nhiệm, không xử lý ở đây.
type CheckoutController struct {
	db                 *gorm.DB
	rentalService      *services.RentalService
	transactionService *services.TransactionService
	newGateway         func(provider string) (gateways.Gateway, error)
}

func NewCheckoutController(db *gorm.DB) *CheckoutController {
	return &CheckoutController{
		db:                 db,
		rentalService:      services.NewRentalService(services.RentalServiceOptions{DB: db}),
		transactionService: services.NewTransactionService(services.TransactionServiceOptions{DB: db}),
		newGateway:         gateways.NewGateway,
	}
}

// Checkout tạo rental Draft cho giỏ booth và khởi tạo thanh toán trên cổng
func (ctl *CheckoutController) Checkout(c *gin.Context) {
	userID := c.GetUint("userID")
	tenantID := c.GetUint("tenantID")
	if tenantID == 0 {
		response.Forbidden(c)
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 0, "Dữ liệu không hợp lệ")
		return
	}

	startDate, endDate, err := validator.ValidateCheckout(&req)
	if err != nil {
		response.Error(c, 0, err.Error())
		return
	}

	scope := services.TenantScope{TenantID: tenantID}
	rentals, total, err := ctl.rentalService.CreateDraftRentals(scope, userID, req.BoothIDs, startDate, endDate)
	if err != nil {
		response.Error(c, 0, err.Error())
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = config.GetEnvDefault("DEFAULT_CURRENCY", "PLN")
	}

	transaction := models.Transaction{
		TenantID:    tenantID,
		Provider:    req.Provider,
		Amount:      total,
		Currency:    currency,
		Description: fmt.Sprintf("Thuê %d booth từ %s đến %s", len(rentals), req.StartDate, req.EndDate),
		Status:      constants.PaymentStatusPending,
		Rentals:     rentals,
	}
	if err := ctl.transactionService.Create(&transaction); err != nil {
		response.ServerError(c)
		return
	}

	gateway, err := ctl.newGateway(req.Provider)
	if err != nil {
		response.Error(c, 0, err.Error())
		return
	}

	rentalIDs := make([]uint, 0, len(rentals))
	for _, r := range rentals {
		rentalIDs = append(rentalIDs, r.ID)
	}

	// Gọi cổng thanh toán. Nếu lỗi thì transaction vẫn nằm trong sổ với
	// ref rỗng, cron đối soát sẽ tiêu ngân sách kiểm tra rồi bù trừ.
	result, err := gateway.CreatePayment(c.Request.Context(), &gateways.CreatePaymentRequest{
		Amount:      total,
		Currency:    currency,
		Description: transaction.Description,
		ReturnURL:   req.ReturnURL,
		Metadata: map[string]string{
			"extOrderId": rentals[0].RentalCode,
		},
	})
	if err != nil {
		response.Error(c, 0, "Không khởi tạo được thanh toán")
		return
	}

	if err := ctl.db.Model(&models.Transaction{}).
		Where("id = ?", transaction.ID).
		Updates(map[string]interface{}{
			"external_ref": result.ExternalRef,
			"payment_url":  result.PaymentURL,
		}).Error; err != nil {
		response.ServerError(c)
		return
	}

	response.Success(c, dto.CheckoutResponse{
		TransactionID: transaction.ID,
		ExternalRef:   result.ExternalRef,
		PaymentURL:    result.PaymentURL,
		Amount:        total,
		Currency:      currency,
		RentalIDs:     rentalIDs,
	})
}

// GetTransaction cho client poll trạng thái thanh toán sau checkout
func (ctl *CheckoutController) GetTransaction(c *gin.Context) {
	tenantID := c.GetUint("tenantID")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, 0, "ID không hợp lệ")
		return
	}

	transaction, err := ctl.transactionService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c)
		return
	}
	if transaction.TenantID != tenantID {
		response.Forbidden(c)
		return
	}

	rentalIDs := make([]uint, 0, len(transaction.Rentals))
	for _, r := range transaction.Rentals {
		rentalIDs = append(rentalIDs, r.ID)
	}

	resp := dto.TransactionResponse{
		ID:          transaction.ID,
		Provider:    transaction.Provider,
		ExternalRef: transaction.ExternalRef,
		Amount:      transaction.Amount,
		Currency:    transaction.Currency,
		Status:      transaction.Status,
		CheckCount:  transaction.CheckCount,
		RentalIDs:   rentalIDs,
	}
	if transaction.LastCheckedAt != nil {
		resp.LastCheckedAt = transaction.LastCheckedAt.Format(time.RFC3339)
	}
	response.Success(c, resp)
}

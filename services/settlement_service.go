package services

import (
	"time"

	"booth/constants"
	"booth/errors"
	"booth/models"
	"booth/services/logger"
	"booth/services/notification"

	"gorm.io/gorm"
)

// SettlementService chốt hệ quả của một transaction đã completed:
// đánh dấu rental đã thanh toán và cập nhật trạng thái booth
type SettlementService struct {
	db       *gorm.DB
	logger   logger.Logger
	notifier notification.Service
	now      func() time.Time
}

// SettlementServiceOptions tham số khởi tạo SettlementService
type SettlementServiceOptions struct {
	DB       *gorm.DB
	Logger   logger.Logger
	Notifier notification.Service
	Now      func() time.Time
}

func NewSettlementService(opts SettlementServiceOptions) *SettlementService {
	if opts.Logger == nil {
		opts.Logger = logger.NewDefaultLogger(logger.InfoLevel)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SettlementService{
		db:       opts.DB,
		logger:   opts.Logger,
		notifier: opts.Notifier,
		now:      opts.Now,
	}
}

// Settle áp hệ quả của transaction completed lên toàn bộ rental gắn với nó.
// Idempotent: rental đã thanh toán rồi thì bỏ qua, gọi lại không phá state.
func (s *SettlementService) Settle(scope TenantScope, transaction *models.Transaction) error {
	now := s.now()
	var firstUserID uint

	for _, linked := range transaction.Rentals {
		// Đọc lại rental dưới scope của tenant để lấy version mới nhất
		var rental models.Rental
		if err := scope.Apply(s.db).First(&rental, linked.ID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				s.logger.Error("rental %d gắn với transaction %d không còn tồn tại", linked.ID, transaction.ID)
				continue
			}
			return errors.NewAppError(errors.ErrCodeDBError, "không đọc được rental khi settle", err)
		}

		if firstUserID == 0 {
			firstUserID = rental.UserID
		}

		// Guard idempotent: đã thanh toán thì không đụng vào nữa
		if rental.IsPaid {
			continue
		}

		state := models.GetRentalState(rental.Status)
		if err := state.Activate(&rental); err != nil {
			s.logger.Error("rental %d không chuyển được sang Active: %v", rental.ID, err)
			continue
		}

		paidDate := now
		if err := s.updateRental(&rental, map[string]interface{}{
			"status":                   rental.Status,
			"is_paid":                  true,
			"paid_amount":              rental.TotalAmount,
			"paid_date":                paidDate,
			"external_transaction_ref": transaction.ExternalRef,
			"payment_status":           constants.PaymentStatusCompleted,
		}); err != nil {
			return err
		}

		if err := s.applyBoothStatus(scope, &rental, now); err != nil {
			return err
		}
	}

	s.publishCompleted(firstUserID, transaction)
	return nil
}

// applyBoothStatus đặt booth sang Rented nếu kỳ thuê đã bắt đầu, ngược lại Reserved.
// Booth đang Maintenance được giữ nguyên.
func (s *SettlementService) applyBoothStatus(scope TenantScope, rental *models.Rental, now time.Time) error {
	var booth models.Booth
	if err := scope.Apply(s.db).First(&booth, rental.BoothID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			s.logger.Error("booth %d của rental %d không còn tồn tại", rental.BoothID, rental.ID)
			return nil
		}
		return errors.NewAppError(errors.ErrCodeDBError, "không đọc được booth khi settle", err)
	}

	if booth.IsMaintenance() {
		s.logger.Warn("booth %d đang bảo trì, giữ nguyên trạng thái dù rental %d đã thanh toán", booth.ID, rental.ID)
		return nil
	}

	expected := constants.BoothStatusReserved
	today := startOfDay(now)
	if !rental.StartDate.After(today) {
		expected = constants.BoothStatusRented
	}

	for attempt := 0; attempt < versionRetries; attempt++ {
		err := updateWithVersion(s.db, &models.Booth{}, booth.ID, booth.Version, map[string]interface{}{
			"status": expected,
		})
		if err == nil {
			return nil
		}
		if err != errors.ErrVersionConflict {
			return err
		}
		if readErr := scope.Apply(s.db).First(&booth, booth.ID).Error; readErr != nil {
			return errors.NewAppError(errors.ErrCodeDBError, "không đọc lại được booth sau conflict", readErr)
		}
		// Operator có thể vừa chuyển booth sang bảo trì giữa chừng
		if booth.IsMaintenance() {
			s.logger.Warn("booth %d vừa chuyển sang bảo trì, bỏ qua cập nhật", booth.ID)
			return nil
		}
	}
	return errors.NewAppError(errors.ErrCodeVersionConflict, "booth bị tranh chấp version quá nhiều lần", nil)
}

func (s *SettlementService) updateRental(rental *models.Rental, updates map[string]interface{}) error {
	for attempt := 0; attempt < versionRetries; attempt++ {
		err := updateWithVersion(s.db, &models.Rental{}, rental.ID, rental.Version, updates)
		if err == nil {
			rental.Version++
			return nil
		}
		if err != errors.ErrVersionConflict {
			return err
		}
		var fresh models.Rental
		if readErr := s.db.First(&fresh, rental.ID).Error; readErr != nil {
			return errors.NewAppError(errors.ErrCodeDBError, "không đọc lại được rental sau conflict", readErr)
		}
		// Rental có thể vừa được settle bởi run khác
		if fresh.IsPaid {
			return nil
		}
		rental.Version = fresh.Version
	}
	return errors.NewAppError(errors.ErrCodeVersionConflict, "rental bị tranh chấp version quá nhiều lần", nil)
}

func (s *SettlementService) publishCompleted(userID uint, transaction *models.Transaction) {
	if s.notifier == nil {
		return
	}
	rentalIDs := make([]uint, 0, len(transaction.Rentals))
	for _, r := range transaction.Rentals {
		rentalIDs = append(rentalIDs, r.ID)
	}
	event := &notification.PaymentEvent{
		Type:        notification.EventPaymentCompleted,
		UserID:      userID,
		ExternalRef: transaction.ExternalRef,
		Amount:      transaction.Amount,
		Currency:    transaction.Currency,
		RentalIDs:   rentalIDs,
		Timestamp:   s.now(),
	}
	if err := s.notifier.SendMessage(event.Build()); err != nil {
		s.logger.Error("không gửi được sự kiện PaymentCompleted cho transaction %d: %v", transaction.ID, err)
	}
}

// startOfDay cắt về 00:00 theo local time
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

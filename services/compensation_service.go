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

// CompensationService bù trừ khi một transaction hết ngân sách kiểm tra
// mà chưa completed: hủy rental và trả booth về Available
type CompensationService struct {
	db       *gorm.DB
	logger   logger.Logger
	notifier notification.Service
	now      func() time.Time
}

// CompensationServiceOptions tham số khởi tạo CompensationService
type CompensationServiceOptions struct {
	DB       *gorm.DB
	Logger   logger.Logger
	Notifier notification.Service
	Now      func() time.Time
}

func NewCompensationService(opts CompensationServiceOptions) *CompensationService {
	if opts.Logger == nil {
		opts.Logger = logger.NewDefaultLogger(logger.InfoLevel)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CompensationService{
		db:       opts.DB,
		logger:   opts.Logger,
		notifier: opts.Notifier,
		now:      opts.Now,
	}
}

// Compensate hủy toàn bộ rental gắn với transaction và trả booth về Available.
// Idempotent: rental đã hủy hoặc đã thanh toán thì bỏ qua, không trả lỗi.
func (s *CompensationService) Compensate(scope TenantScope, transaction *models.Transaction, reason string) error {
	var firstUserID uint

	for _, linked := range transaction.Rentals {
		var rental models.Rental
		if err := scope.Apply(s.db).First(&rental, linked.ID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				s.logger.Error("rental %d gắn với transaction %d không còn tồn tại", linked.ID, transaction.ID)
				continue
			}
			return errors.NewAppError(errors.ErrCodeDBError, "không đọc được rental khi bù trừ", err)
		}

		if firstUserID == 0 {
			firstUserID = rental.UserID
		}

		// Rental đã thanh toán hoặc đã ở trạng thái terminal: no-op
		if rental.IsPaid || rental.Status == constants.RentalStatusCancelled ||
			rental.Status == constants.RentalStatusExpired {
			continue
		}

		state := models.GetRentalState(rental.Status)
		if err := state.Cancel(&rental); err != nil {
			s.logger.Warn("rental %d không hủy được: %v", rental.ID, err)
			continue
		}

		if err := s.cancelRental(&rental, reason); err != nil {
			return err
		}

		if err := s.releaseBooth(scope, rental.BoothID); err != nil {
			return err
		}
	}

	s.publishFailed(firstUserID, transaction)
	return nil
}

func (s *CompensationService) cancelRental(rental *models.Rental, reason string) error {
	for attempt := 0; attempt < versionRetries; attempt++ {
		err := updateWithVersion(s.db, &models.Rental{}, rental.ID, rental.Version, map[string]interface{}{
			"status":        constants.RentalStatusCancelled,
			"cancel_reason": reason,
		})
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
		// Có thể settlement vừa chạy trước: rental đã thanh toán thì không hủy nữa
		if fresh.IsPaid || fresh.Status == constants.RentalStatusCancelled {
			return nil
		}
		rental.Version = fresh.Version
	}
	return errors.NewAppError(errors.ErrCodeVersionConflict, "rental bị tranh chấp version quá nhiều lần", nil)
}

// releaseBooth trả booth về Available, booth đang Maintenance giữ nguyên
func (s *CompensationService) releaseBooth(scope TenantScope, boothID uint) error {
	var booth models.Booth
	if err := scope.Apply(s.db).First(&booth, boothID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			s.logger.Error("booth %d không còn tồn tại khi bù trừ", boothID)
			return nil
		}
		return errors.NewAppError(errors.ErrCodeDBError, "không đọc được booth khi bù trừ", err)
	}

	if booth.IsMaintenance() {
		s.logger.Warn("booth %d đang bảo trì, không trả về Available", booth.ID)
		return nil
	}
	if booth.Status == constants.BoothStatusAvailable {
		return nil
	}

	for attempt := 0; attempt < versionRetries; attempt++ {
		err := updateWithVersion(s.db, &models.Booth{}, booth.ID, booth.Version, map[string]interface{}{
			"status": constants.BoothStatusAvailable,
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
		if booth.IsMaintenance() || booth.Status == constants.BoothStatusAvailable {
			return nil
		}
	}
	return errors.NewAppError(errors.ErrCodeVersionConflict, "booth bị tranh chấp version quá nhiều lần", nil)
}

func (s *CompensationService) publishFailed(userID uint, transaction *models.Transaction) {
	if s.notifier == nil {
		return
	}
	rentalIDs := make([]uint, 0, len(transaction.Rentals))
	for _, r := range transaction.Rentals {
		rentalIDs = append(rentalIDs, r.ID)
	}
	event := &notification.PaymentEvent{
		Type:        notification.EventPaymentFailed,
		UserID:      userID,
		ExternalRef: transaction.ExternalRef,
		Amount:      transaction.Amount,
		Currency:    transaction.Currency,
		RentalIDs:   rentalIDs,
		Timestamp:   s.now(),
	}
	if err := s.notifier.SendMessage(event.Build()); err != nil {
		s.logger.Error("không gửi được sự kiện PaymentFailed cho transaction %d: %v", transaction.ID, err)
	}
}

package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"booth/constants"
	"booth/errors"
	"booth/models"
	"booth/services/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RentalService tạo và quản lý rental cho luồng checkout
type RentalService struct {
	db     *gorm.DB
	logger logger.Logger
	now    func() time.Time
}

// RentalServiceOptions tham số khởi tạo RentalService
type RentalServiceOptions struct {
	DB     *gorm.DB
	Logger logger.Logger
	Now    func() time.Time
}

func NewRentalService(opts RentalServiceOptions) *RentalService {
	if opts.Logger == nil {
		opts.Logger = logger.NewDefaultLogger(logger.InfoLevel)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &RentalService{
		db:     opts.DB,
		logger: opts.Logger,
		now:    opts.Now,
	}
}

// GenerateRentalCode sinh mã rental dạng rental_ab12cd34_20250101120000
func GenerateRentalCode(now time.Time) string {
	short := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("rental_%s_%s", short, now.Format("20060102150405"))
}

// CreateDraftRentals tạo rental Draft cho từng booth trong giỏ và giữ chỗ booth.
// Trả về danh sách rental và tổng tiền của cả giỏ.
func (s *RentalService) CreateDraftRentals(scope TenantScope, userID uint, boothIDs []uint, startDate, endDate time.Time) ([]models.Rental, float64, error) {
	now := s.now()
	rentals := make([]models.Rental, 0, len(boothIDs))
	var total float64

	for _, boothID := range boothIDs {
		var booth models.Booth
		if err := scope.Apply(s.db).First(&booth, boothID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, 0, errors.NewAppError(errors.ErrCodeBoothNotFound,
					fmt.Sprintf("không tìm thấy booth %d", boothID), err)
			}
			return nil, 0, errors.NewAppError(errors.ErrCodeDBError, "không đọc được booth", err)
		}

		if booth.Status != constants.BoothStatusAvailable {
			return nil, 0, errors.NewAppError(errors.ErrCodeBoothUnavailable,
				fmt.Sprintf("booth %s không còn trống", booth.Code), nil)
		}

		amount := rentalAmount(booth.MonthlyPrice, startDate, endDate)
		rental := models.Rental{
			RentalCode:    GenerateRentalCode(now),
			TenantID:      scope.TenantID,
			BoothID:       booth.ID,
			UserID:        userID,
			StartDate:     startDate,
			EndDate:       endDate,
			Status:        constants.RentalStatusDraft,
			TotalAmount:   amount,
			PaymentStatus: constants.PaymentStatusPending,
		}
		if err := s.db.Create(&rental).Error; err != nil {
			return nil, 0, errors.NewAppError(errors.ErrCodeDBError, "không tạo được rental", err)
		}

		// Giữ chỗ booth ngay khi tạo draft, compensation sẽ trả lại nếu
		// thanh toán không hoàn tất
		if err := updateWithVersion(s.db, &models.Booth{}, booth.ID, booth.Version, map[string]interface{}{
			"status": constants.BoothStatusReserved,
		}); err != nil {
			return nil, 0, err
		}

		rentals = append(rentals, rental)
		total += amount
	}

	return rentals, total, nil
}

// rentalAmount tính tiền thuê theo số tháng, lẻ tháng làm tròn lên
func rentalAmount(monthlyPrice float64, startDate, endDate time.Time) float64 {
	days := endDate.Sub(startDate).Hours()/24 + 1
	months := math.Ceil(days / 30)
	if months < 1 {
		months = 1
	}
	return monthlyPrice * months
}

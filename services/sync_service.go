package services

import (
	"context"
	"time"

	"booth/constants"
	"booth/errors"
	"booth/models"
	"booth/services/logger"

	"gorm.io/gorm"
)

// SyncService các job quét toàn bộ dữ liệu chạy hằng ngày để sửa drift
// giữa rental và booth, độc lập với luồng thanh toán
type SyncService struct {
	db     *gorm.DB
	logger logger.Logger
	now    func() time.Time
}

// SyncServiceOptions tham số khởi tạo SyncService
type SyncServiceOptions struct {
	DB     *gorm.DB
	Logger logger.Logger
	Now    func() time.Time
}

func NewSyncService(opts SyncServiceOptions) *SyncService {
	if opts.Logger == nil {
		opts.Logger = logger.NewDefaultLogger(logger.InfoLevel)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SyncService{
		db:     opts.DB,
		logger: opts.Logger,
		now:    opts.Now,
	}
}

// ExpireRentals chuyển các rental đã qua ngày kết thúc sang Expired.
// Lỗi từng rental được log và bỏ qua, sweep vẫn chạy tiếp.
func (s *SyncService) ExpireRentals(ctx context.Context) (int, error) {
	today := startOfDay(s.now())

	var candidates []models.Rental
	err := s.db.
		Where("status IN ?", []int{constants.RentalStatusActive, constants.RentalStatusExtended}).
		Where("end_date < ?", today).
		Find(&candidates).Error
	if err != nil {
		return 0, errors.NewAppError(errors.ErrCodeDBError, "không query được rental hết hạn", err)
	}

	expired := 0
	err = ForEachTenantRentals(candidates, func(scope TenantScope, items []models.Rental) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for i := range items {
			rental := &items[i]
			state := models.GetRentalState(rental.Status)
			if stateErr := state.Expire(rental); stateErr != nil {
				s.logger.Error("rental %d không chuyển được sang Expired: %v", rental.ID, stateErr)
				continue
			}
			updateErr := updateWithVersion(s.db, &models.Rental{}, rental.ID, rental.Version, map[string]interface{}{
				"status": constants.RentalStatusExpired,
			})
			if updateErr != nil {
				// Conflict nghĩa là có actor khác vừa sửa rental này, bỏ qua,
				// sweep ngày mai sẽ xử lý nốt
				s.logger.Error("rental %d không ghi được trạng thái Expired: %v", rental.ID, updateErr)
				continue
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return expired, err
	}

	s.logger.Info("rental expiry sync: %d rental chuyển sang Expired", expired)
	return expired, nil
}

// SyncBoothStatuses tính lại trạng thái kỳ vọng của từng booth từ các rental
// đã thanh toán và chỉ ghi khi khác trạng thái hiện tại, nên chạy lại nhiều
// lần không sinh thêm thay đổi. Booth đang Maintenance không bị đụng tới.
func (s *SyncService) SyncBoothStatuses(ctx context.Context) (int, error) {
	today := startOfDay(s.now())

	var booths []models.Booth
	err := s.db.
		Where("status <> ?", constants.BoothStatusMaintenance).
		Find(&booths).Error
	if err != nil {
		return 0, errors.NewAppError(errors.ErrCodeDBError, "không query được danh sách booth", err)
	}

	changed := 0
	err = ForEachTenantBooths(booths, func(scope TenantScope, items []models.Booth) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Load một lần toàn bộ rental còn giữ booth của tenant này,
		// tra theo booth id thay vì query từng booth một
		byBooth, loadErr := s.loadOccupyingRentals(scope, today)
		if loadErr != nil {
			return loadErr
		}

		for i := range items {
			booth := &items[i]
			expected := expectedBoothStatus(byBooth[booth.ID], today)
			if booth.Status == expected {
				continue
			}

			updateErr := updateWithVersion(s.db, &models.Booth{}, booth.ID, booth.Version, map[string]interface{}{
				"status": expected,
			})
			if updateErr != nil {
				s.logger.Error("booth %d không ghi được trạng thái %d: %v", booth.ID, expected, updateErr)
				continue
			}
			s.logger.Info("booth %d: %d -> %d", booth.ID, booth.Status, expected)
			changed++
		}
		return nil
	})
	if err != nil {
		return changed, err
	}

	s.logger.Info("booth status sync: %d booth được cập nhật", changed)
	return changed, nil
}

// loadOccupyingRentals lấy các rental đã thanh toán còn hiệu lực của một tenant,
// gom theo booth id
func (s *SyncService) loadOccupyingRentals(scope TenantScope, today time.Time) (map[uint][]models.Rental, error) {
	var rentals []models.Rental
	err := scope.Apply(s.db).
		Where("end_date >= ?", today).
		Find(&rentals).Error
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "không query được rental đang giữ booth", err)
	}

	byBooth := make(map[uint][]models.Rental)
	for _, rental := range rentals {
		if !rental.IsOccupying() {
			continue
		}
		byBooth[rental.BoothID] = append(byBooth[rental.BoothID], rental)
	}
	return byBooth, nil
}

// expectedBoothStatus ưu tiên: đang có rental phủ hôm nay -> Rented,
// có rental đã trả tiền trong tương lai -> Reserved, còn lại -> Available
func expectedBoothStatus(rentals []models.Rental, today time.Time) int {
	hasFuture := false
	for i := range rentals {
		if rentals[i].CoversDate(today) {
			return constants.BoothStatusRented
		}
		if rentals[i].StartDate.After(today) {
			hasFuture = true
		}
	}
	if hasFuture {
		return constants.BoothStatusReserved
	}
	return constants.BoothStatusAvailable
}

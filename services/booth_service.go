package services

import (
	"booth/constants"
	"booth/errors"
	"booth/models"
	"booth/services/logger"

	"gorm.io/gorm"
)

// BoothService quản lý booth, trong đó Maintenance chỉ được đặt/gỡ
// thủ công qua đây, các job tự động không bao giờ đụng vào
type BoothService struct {
	db     *gorm.DB
	logger logger.Logger
}

// BoothServiceOptions tham số khởi tạo BoothService
type BoothServiceOptions struct {
	DB     *gorm.DB
	Logger logger.Logger
}

func NewBoothService(opts BoothServiceOptions) *BoothService {
	if opts.Logger == nil {
		opts.Logger = logger.NewDefaultLogger(logger.InfoLevel)
	}
	return &BoothService{
		db:     opts.DB,
		logger: opts.Logger,
	}
}

// ListByTenant lấy danh sách booth của một tenant
func (s *BoothService) ListByTenant(scope TenantScope) ([]models.Booth, error) {
	var booths []models.Booth
	if err := scope.Apply(s.db).Order("id ASC").Find(&booths).Error; err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "không query được danh sách booth", err)
	}
	return booths, nil
}

// SetMaintenance chuyển booth sang bảo trì, lưu lại trạng thái trước đó
// để gỡ bảo trì thì khôi phục đúng
func (s *BoothService) SetMaintenance(scope TenantScope, boothID uint) (*models.Booth, error) {
	var booth models.Booth
	if err := scope.Apply(s.db).First(&booth, boothID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewAppError(errors.ErrCodeBoothNotFound, "không tìm thấy booth", err)
		}
		return nil, errors.NewAppError(errors.ErrCodeDBError, "không đọc được booth", err)
	}

	if booth.IsMaintenance() {
		return &booth, nil
	}

	before := booth.Status
	if err := updateWithVersion(s.db, &models.Booth{}, booth.ID, booth.Version, map[string]interface{}{
		"status":                    constants.BoothStatusMaintenance,
		"status_before_maintenance": before,
	}); err != nil {
		return nil, err
	}

	booth.StatusBeforeMaintenance = &before
	booth.Status = constants.BoothStatusMaintenance
	booth.Version++
	s.logger.Info("booth %d chuyển sang bảo trì (trạng thái cũ %d)", booth.ID, before)
	return &booth, nil
}

// ClearMaintenance gỡ bảo trì, khôi phục trạng thái trước đó
func (s *BoothService) ClearMaintenance(scope TenantScope, boothID uint) (*models.Booth, error) {
	var booth models.Booth
	if err := scope.Apply(s.db).First(&booth, boothID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewAppError(errors.ErrCodeBoothNotFound, "không tìm thấy booth", err)
		}
		return nil, errors.NewAppError(errors.ErrCodeDBError, "không đọc được booth", err)
	}

	if !booth.IsMaintenance() {
		return &booth, nil
	}

	restored := constants.BoothStatusAvailable
	if booth.StatusBeforeMaintenance != nil {
		restored = *booth.StatusBeforeMaintenance
	}

	if err := updateWithVersion(s.db, &models.Booth{}, booth.ID, booth.Version, map[string]interface{}{
		"status":                    restored,
		"status_before_maintenance": nil,
	}); err != nil {
		return nil, err
	}

	booth.Status = restored
	booth.StatusBeforeMaintenance = nil
	booth.Version++
	s.logger.Info("booth %d gỡ bảo trì, khôi phục trạng thái %d", booth.ID, restored)
	return &booth, nil
}

package services

import (
	"os"
	"strconv"
	"time"

	"booth/constants"
	"booth/errors"
	"booth/models"
	"booth/services/logger"

	"gorm.io/gorm"
)

const (
	DefaultMaxCheckCount = 3
	DefaultCheckInterval = 15 * time.Minute
	DefaultMinAge        = time.Hour

	// Số lần thử lại khi CAS theo version thất bại
	versionRetries = 3
)

// ReconcilePolicy cấu hình cho việc đối soát giao dịch
type ReconcilePolicy struct {
	MaxCheckCount int
	CheckInterval time.Duration
	MinAge        time.Duration
}

// LoadReconcilePolicy đọc policy từ biến môi trường, thiếu thì dùng mặc định
func LoadReconcilePolicy() ReconcilePolicy {
	policy := ReconcilePolicy{
		MaxCheckCount: DefaultMaxCheckCount,
		CheckInterval: DefaultCheckInterval,
		MinAge:        DefaultMinAge,
	}

	if v := os.Getenv("RECON_MAX_CHECK_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			policy.MaxCheckCount = n
		}
	}
	if v := os.Getenv("RECON_CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			policy.CheckInterval = d
		}
	}
	if v := os.Getenv("RECON_MIN_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			policy.MinAge = d
		}
	}
	return policy
}

// TransactionService thao tác trên sổ giao dịch
type TransactionService struct {
	db     *gorm.DB
	logger logger.Logger
	policy ReconcilePolicy
	now    func() time.Time
}

// TransactionServiceOptions tham số khởi tạo TransactionService
type TransactionServiceOptions struct {
	DB     *gorm.DB
	Logger logger.Logger
	Policy ReconcilePolicy
	Now    func() time.Time
}

func NewTransactionService(opts TransactionServiceOptions) *TransactionService {
	if opts.Logger == nil {
		opts.Logger = logger.NewDefaultLogger(logger.InfoLevel)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy.MaxCheckCount == 0 {
		opts.Policy = LoadReconcilePolicy()
	}
	return &TransactionService{
		db:     opts.DB,
		logger: opts.Logger,
		policy: opts.Policy,
		now:    opts.Now,
	}
}

func (s *TransactionService) Policy() ReconcilePolicy {
	return s.policy
}

// FindCandidates chọn các transaction cần kiểm tra của một provider,
// query trên toàn bộ tenant, cũ nhất lên trước
func (s *TransactionService) FindCandidates(provider string) ([]models.Transaction, error) {
	now := s.now()
	var candidates []models.Transaction

	err := s.db.Preload("Rentals").
		Where("provider = ?", provider).
		Where("status IN ?", []string{constants.PaymentStatusPending, constants.PaymentStatusProcessing}).
		Where("check_count < ?", s.policy.MaxCheckCount).
		Where("last_checked_at IS NULL OR last_checked_at <= ?", now.Add(-s.policy.CheckInterval)).
		Where("last_checked_at IS NOT NULL OR created_at <= ?", now.Add(-s.policy.MinAge)).
		Order("last_checked_at ASC NULLS FIRST").
		Order("created_at ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "không query được danh sách transaction cần kiểm tra", err)
	}
	return candidates, nil
}

// GetByID lấy transaction kèm rentals
func (s *TransactionService) GetByID(id uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Rentals").First(&transaction, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewAppError(errors.ErrCodeTransactionNotFound, "không tìm thấy transaction", err)
		}
		return nil, errors.NewAppError(errors.ErrCodeDBError, "không đọc được transaction", err)
	}
	return &transaction, nil
}

// Create tạo transaction mới trong sổ
func (s *TransactionService) Create(transaction *models.Transaction) error {
	if err := s.db.Create(transaction).Error; err != nil {
		return errors.NewAppError(errors.ErrCodeDBError, "không tạo được transaction", err)
	}
	return nil
}

// UpdateChecked ghi kết quả một lần kiểm tra với optimistic lock theo version,
// conflict thì đọc lại bản ghi và thử lại tối đa versionRetries lần
func (s *TransactionService) UpdateChecked(transaction *models.Transaction, updates map[string]interface{}) error {
	for attempt := 0; attempt < versionRetries; attempt++ {
		err := updateWithVersion(s.db, &models.Transaction{}, transaction.ID, transaction.Version, updates)
		if err == nil {
			transaction.Version++
			return nil
		}
		if err != errors.ErrVersionConflict {
			return err
		}

		// Có job khác vừa ghi đè, đọc lại bản ghi mới rồi thử lại
		var fresh models.Transaction
		if readErr := s.db.First(&fresh, transaction.ID).Error; readErr != nil {
			return errors.NewAppError(errors.ErrCodeDBError, "không đọc lại được transaction sau conflict", readErr)
		}
		// Run kia có thể đã chốt trạng thái terminal, không ghi đè ngược
		// trạng thái cũ lên
		if fresh.IsTerminal() {
			delete(updates, "status")
			transaction.Status = fresh.Status
		}
		if fresh.Compensated {
			transaction.Compensated = true
		}
		transaction.Version = fresh.Version
	}
	return errors.NewAppError(errors.ErrCodeVersionConflict, "transaction bị tranh chấp version quá nhiều lần", nil)
}

// updateWithVersion compare-and-swap một bản ghi theo cột version
func updateWithVersion(db *gorm.DB, model interface{}, id uint, version int, updates map[string]interface{}) error {
	merged := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		merged[k] = v
	}
	merged["version"] = version + 1

	result := db.Model(model).
		Where("id = ? AND version = ?", id, version).
		Updates(merged)
	if result.Error != nil {
		return errors.NewAppError(errors.ErrCodeDBError, "không ghi được bản ghi", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrVersionConflict
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"booth/constants"
	"booth/errors"
	"booth/gateways"
	"booth/models"
	"booth/services/logger"
)

// RunReport kết quả của một lượt đối soát cho một provider
type RunReport struct {
	Provider    string    `json:"provider"`
	Checked     int       `json:"checked"`
	Completed   int       `json:"completed"`
	Failed      int       `json:"failed"`
	Compensated int       `json:"compensated"`
	Errors      []string  `json:"errors,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// ReconcileService poll cổng thanh toán theo chu kỳ và áp kết quả
// lên sổ giao dịch, rental và booth
type ReconcileService struct {
	transactions *TransactionService
	settlement   *SettlementService
	compensation *CompensationService
	newGateway   func(provider string) (gateways.Gateway, error)
	logger       logger.Logger
	now          func() time.Time
}

// ReconcileServiceOptions tham số khởi tạo ReconcileService
type ReconcileServiceOptions struct {
	Transactions *TransactionService
	Settlement   *SettlementService
	Compensation *CompensationService
	NewGateway   func(provider string) (gateways.Gateway, error)
	Logger       logger.Logger
	Now          func() time.Time
}

func NewReconcileService(opts ReconcileServiceOptions) *ReconcileService {
	if opts.Logger == nil {
		opts.Logger = logger.NewDefaultLogger(logger.InfoLevel)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewGateway == nil {
		opts.NewGateway = gateways.NewGateway
	}
	return &ReconcileService{
		transactions: opts.Transactions,
		settlement:   opts.Settlement,
		compensation: opts.Compensation,
		newGateway:   opts.NewGateway,
		logger:       opts.Logger,
		now:          opts.Now,
	}
}

// RunOnce chạy một lượt đối soát cho một provider. Lỗi của từng transaction
// được gom vào report và không làm dừng lượt chạy; chỉ lỗi hạ tầng
// (mất kết nối storage...) mới abort cả run.
func (s *ReconcileService) RunOnce(ctx context.Context, provider string) (*RunReport, error) {
	report := &RunReport{
		Provider:  provider,
		StartedAt: s.now(),
	}

	gateway, err := s.newGateway(provider)
	if err != nil {
		return report, err
	}

	// Đọc rộng: candidate của mọi tenant trong một query
	candidates, err := s.transactions.FindCandidates(provider)
	if err != nil {
		return report, err
	}
	s.logger.Info("đối soát %s: %d transaction cần kiểm tra", provider, len(candidates))

	err = ForEachTenantTransactions(candidates, func(scope TenantScope, items []models.Transaction) error {
		for i := range items {
			// Điểm hủy hợp tác giữa các transaction
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			transaction := &items[i]
			if procErr := s.processTransaction(ctx, scope, gateway, transaction, report); procErr != nil {
				if errors.IsInfrastructure(procErr) {
					return procErr
				}
				s.logger.Error("đối soát transaction %d lỗi: %v", transaction.ID, procErr)
				report.Errors = append(report.Errors, fmt.Sprintf("transaction %d: %v", transaction.ID, procErr))
			}
		}
		return nil
	})

	report.FinishedAt = s.now()
	if err != nil {
		return report, err
	}
	s.logger.Info("đối soát %s xong: checked=%d completed=%d failed=%d compensated=%d errors=%d",
		provider, report.Checked, report.Completed, report.Failed, report.Compensated, len(report.Errors))
	return report, nil
}

// processTransaction xử lý một transaction: hỏi gateway, map trạng thái,
// chốt hoặc bù trừ, và luôn tính lần kiểm tra này vào ngân sách
func (s *ReconcileService) processTransaction(ctx context.Context, scope TenantScope, gateway gateways.Gateway, transaction *models.Transaction, report *RunReport) error {
	report.Checked++
	now := s.now()
	policy := s.transactions.Policy()

	transaction.CheckCount++
	transaction.LastCheckedAt = &now
	updates := map[string]interface{}{
		"check_count":     transaction.CheckCount,
		"last_checked_at": now,
	}

	var settleErr error

	if transaction.ExternalRef == "" {
		// Không có ref thì không gọi gateway được, chỉ tiêu ngân sách
		// để bản ghi không kẹt vĩnh viễn
		s.logger.Warn("transaction %d thiếu external ref, bỏ qua lần kiểm tra", transaction.ID)
	} else {
		status, gwErr := gateway.GetStatus(ctx, transaction.ExternalRef)
		if gwErr != nil {
			// Lỗi gateway vẫn tính vào ngân sách, coi như còn pending
			s.logger.Error("gateway %s lỗi khi kiểm tra transaction %d: %v", gateway.Provider(), transaction.ID, gwErr)
		} else {
			canonical := gateways.MapStatus(transaction.Provider, status.NativeStatus)
			switch canonical {
			case constants.PaymentStatusCompleted:
				transaction.Status = constants.PaymentStatusCompleted
				settleErr = s.settlement.Settle(scope, transaction)
				if settleErr != nil {
					if errors.IsInfrastructure(settleErr) {
						return settleErr
					}
					// Chưa chốt được thì giữ trạng thái cũ để run sau thử lại
					transaction.Status = constants.PaymentStatusPending
				} else {
					updates["status"] = constants.PaymentStatusCompleted
					report.Completed++
				}
			case constants.PaymentStatusFailed, constants.PaymentStatusCancelled:
				transaction.Status = canonical
				updates["status"] = canonical
				report.Failed++
			default:
				transaction.Status = canonical
				updates["status"] = canonical
			}
		}
	}

	if err := s.transactions.UpdateChecked(transaction, updates); err != nil {
		return err
	}

	// Hết ngân sách mà chưa completed thì bù trừ, bất kể đang failed,
	// cancelled hay vẫn pending
	if transaction.CheckCount >= policy.MaxCheckCount &&
		transaction.Status != constants.PaymentStatusCompleted &&
		!transaction.Compensated {
		reason := fmt.Sprintf("thanh toán không hoàn tất sau %d lần kiểm tra", transaction.CheckCount)
		if err := s.compensation.Compensate(scope, transaction, reason); err != nil {
			return err
		}
		if err := s.transactions.UpdateChecked(transaction, map[string]interface{}{
			"compensated": true,
		}); err != nil {
			return err
		}
		transaction.Compensated = true
		report.Compensated++
	}

	return settleErr
}

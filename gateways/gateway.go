package gateways

import (
	"context"
	"time"

	"booth/constants"
	"booth/errors"
)

// CreatePaymentRequest thông tin khởi tạo thanh toán gửi sang cổng
type CreatePaymentRequest struct {
	Amount      float64
	Currency    string
	Description string
	ReturnURL   string
	Metadata    map[string]string
}

// CreatePaymentResult kết quả khởi tạo thanh toán
type CreatePaymentResult struct {
	Success     bool
	ExternalRef string
	PaymentURL  string
}

// StatusResult trạng thái giao dịch trả về từ cổng, giữ nguyên vocabulary của provider
type StatusResult struct {
	NativeStatus string
	Amount       float64
	CompletedAt  *time.Time
}

// Gateway định nghĩa interface chung cho mọi cổng thanh toán
type Gateway interface {
	Provider() string
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResult, error)
	GetStatus(ctx context.Context, externalRef string) (*StatusResult, error)
	VerifyPayment(ctx context.Context, externalRef string, expectedAmount float64) (bool, error)
}

// NewGateway factory tạo gateway theo tên provider
func NewGateway(provider string) (Gateway, error) {
	switch provider {
	case constants.ProviderStripe:
		return NewStripeGateway(), nil
	case constants.ProviderPayU:
		return NewPayUGateway(), nil
	default:
		return nil, errors.NewAppError(errors.ErrCodeUnknownProvider, "provider không được hỗ trợ: "+provider, nil)
	}
}

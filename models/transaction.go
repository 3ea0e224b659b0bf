package models

import (
	"fmt"
	"time"

	"booth/constants"

	"gorm.io/gorm"
)

// Transaction một lượt thanh toán qua cổng bên ngoài, có thể gắn với nhiều rental (giỏ hàng)
type Transaction struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	TenantID      uint       `json:"tenantId" gorm:"index"`
	Provider      string     `json:"provider" gorm:"size:20;uniqueIndex:idx_provider_ref"`
	ExternalRef   string     `json:"externalRef" gorm:"size:60;uniqueIndex:idx_provider_ref"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency" gorm:"size:3"`
	Description   string     `json:"description"`
	Status        string     `json:"status" gorm:"size:20;default:pending"`
	CheckCount    int        `json:"checkCount" gorm:"default:0"`
	LastCheckedAt *time.Time `json:"lastCheckedAt,omitempty"`
	Compensated   bool       `json:"compensated" gorm:"default:false"`
	PaymentURL    string     `json:"paymentUrl"`
	Rentals       []Rental   `json:"rentals" gorm:"many2many:transaction_rentals;"`
	Version       int        `json:"version" gorm:"default:0"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	// Transaction luôn phải gắn với ít nhất một rental
	if len(t.Rentals) == 0 {
		return fmt.Errorf("transaction phải gắn với ít nhất một rental")
	}
	return nil
}

// IsTerminal trạng thái đã chốt, không cần kiểm tra thêm
func (t *Transaction) IsTerminal() bool {
	return t.Status == constants.PaymentStatusCompleted ||
		t.Status == constants.PaymentStatusFailed ||
		t.Status == constants.PaymentStatusCancelled
}

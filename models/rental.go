package models

import (
	"time"

	"booth/constants"
)

// Rental lượt thuê booth của một seller trong một khoảng ngày
type Rental struct {
	ID                     uint       `json:"id" gorm:"primaryKey"`
	RentalCode             string     `json:"rentalCode" gorm:"size:40"`
	TenantID               uint       `json:"tenantId" gorm:"index"`
	BoothID                uint       `json:"boothId" gorm:"index"`
	Booth                  *Booth     `json:"booth,omitempty" gorm:"foreignKey:BoothID"`
	UserID                 uint       `json:"userId"`
	StartDate              time.Time  `json:"startDate"`
	EndDate                time.Time  `json:"endDate"`
	Status                 int        `json:"status" gorm:"default:0"`
	IsPaid                 bool       `json:"isPaid" gorm:"default:false"`
	TotalAmount            float64    `json:"totalAmount"`
	PaidAmount             float64    `json:"paidAmount"`
	PaidDate               *time.Time `json:"paidDate,omitempty"`
	ExternalTransactionRef string     `json:"externalTransactionRef"`
	PaymentStatus          string     `json:"paymentStatus" gorm:"size:20;default:pending"`
	CancelReason           string     `json:"cancelReason,omitempty"`
	Version                int        `json:"version" gorm:"default:0"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// CoversDate kiểm tra ngày d có nằm trong khoảng thuê không
func (r *Rental) CoversDate(d time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return !r.StartDate.After(day) && !r.EndDate.Before(day)
}

// IsOccupying rental còn đang giữ booth (đã thanh toán và chưa kết thúc)
func (r *Rental) IsOccupying() bool {
	return r.PaymentStatus == constants.PaymentStatusCompleted &&
		(r.Status == constants.RentalStatusActive || r.Status == constants.RentalStatusExtended)
}

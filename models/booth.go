package models

import (
	"fmt"
	"time"

	"booth/constants"

	"gorm.io/gorm"
)

// Booth gian hàng vật lý cho thuê, trạng thái do hệ thống tự đồng bộ
// trừ Maintenance chỉ được đặt/gỡ thủ công bởi operator
type Booth struct {
	ID                      uint      `json:"id" gorm:"primaryKey"`
	TenantID                uint      `json:"tenantId" gorm:"index"`
	Tenant                  *Tenant   `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Code                    string    `json:"code" gorm:"size:20"`
	FloorArea               float64   `json:"floorArea"`
	MonthlyPrice            float64   `json:"monthlyPrice"`
	Status                  int       `json:"status" gorm:"default:1"`
	StatusBeforeMaintenance *int      `json:"statusBeforeMaintenance,omitempty"`
	Version                 int       `json:"version" gorm:"default:0"`
	CreatedAt               time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt               time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (b *Booth) BeforeCreate(tx *gorm.DB) error {
	if b.Status == 0 {
		b.Status = constants.BoothStatusAvailable
	}
	return b.ValidateStatus()
}

func (b *Booth) ValidateStatus() error {
	if b.Status < constants.BoothStatusAvailable || b.Status > constants.BoothStatusMaintenance {
		return fmt.Errorf("invalid status: %d, must be between 1 and 4", b.Status)
	}
	return nil
}

// IsMaintenance kiểm tra booth có đang bảo trì không
func (b *Booth) IsMaintenance() bool {
	return b.Status == constants.BoothStatusMaintenance
}

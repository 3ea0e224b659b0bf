package models

import "time"

// Tenant một đơn vị thuê hệ thống (chợ/trung tâm thương mại), mọi dữ liệu đều thuộc về một tenant
type Tenant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Code      string    `json:"code" gorm:"unique;size:20"`
	Status    int       `json:"status" gorm:"default:1"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

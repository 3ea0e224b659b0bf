package models

import "time"

// User tài khoản vận hành hệ thống (operator/seller)
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  *uint     `json:"tenantId" gorm:"index"`
	Name      string    `json:"name"`
	Email     string    `json:"email" gorm:"unique"`
	Password  string    `json:"-"`
	Role      int       `json:"role" gorm:"default:3"`
	Status    int       `json:"status" gorm:"default:1"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

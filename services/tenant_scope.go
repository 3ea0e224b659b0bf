package services

import (
	"sort"

	"booth/models"

	"gorm.io/gorm"
)

// TenantScope phạm vi dữ liệu của một tenant, được truyền tường minh
// qua các lời gọi thay vì dùng state toàn cục
type TenantScope struct {
	TenantID uint
}

// Apply gắn điều kiện tenant vào query
func (s TenantScope) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tenant_id = ?", s.TenantID)
}

// Mẫu "đọc rộng, ghi theo scope": candidate được query một lần trên toàn bộ
// tenant, sau đó gom nhóm theo tenant và mọi mutation chạy dưới scope của
// từng tenant một. Tenant được duyệt theo thứ tự id tăng dần cho ổn định.

// ForEachTenantTransactions gom transaction theo tenant rồi gọi fn cho từng nhóm
func ForEachTenantTransactions(items []models.Transaction, fn func(scope TenantScope, items []models.Transaction) error) error {
	groups := make(map[uint][]models.Transaction)
	for _, item := range items {
		groups[item.TenantID] = append(groups[item.TenantID], item)
	}

	keys := make([]uint, 0, len(groups))
	for id := range groups {
		keys = append(keys, id)
	}
	for _, tenantID := range sortedKeys(keys) {
		if err := fn(TenantScope{TenantID: tenantID}, groups[tenantID]); err != nil {
			return err
		}
	}
	return nil
}

// ForEachTenantRentals gom rental theo tenant rồi gọi fn cho từng nhóm
func ForEachTenantRentals(items []models.Rental, fn func(scope TenantScope, items []models.Rental) error) error {
	groups := make(map[uint][]models.Rental)
	for _, item := range items {
		groups[item.TenantID] = append(groups[item.TenantID], item)
	}

	keys := make([]uint, 0, len(groups))
	for id := range groups {
		keys = append(keys, id)
	}
	for _, tenantID := range sortedKeys(keys) {
		if err := fn(TenantScope{TenantID: tenantID}, groups[tenantID]); err != nil {
			return err
		}
	}
	return nil
}

// ForEachTenantBooths gom booth theo tenant rồi gọi fn cho từng nhóm
func ForEachTenantBooths(items []models.Booth, fn func(scope TenantScope, items []models.Booth) error) error {
	groups := make(map[uint][]models.Booth)
	for _, item := range items {
		groups[item.TenantID] = append(groups[item.TenantID], item)
	}

	keys := make([]uint, 0, len(groups))
	for id := range groups {
		keys = append(keys, id)
	}
	for _, tenantID := range sortedKeys(keys) {
		if err := fn(TenantScope{TenantID: tenantID}, groups[tenantID]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(keys []uint) []uint {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

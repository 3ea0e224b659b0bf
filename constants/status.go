package constants

// User status
const (
	UserStatusActive   = 1
	UserStatusInactive = 0
)

// User role
const (
	RoleSuperAdmin = 1
	RoleOperator   = 2
	RoleSeller     = 3
)

// Booth status
const (
	BoothStatusAvailable   = 1
	BoothStatusReserved    = 2
	BoothStatusRented      = 3
	BoothStatusMaintenance = 4
)

// Rental status
const (
	RentalStatusDraft     = 0
	RentalStatusActive    = 1
	RentalStatusExtended  = 2
	RentalStatusCompleted = 3
	RentalStatusCancelled = 4
	RentalStatusExpired   = 5
)

// Payment status (canonical) - mọi trạng thái từ cổng thanh toán đều map về bộ này
const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
	PaymentStatusCancelled  = "cancelled"
)

// Payment provider
const (
	ProviderStripe = "stripe"
	ProviderPayU   = "payu"
)

// Providers danh sách các cổng thanh toán đang bật
var Providers = []string{ProviderStripe, ProviderPayU}

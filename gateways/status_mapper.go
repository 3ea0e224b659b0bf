package gateways

import "booth/constants"

// Bảng map trạng thái native của từng provider về trạng thái canonical.
// Giá trị không có trong bảng luôn map về pending: không bao giờ coi
// một trạng thái lạ là terminal.
var stripeStatusMap = map[string]string{
	"succeeded":               constants.PaymentStatusCompleted,
	"processing":              constants.PaymentStatusProcessing,
	"requires_capture":        constants.PaymentStatusProcessing,
	"canceled":                constants.PaymentStatusCancelled,
	"requires_payment_method": constants.PaymentStatusPending,
	"requires_confirmation":   constants.PaymentStatusPending,
	"requires_action":         constants.PaymentStatusPending,
}

var payuStatusMap = map[string]string{
	"COMPLETED":                constants.PaymentStatusCompleted,
	"WAITING_FOR_CONFIRMATION": constants.PaymentStatusProcessing,
	"CANCELED":                 constants.PaymentStatusCancelled,
	"REJECTED":                 constants.PaymentStatusFailed,
	"NEW":                      constants.PaymentStatusPending,
	"PENDING":                  constants.PaymentStatusPending,
}

// MapStatus chuyển trạng thái native của provider về trạng thái canonical
func MapStatus(provider, nativeStatus string) string {
	var table map[string]string
	switch provider {
	case constants.ProviderStripe:
		table = stripeStatusMap
	case constants.ProviderPayU:
		table = payuStatusMap
	default:
		return constants.PaymentStatusPending
	}

	if status, ok := table[nativeStatus]; ok {
		return status
	}
	return constants.PaymentStatusPending
}

package validator

import (
	"time"

	"booth/constants"
	"booth/dto"
	"booth/errors"
)

const dateLayout = "2006-01-02"

// ValidateCheckout validate yêu cầu checkout, trả về khoảng ngày đã parse
func ValidateCheckout(req *dto.CheckoutRequest) (time.Time, time.Time, error) {
	if len(req.BoothIDs) == 0 {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrCodeRequiredField, "Phải chọn ít nhất một booth", nil)
	}

	if !isSupportedProvider(req.Provider) {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrCodeValidation, "Provider không được hỗ trợ", nil)
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrCodeInvalidFormat, "Ngày bắt đầu không hợp lệ", err)
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrCodeInvalidFormat, "Ngày kết thúc không hợp lệ", err)
	}

	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrCodeValidation, "Ngày kết thúc phải sau ngày bắt đầu", nil)
	}

	return startDate, endDate, nil
}

func isSupportedProvider(provider string) bool {
	for _, p := range constants.Providers {
		if p == provider {
			return true
		}
	}
	return false
}

package errors

import (
	"errors"
	"fmt"
)

// ErrorCode định nghĩa mã lỗi
type ErrorCode string

const (
	// Auth errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeInvalidRole  ErrorCode = "INVALID_ROLE"
	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"

	// Gateway errors
	ErrCodeGatewayError    ErrorCode = "GATEWAY_ERROR"
	ErrCodeGatewayTimeout  ErrorCode = "GATEWAY_TIMEOUT"
	ErrCodeUnknownProvider ErrorCode = "UNKNOWN_PROVIDER"
	ErrCodeMissingRef      ErrorCode = "MISSING_EXTERNAL_REF"

	// Transaction / rental errors
	ErrCodeTransactionNotFound ErrorCode = "TRANSACTION_NOT_FOUND"
	ErrCodeRentalNotFound      ErrorCode = "RENTAL_NOT_FOUND"
	ErrCodeBoothNotFound       ErrorCode = "BOOTH_NOT_FOUND"
	ErrCodeBoothUnavailable    ErrorCode = "BOOTH_UNAVAILABLE"
	ErrCodeInvalidStatus       ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidAmount       ErrorCode = "INVALID_AMOUNT"

	// Database errors
	ErrCodeDBError         ErrorCode = "DB_ERROR"
	ErrCodeDBNotFound      ErrorCode = "DB_NOT_FOUND"
	ErrCodeVersionConflict ErrorCode = "VERSION_CONFLICT"

	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeRequiredField ErrorCode = "REQUIRED_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// AppError định nghĩa lỗi của ứng dụng
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError tạo một AppError mới
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsAppError kiểm tra xem error có phải là AppError không
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError lấy AppError từ error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsInfrastructure lỗi hạ tầng (mất kết nối storage...) phải làm dừng cả run,
// các lỗi còn lại được nuốt theo từng transaction
func IsInfrastructure(err error) bool {
	appErr := GetAppError(err)
	if appErr == nil {
		return false
	}
	return appErr.Code == ErrCodeDBError
}

var (
	// User errors
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUnauthorized    = errors.New("unauthorized")

	// Rental errors
	ErrRentalNotFound  = errors.New("rental not found")
	ErrRentalCancelled = errors.New("rental already cancelled")
	ErrRentalExpired   = errors.New("rental already expired")

	// Booth errors
	ErrBoothNotFound     = errors.New("booth not found")
	ErrBoothNotAvailable = errors.New("booth not available")
	ErrBoothMaintenance  = errors.New("booth under maintenance")

	// Payment errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrMissingExternalRef  = errors.New("missing external transaction ref")
	ErrInvalidAmount       = errors.New("invalid amount")

	// Concurrency errors
	ErrVersionConflict = errors.New("version conflict")
)

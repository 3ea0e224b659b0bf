package services

import (
	"os"
	"time"

	"booth/errors"
	"booth/models"

	"github.com/dgrijalva/jwt-go"
)

// GenerateToken tạo JWT cho user, claims để trong key userinfo
func GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"userinfo": map[string]interface{}{
			"userid":   user.ID,
			"role":     user.Role,
			"tenantid": user.TenantID,
		},
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return "", errors.NewAppError(errors.ErrCodeInvalidToken, "Không ký được token", err)
	}
	return signed, nil
}

// GetUserIDFromToken xác thực token và lấy userID, role từ claims
func GetUserIDFromToken(tokenString string) (uint, int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAppError(errors.ErrCodeInvalidToken, "Thuật toán ký không hợp lệ", nil)
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return 0, 0, errors.NewAppError(errors.ErrCodeInvalidToken, "Token không hợp lệ", err)
	}

	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, 0, errors.NewAppError(errors.ErrCodeInvalidToken, "Không thể parse token", nil)
	}

	userInfo, ok := claimsMap["userinfo"].(map[string]interface{})
	if !ok {
		return 0, 0, errors.NewAppError(errors.ErrCodeInvalidToken, "Không tìm thấy thông tin user trong token", nil)
	}

	userID, okID := userInfo["userid"].(float64)
	if !okID {
		return 0, 0, errors.NewAppError(errors.ErrCodeInvalidToken, "Không tìm thấy ID user trong token", nil)
	}

	role, okRole := userInfo["role"].(float64)
	if !okRole {
		return 0, 0, errors.NewAppError(errors.ErrCodeInvalidToken, "Không tìm thấy role trong token", nil)
	}

	return uint(userID), int(role), nil
}

// GetTenantIDFromToken lấy tenant của user từ token, user cấp hệ thống trả về 0
func GetTenantIDFromToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAppError(errors.ErrCodeInvalidToken, "Thuật toán ký không hợp lệ", nil)
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.NewAppError(errors.ErrCodeInvalidToken, "Token không hợp lệ", err)
	}

	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.NewAppError(errors.ErrCodeInvalidToken, "Không thể parse token", nil)
	}

	userInfo, ok := claimsMap["userinfo"].(map[string]interface{})
	if !ok {
		return 0, errors.NewAppError(errors.ErrCodeInvalidToken, "Không tìm thấy thông tin user trong token", nil)
	}

	tenantID, okTenant := userInfo["tenantid"].(float64)
	if !okTenant {
		return 0, nil
	}
	return uint(tenantID), nil
}

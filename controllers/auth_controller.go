package controllers

import (
	"booth/config"
	"booth/constants"
	"booth/dto"
	"booth/models"
	"booth/response"
	"booth/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Login đăng nhập bằng email/password, trả về JWT
func Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 0, "Dữ liệu không hợp lệ")
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		response.Unauthorized(c)
		return
	}

	if user.Status != constants.UserStatusActive {
		response.Forbidden(c)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		response.Unauthorized(c)
		return
	}

	token, err := services.GenerateToken(&user)
	if err != nil {
		response.ServerError(c)
		return
	}

	response.Success(c, dto.LoginResponse{
		Token: token,
		Name:  user.Name,
		Role:  user.Role,
	})
}

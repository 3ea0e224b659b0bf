package dto

// LoginRequest yêu cầu đăng nhập
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse kết quả đăng nhập
type LoginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  int    `json:"role"`
}

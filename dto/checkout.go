package dto

// CheckoutRequest yêu cầu thanh toán cho một giỏ booth
type CheckoutRequest struct {
	BoothIDs  []uint `json:"boothIds"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Provider  string `json:"provider"`
	Currency  string `json:"currency,omitempty"`
	ReturnURL string `json:"returnUrl,omitempty"`
}

// CheckoutResponse kết quả khởi tạo thanh toán
type CheckoutResponse struct {
	TransactionID uint    `json:"transactionId"`
	ExternalRef   string  `json:"externalRef"`
	PaymentURL    string  `json:"paymentUrl"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	RentalIDs     []uint  `json:"rentalIds"`
}

// TransactionResponse trạng thái một transaction cho client poll
type TransactionResponse struct {
	ID            uint    `json:"id"`
	Provider      string  `json:"provider"`
	ExternalRef   string  `json:"externalRef"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	CheckCount    int     `json:"checkCount"`
	LastCheckedAt string  `json:"lastCheckedAt,omitempty"`
	RentalIDs     []uint  `json:"rentalIds"`
}
